package storage

import "encoding/json"

func decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

package storage

import (
	"fmt"
	"sort"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

const anchorPrefix = "anchor:"

type AnchorRepository struct {
	db Store
}

func NewAnchorRepository(db Store) *AnchorRepository {
	return &AnchorRepository{db: db}
}

func anchorKey(epochNumber int) string {
	return fmt.Sprintf("%s%010d", anchorPrefix, epochNumber)
}

// Save upserts the anchor record for an epoch. At most one exists per epoch;
// re-anchoring overwrites it with an identical hash.
func (r *AnchorRepository) Save(record core.AnchorRecord) error {
	return r.db.PutObject(anchorKey(record.EpochNumber), record)
}

func (r *AnchorRepository) Get(epochNumber int) (core.AnchorRecord, error) {
	var record core.AnchorRecord
	err := r.db.GetObject(anchorKey(epochNumber), &record)
	return record, err
}

// All returns every anchor record sorted ascending by epoch number.
func (r *AnchorRepository) All() ([]core.AnchorRecord, error) {
	values, err := r.db.GetByPrefix(anchorPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]core.AnchorRecord, 0, len(values))
	for key, data := range values {
		var record core.AnchorRecord
		if err := decode(data, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal anchor %s: %v", key, err)
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].EpochNumber < records[j].EpochNumber })
	return records, nil
}

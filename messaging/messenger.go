package messaging

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

// NATS subjects for simulation events.
const (
	SubjectEpochSettled    = "epoch.settled"
	SubjectAnchorCommitted = "anchor.committed"
)

// Messenger encapsulates a NATS connection. A nil Messenger is valid and
// drops every publish, so the engine runs unchanged without a broker.
type Messenger struct {
	NC *nats.Conn
}

// NewMessenger creates a new instance of Messenger.
func NewMessenger(url string) (*Messenger, error) {
	nc, err := nats.Connect(url,
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Messenger{NC: nc}, nil
}

// PublishEpochSettled announces a recorded epoch.
func (m *Messenger) PublishEpochSettled(epoch core.Epoch) error {
	return m.publish(SubjectEpochSettled, epoch)
}

// PublishAnchorCommitted announces a new or refreshed anchor record.
func (m *Messenger) PublishAnchorCommitted(record core.AnchorRecord) error {
	return m.publish(SubjectAnchorCommitted, record)
}

func (m *Messenger) publish(subject string, v interface{}) error {
	if m == nil || m.NC == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	log.Printf("Sending data to %s", subject)
	return m.NC.Publish(subject, data)
}

// Close gracefully closes the connection.
func (m *Messenger) Close() {
	if m != nil && m.NC != nil {
		m.NC.Close()
	}
}

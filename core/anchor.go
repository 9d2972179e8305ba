package core

import "time"

// Anchor statuses. Transitions run one way:
// NOT_ANCHORED -> HASH_ONLY -> LEDGER_CONFIRMED.
const (
	AnchorNotAnchored     = "NOT_ANCHORED"
	AnchorHashOnly        = "HASH_ONLY"
	AnchorLedgerConfirmed = "LEDGER_CONFIRMED"
)

// AnchorRecord is the integrity fingerprint of one epoch. At most one exists
// per epoch; re-anchoring is harmless because the hash is deterministic.
type AnchorRecord struct {
	EpochNumber int       `json:"epoch_number"`
	Hash        string    `json:"hash"`
	LedgerRef   string    `json:"ledger_ref,omitempty"`
	Status      string    `json:"status"`
	AnchoredAt  time.Time `json:"anchored_at"`
}

package anchor

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
	"github.com/hyunwoooim-star/ai-market-sub000/ledger"
	"github.com/hyunwoooim-star/ai-market-sub000/messaging"
	"github.com/hyunwoooim-star/ai-market-sub000/storage"
)

// Verification statuses reported by Verify.
const (
	StatusVerified    = "VERIFIED"
	StatusMismatch    = "MISMATCH"
	StatusNotAnchored = "NOT_ANCHORED"
)

// ErrUnauthorized is returned for a bad anchor secret. Fatal for that call
// only; epoch economic state is untouched.
var ErrUnauthorized = errors.New("anchor: invalid secret")

// LedgerClient is the slice of the external ledger the anchor layer needs.
type LedgerClient interface {
	SubmitMemo(ctx context.Context, memo string) (string, error)
	Balance(ctx context.Context) (uint64, error)
	RequestTopUp(ctx context.Context) error
	ExplorerURL(ref string) string
}

// Service hashes recorded epochs and commits the digests to the external
// ledger when it is reachable, degrading to hash-only anchoring when not.
type Service struct {
	epochs  *storage.EpochRepository
	txs     *storage.TransactionRepository
	agents  *storage.AgentRepository
	anchors *storage.AnchorRepository
	ledger  LedgerClient
	bus     *messaging.Messenger
	secret  string
	timeout time.Duration
}

// NewService wires the anchor layer. client may be nil: anchoring then always
// stores the hash alone.
func NewService(
	epochs *storage.EpochRepository,
	txs *storage.TransactionRepository,
	agents *storage.AgentRepository,
	anchors *storage.AnchorRepository,
	client LedgerClient,
	bus *messaging.Messenger,
	secret string,
) *Service {
	return &Service{
		epochs:  epochs,
		txs:     txs,
		agents:  agents,
		anchors: anchors,
		ledger:  client,
		bus:     bus,
		secret:  secret,
		timeout: 30 * time.Second,
	}
}

// Anchor fingerprints a recorded epoch and tries to commit the hash inside a
// memo transaction on the external ledger. Ledger unavailability is never a
// failure of the operation: the record degrades to HASH_ONLY. Re-anchoring a
// confirmed epoch recomputes the same hash and harmlessly resubmits.
func (s *Service) Anchor(ctx context.Context, epochNumber int, secret string) (core.AnchorRecord, error) {
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return core.AnchorRecord{}, ErrUnauthorized
	}

	hash, err := s.currentHash(epochNumber)
	if err != nil {
		return core.AnchorRecord{}, err
	}

	record := core.AnchorRecord{
		EpochNumber: epochNumber,
		Hash:        hash,
		Status:      core.AnchorHashOnly,
		AnchoredAt:  time.Now().UTC(),
	}

	if s.ledger != nil {
		memo := fmt.Sprintf("ai-market epoch %d %s", epochNumber, hash)
		ref, err := s.submitWithTopUp(ctx, memo)
		if err != nil {
			log.Printf("Ledger offline for epoch %d, storing hash only: %v", epochNumber, err)
		} else {
			record.Status = core.AnchorLedgerConfirmed
			record.LedgerRef = ref
		}
	}

	// Anchor status only moves forward. A confirmed epoch stays confirmed even
	// when a re-anchor attempt finds the ledger unreachable.
	if existing, err := s.anchors.Get(epochNumber); err == nil {
		if existing.Status == core.AnchorLedgerConfirmed && record.Status != core.AnchorLedgerConfirmed {
			log.Printf("Epoch %d already ledger-confirmed, keeping ref %s", epochNumber, existing.LedgerRef)
			return existing, nil
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return core.AnchorRecord{}, fmt.Errorf("failed to load anchor record: %w", err)
	}

	if err := s.anchors.Save(record); err != nil {
		return core.AnchorRecord{}, fmt.Errorf("failed to persist anchor record: %w", err)
	}

	if err := s.bus.PublishAnchorCommitted(record); err != nil {
		log.Printf("Failed to publish anchor event: %v", err)
	}
	messaging.BroadcastEvent(messaging.EventAnchorCommitted, record)

	return record, nil
}

// submitWithTopUp submits the memo under a hard timeout, topping the signing
// account up once when it cannot cover the fee. At most one remedial retry;
// after that the caller degrades to hash-only.
func (s *Service) submitWithTopUp(ctx context.Context, memo string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if balance, err := s.ledger.Balance(ctx); err == nil && balance < ledger.MinSubmitBalance {
		log.Printf("Ledger account balance %d below fee floor, requesting top-up", balance)
		if err := s.ledger.RequestTopUp(ctx); err != nil {
			return "", fmt.Errorf("top-up failed: %w", err)
		}
	}

	ref, err := s.ledger.SubmitMemo(ctx, memo)
	if err == nil {
		return ref, nil
	}
	if !ledger.IsInsufficientFunds(err) {
		return "", err
	}

	if topErr := s.ledger.RequestTopUp(ctx); topErr != nil {
		return "", fmt.Errorf("top-up after %v failed: %w", err, topErr)
	}
	return s.ledger.SubmitMemo(ctx, memo)
}

// VerifyResult is the anchor query surface's answer for one epoch.
type VerifyResult struct {
	EpochNumber int    `json:"epoch_number"`
	Anchored    bool   `json:"anchored"`
	StoredHash  string `json:"stored_hash,omitempty"`
	CurrentHash string `json:"current_hash"`
	HashMatch   bool   `json:"hash_match"`
	Integrity   string `json:"integrity"`
	AnchorState string `json:"anchor_state"`
	LedgerRef   string `json:"ledger_ref,omitempty"`
	ExplorerURL string `json:"explorer_url,omitempty"`
}

// Verify recomputes the epoch hash from current stored state and compares it
// with the persisted digest, distinguishing hash-only anchors from
// ledger-confirmed ones.
func (s *Service) Verify(epochNumber int) (VerifyResult, error) {
	current, err := s.currentHash(epochNumber)
	if err != nil {
		return VerifyResult{}, err
	}

	result := VerifyResult{
		EpochNumber: epochNumber,
		CurrentHash: current,
		Integrity:   StatusNotAnchored,
		AnchorState: core.AnchorNotAnchored,
	}

	record, err := s.anchors.Get(epochNumber)
	if errors.Is(err, storage.ErrNotFound) {
		return result, nil
	}
	if err != nil {
		return VerifyResult{}, fmt.Errorf("failed to load anchor record: %w", err)
	}

	result.Anchored = true
	result.StoredHash = record.Hash
	result.HashMatch = record.Hash == current
	result.AnchorState = record.Status
	result.LedgerRef = record.LedgerRef
	if record.LedgerRef != "" && s.ledger != nil {
		result.ExplorerURL = s.ledger.ExplorerURL(record.LedgerRef)
	}

	if result.HashMatch {
		result.Integrity = StatusVerified
	} else {
		result.Integrity = StatusMismatch
	}
	return result, nil
}

// Coverage summarizes anchoring across the most recent epochs.
type Coverage struct {
	Epochs          int                 `json:"epochs"`
	Anchored        int                 `json:"anchored"`
	LedgerConfirmed int                 `json:"ledger_confirmed"`
	Records         []core.AnchorRecord `json:"records"`
}

// CoverageSummary reports how many recent epochs carry anchors.
func (s *Service) CoverageSummary(limit int) (Coverage, error) {
	epochs, err := s.epochs.Recent(limit)
	if err != nil {
		return Coverage{}, fmt.Errorf("failed to load epochs: %w", err)
	}

	summary := Coverage{Epochs: len(epochs), Records: []core.AnchorRecord{}}
	for _, epoch := range epochs {
		record, err := s.anchors.Get(epoch.EpochNumber)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return Coverage{}, fmt.Errorf("failed to load anchor for epoch %d: %w", epoch.EpochNumber, err)
		}
		summary.Anchored++
		if record.Status == core.AnchorLedgerConfirmed {
			summary.LedgerConfirmed++
		}
		summary.Records = append(summary.Records, record)
	}
	return summary, nil
}

// currentHash rebuilds the canonical fingerprint from stored state.
func (s *Service) currentHash(epochNumber int) (string, error) {
	epoch, err := s.epochs.Get(epochNumber)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("epoch %d not recorded", epochNumber)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load epoch %d: %w", epochNumber, err)
	}

	txs, err := s.txs.ByEpoch(epochNumber)
	if err != nil {
		return "", fmt.Errorf("failed to load transactions for epoch %d: %w", epochNumber, err)
	}

	agents, err := s.agents.All()
	if err != nil {
		return "", fmt.Errorf("failed to load agents: %w", err)
	}

	return ComputeHash(epoch, txs, agents), nil
}

package anchor

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
	"github.com/hyunwoooim-star/ai-market-sub000/crypto"
)

// Canonical forms: field order is fixed by struct declaration, agents sort by
// id, transactions keep creation order. Serializing these and hashing the
// bytes must yield the same digest for the same stored state, forever.
type canonicalEpoch struct {
	EpochNumber  int              `json:"epoch_number"`
	Timestamp    string           `json:"timestamp"`
	EventType    string           `json:"event_type"`
	Transactions []canonicalTx    `json:"transactions"`
	Agents       []canonicalAgent `json:"agents"`
}

type canonicalTx struct {
	Buyer  string  `json:"buyer"`
	Seller string  `json:"seller"`
	Amount float64 `json:"amount"`
	Skill  string  `json:"skill"`
}

type canonicalAgent struct {
	ID      string  `json:"id"`
	Balance float64 `json:"balance"`
	Status  string  `json:"status"`
}

// ComputeHash deterministically fingerprints an epoch's outcome: the epoch
// header, its transactions in creation order, and every agent's balance and
// status. Pure function of its inputs.
func ComputeHash(epoch core.Epoch, txs []core.Transaction, agents []core.Agent) string {
	canonical := canonicalEpoch{
		EpochNumber: epoch.EpochNumber,
		Timestamp:   epoch.CreatedAt.UTC().Format(time.RFC3339Nano),
		EventType:   epoch.EventType,
	}

	canonical.Transactions = make([]canonicalTx, len(txs))
	for i, tx := range txs {
		canonical.Transactions[i] = canonicalTx{
			Buyer:  tx.BuyerID,
			Seller: tx.SellerID,
			Amount: tx.Amount,
			Skill:  tx.Skill,
		}
	}

	sorted := make([]canonicalAgent, len(agents))
	for i, a := range agents {
		sorted[i] = canonicalAgent{ID: a.ID, Balance: a.Balance, Status: a.Status}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	canonical.Agents = sorted

	data, err := json.Marshal(canonical)
	if err != nil {
		// Only unmarshalable types reach here, and canonicalEpoch has none.
		panic(err)
	}
	return crypto.HashData(string(data))
}

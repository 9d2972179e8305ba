package core

import (
	"time"

	"github.com/google/uuid"
)

// Transaction records one settled trade between two agents.
// Immutable once created.
type Transaction struct {
	ID        string    `json:"id"`
	BuyerID   string    `json:"buyer_id"`
	SellerID  string    `json:"seller_id"`
	Skill     string    `json:"skill"`
	Amount    float64   `json:"amount"`
	Fee       float64   `json:"fee"`
	Epoch     int       `json:"epoch"`
	Narrative string    `json:"narrative"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTransaction builds a transaction for a settled amount. The fee is taken
// from the seller side at settlement time.
func NewTransaction(buyerID, sellerID, skill string, amount float64, epoch int, narrative string) Transaction {
	amount = Round4(amount)
	return Transaction{
		ID:        uuid.New().String(),
		BuyerID:   buyerID,
		SellerID:  sellerID,
		Skill:     skill,
		Amount:    amount,
		Fee:       TradeFee(amount),
		Epoch:     epoch,
		Narrative: narrative,
		CreatedAt: time.Now().UTC(),
	}
}

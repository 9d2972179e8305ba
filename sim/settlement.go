package sim

import (
	"fmt"
	"log"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
	"github.com/hyunwoooim-star/ai-market-sub000/storage"
)

// SettlementResult reports what actually settled out of a candidate list.
type SettlementResult struct {
	Applied []core.Transaction
	Volume  float64
	Skipped int
}

// settleAll applies transactions to agent balances in list order. Each
// transaction's two sides are computed on copies, persisted atomically, and
// only then committed to the in-memory set; a write failure surfaces as an
// error and aborts the epoch without desynchronizing buyer and seller.
func settleAll(repo *storage.AgentRepository, index map[string]*core.Agent, txs []core.Transaction) (SettlementResult, error) {
	var res SettlementResult
	for _, tx := range txs {
		buyer, seller := index[tx.BuyerID], index[tx.SellerID]
		if buyer == nil || seller == nil {
			res.Skipped++
			continue
		}

		newBalance := core.Round4(buyer.Balance - tx.Amount)
		if newBalance < 0 {
			// A supplemental trade can overdraw a buyer that already spent
			// this epoch; the balance invariant wins over the trade.
			log.Printf("Skipping trade %s: would overdraw %s (%.4f - %.4f)",
				tx.ID, buyer.Name, buyer.Balance, tx.Amount)
			res.Skipped++
			continue
		}

		payout := core.Round4(tx.Amount - tx.Fee)
		b, s := *buyer, *seller
		b.Balance = newBalance
		b.TotalSpent = core.Round4(b.TotalSpent + tx.Amount)
		s.Balance = core.Round4(s.Balance + payout)
		s.TotalEarned = core.Round4(s.TotalEarned + payout)

		if err := repo.SaveBoth(b, s); err != nil {
			return res, fmt.Errorf("settlement write failed for transaction %s: %w", tx.ID, err)
		}
		*buyer, *seller = b, s

		res.Applied = append(res.Applied, tx)
		res.Volume = core.Round4(res.Volume + tx.Amount)
	}
	return res, nil
}

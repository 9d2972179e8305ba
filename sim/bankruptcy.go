package sim

import (
	"fmt"
	"log"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
	"github.com/hyunwoooim-star/ai-market-sub000/storage"
)

// bankruptcyFloor is the balance below which an active agent goes bankrupt.
const bankruptcyFloor = 1.0

// detectBankruptcies re-checks every agent after all of an epoch's
// settlements and flips those below the floor to bankrupt. The transition is
// one-way; no agent returns to active.
func detectBankruptcies(repo *storage.AgentRepository, agents []*core.Agent) ([]string, error) {
	var bankrupted []string
	for _, a := range agents {
		if !a.IsActive() || a.Balance >= bankruptcyFloor {
			continue
		}
		a.Status = core.AgentBankrupt
		if err := repo.Save(*a); err != nil {
			return bankrupted, fmt.Errorf("failed to persist bankruptcy of %s: %w", a.ID, err)
		}
		log.Printf("Agent %s went bankrupt with balance %.4f", a.Name, a.Balance)
		bankrupted = append(bankrupted, a.ID)
	}
	return bankrupted, nil
}

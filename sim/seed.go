package sim

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
	"github.com/hyunwoooim-star/ai-market-sub000/storage"
)

// startingBalance funds every seeded agent.
const startingBalance = 100.0

// SeedAgents populates an empty market with the default personas. A market
// that already has agents is left alone.
func SeedAgents(repo *storage.AgentRepository) error {
	existing, err := repo.All()
	if err != nil {
		return fmt.Errorf("failed to check existing agents: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	for _, p := range core.DefaultPersonas {
		agent := core.Agent{
			ID:        uuid.New().String(),
			Name:      p.Name,
			Persona:   p.Profile,
			Balance:   startingBalance,
			Status:    core.AgentActive,
			CreatedAt: time.Now().UTC(),
		}
		if err := repo.Save(agent); err != nil {
			return fmt.Errorf("failed to seed agent %s: %w", p.Name, err)
		}
	}

	log.Printf("Seeded %d agents with %.2f credits each", len(core.DefaultPersonas), startingBalance)
	return nil
}

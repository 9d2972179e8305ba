package sim

import (
	"time"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

// buildEpoch assembles the epoch summary from post-settlement state.
func buildEpoch(number int, event core.MarketEvent, agents []*core.Agent, res SettlementResult, bankruptcies int) core.Epoch {
	topEarner := ""
	best := -1.0
	for _, a := range agents {
		if a.Balance > best {
			best = a.Balance
			topEarner = a.Name
		}
	}

	return core.Epoch{
		EpochNumber:      number,
		TotalVolume:      res.Volume,
		ActiveAgents:     len(agents) - bankruptcies,
		Bankruptcies:     bankruptcies,
		TopEarner:        topEarner,
		EventType:        event.Type,
		EventDescription: event.Description,
		CreatedAt:        time.Now().UTC(),
	}
}

package sim

import (
	"math/rand"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

// SelectMarketEvent draws this epoch's market event uniformly from the
// fixed catalog.
func SelectMarketEvent(rng *rand.Rand) core.MarketEvent {
	return core.MarketEvents[rng.Intn(len(core.MarketEvents))]
}

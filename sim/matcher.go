package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

// Matcher pairs decisions into candidate transactions. Matching is greedy
// first-fit over the decision list order, so the caller's agent iteration
// order (balance-descending) decides who trades when offers tie.
type Matcher struct {
	rng *rand.Rand
}

func NewMatcher(rng *rand.Rand) *Matcher {
	return &Matcher{rng: rng}
}

// Match combines intent matching with the random supplemental trades.
// At least one supplemental attempt is forced when no intents matched, so an
// epoch always has a chance of forward progress.
func (m *Matcher) Match(decisions []core.Decision, agents []core.Agent, event core.MarketEvent, epoch int) []core.Transaction {
	txs := MatchIntents(decisions, indexAgents(agents), event, epoch)
	txs = append(txs, m.SupplementalTrades(agents, event, epoch, len(txs) == 0)...)
	return txs
}

// MatchIntents is the deterministic half of matching: given the same decision
// list and event it always yields the same transaction set (modulo generated
// ids and timestamps).
func MatchIntents(decisions []core.Decision, agents map[string]core.Agent, event core.MarketEvent, epoch int) []core.Transaction {
	var sellers, buyers []core.Decision
	for _, d := range decisions {
		switch d.Action {
		case core.ActionSell:
			sellers = append(sellers, d)
		case core.ActionBuy:
			buyers = append(buyers, d)
		}
	}

	taken := make([]bool, len(sellers))
	var txs []core.Transaction
	for _, buy := range buyers {
		buyer, ok := agents[buy.AgentID]
		if !ok {
			continue
		}

		idx := -1
		for i, sell := range sellers {
			if taken[i] || sell.Skill != buy.Skill || sell.AgentID == buy.AgentID {
				continue
			}
			idx = i
			break
		}
		if idx < 0 {
			continue
		}
		sell := sellers[idx]
		// The seller is consumed even when the price check below rejects the
		// pairing; that matches the pop-then-price flow of the matcher.
		taken[idx] = true

		price := core.Round4(math.Min(buy.Price, sell.Price) * event.PriceMultiplier)
		if price > buyer.Balance {
			price = core.Round4(buyer.Balance)
		}
		if price <= core.DustThreshold {
			continue
		}

		narrative := buy.Reason
		if narrative == "" {
			narrative = fmt.Sprintf("%s bought %s from %s", buyer.Name, buy.Skill, agents[sell.AgentID].Name)
		}
		txs = append(txs, core.NewTransaction(buy.AgentID, sell.AgentID, buy.Skill, price, epoch, narrative))
	}
	return txs
}

// SupplementalTrades generates 0-3 random trades per epoch to keep the
// market lively even when the decision model is uncooperative. A seller
// already matched this epoch may be drawn again; that is accepted, not
// deduplicated.
func (m *Matcher) SupplementalTrades(agents []core.Agent, event core.MarketEvent, epoch int, force bool) []core.Transaction {
	if len(agents) < 2 {
		return nil
	}

	attempts := m.rng.Intn(4)
	if force && attempts == 0 {
		attempts = 1
	}

	var txs []core.Transaction
	for i := 0; i < attempts; i++ {
		perm := m.rng.Perm(len(agents))
		buyer, seller := agents[perm[0]], agents[perm[1]]
		skill := core.Skills[m.rng.Intn(len(core.Skills))]

		price := core.Round4(skill.BasePrice * event.PriceMultiplier * (0.5 + m.rng.Float64()))
		if price > buyer.Balance || price <= core.DustThreshold {
			continue
		}
		if m.rng.Float64() > event.TradeProbability {
			continue
		}

		narrative := fmt.Sprintf("Spontaneous deal: %s hired %s for %s", buyer.Name, seller.Name, skill.Name)
		txs = append(txs, core.NewTransaction(buyer.ID, seller.ID, skill.Name, price, epoch, narrative))
	}
	return txs
}

func indexAgents(agents []core.Agent) map[string]core.Agent {
	index := make(map[string]core.Agent, len(agents))
	for _, a := range agents {
		index[a.ID] = a
	}
	return index
}

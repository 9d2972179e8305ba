package sim

import (
	"math/rand"
	"testing"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

func testAgent(id, name string, balance float64) core.Agent {
	return core.Agent{ID: id, Name: name, Balance: balance, Status: core.AgentActive}
}

func normalEvent() core.MarketEvent {
	return core.MarketEvent{Type: "normal", PriceMultiplier: 1.0, TradeProbability: 0.5}
}

func TestMatchIntentsBasicTrade(t *testing.T) {
	a := testAgent("a", "Alice", 20)
	b := testAgent("b", "Bob", 50)
	agents := indexAgents([]core.Agent{a, b})

	decisions := []core.Decision{
		{AgentID: "a", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "b", Action: core.ActionBuy, Skill: "coding", Price: 12},
	}

	txs := MatchIntents(decisions, agents, normalEvent(), 1)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}

	tx := txs[0]
	if tx.BuyerID != "b" || tx.SellerID != "a" {
		t.Errorf("matched %s -> %s, want b -> a", tx.BuyerID, tx.SellerID)
	}
	if tx.Amount != 10 {
		t.Errorf("amount = %v, want 10 (lower of the two prices)", tx.Amount)
	}
	if tx.Fee != 0.5 {
		t.Errorf("fee = %v, want 0.5", tx.Fee)
	}
}

func TestMatchIntentsPriceMultiplier(t *testing.T) {
	agents := indexAgents([]core.Agent{testAgent("a", "A", 100), testAgent("b", "B", 100)})
	decisions := []core.Decision{
		{AgentID: "a", Action: core.ActionSell, Skill: "design", Price: 8},
		{AgentID: "b", Action: core.ActionBuy, Skill: "design", Price: 9},
	}

	event := core.MarketEvent{Type: "boom", PriceMultiplier: 1.5, TradeProbability: 0.8}
	txs := MatchIntents(decisions, agents, event, 1)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Amount != 12 {
		t.Errorf("amount = %v, want 12 (8 * 1.5)", txs[0].Amount)
	}
}

func TestMatchIntentsCapsAtBuyerBalance(t *testing.T) {
	agents := indexAgents([]core.Agent{testAgent("a", "A", 100), testAgent("b", "B", 6)})
	decisions := []core.Decision{
		{AgentID: "a", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "b", Action: core.ActionBuy, Skill: "coding", Price: 10},
	}

	txs := MatchIntents(decisions, agents, normalEvent(), 1)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].Amount != 6 {
		t.Errorf("amount = %v, want 6 (capped at buyer balance)", txs[0].Amount)
	}
}

func TestMatchIntentsRejectsDust(t *testing.T) {
	agents := indexAgents([]core.Agent{testAgent("a", "A", 100), testAgent("b", "B", 0.4)})
	decisions := []core.Decision{
		{AgentID: "a", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "b", Action: core.ActionBuy, Skill: "coding", Price: 10},
	}

	if txs := MatchIntents(decisions, agents, normalEvent(), 1); len(txs) != 0 {
		t.Errorf("got %d transactions, want 0 (dust trade must be rejected)", len(txs))
	}
}

func TestMatchIntentsNoSelfTrade(t *testing.T) {
	agents := indexAgents([]core.Agent{testAgent("a", "A", 100)})
	decisions := []core.Decision{
		{AgentID: "a", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "a", Action: core.ActionBuy, Skill: "coding", Price: 10},
	}

	if txs := MatchIntents(decisions, agents, normalEvent(), 1); len(txs) != 0 {
		t.Errorf("got %d transactions, want 0 (agent cannot trade with itself)", len(txs))
	}
}

func TestMatchIntentsFirstFitOrder(t *testing.T) {
	agents := indexAgents([]core.Agent{
		testAgent("s1", "S1", 100),
		testAgent("s2", "S2", 100),
		testAgent("b1", "B1", 100),
	})
	// Two sellers of the same skill: the one earlier in the decision list wins
	// even when the later one is cheaper.
	decisions := []core.Decision{
		{AgentID: "s1", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "s2", Action: core.ActionSell, Skill: "coding", Price: 5},
		{AgentID: "b1", Action: core.ActionBuy, Skill: "coding", Price: 20},
	}

	txs := MatchIntents(decisions, agents, normalEvent(), 1)
	if len(txs) != 1 {
		t.Fatalf("got %d transactions, want 1", len(txs))
	}
	if txs[0].SellerID != "s1" {
		t.Errorf("seller = %s, want s1 (first fit)", txs[0].SellerID)
	}
}

func TestMatchIntentsSellerConsumedOnRejectedPairing(t *testing.T) {
	agents := indexAgents([]core.Agent{
		testAgent("s1", "S1", 100),
		testAgent("b1", "B1", 0.4), // dust buyer
		testAgent("b2", "B2", 100),
	})
	decisions := []core.Decision{
		{AgentID: "s1", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "b1", Action: core.ActionBuy, Skill: "coding", Price: 10},
		{AgentID: "b2", Action: core.ActionBuy, Skill: "coding", Price: 10},
	}

	// The dust buyer consumes the only seller, so the solvent buyer finds none.
	if txs := MatchIntents(decisions, agents, normalEvent(), 1); len(txs) != 0 {
		t.Errorf("got %d transactions, want 0 (seller consumed by rejected pairing)", len(txs))
	}
}

func TestMatchIntentsSkillMismatch(t *testing.T) {
	agents := indexAgents([]core.Agent{testAgent("a", "A", 100), testAgent("b", "B", 100)})
	decisions := []core.Decision{
		{AgentID: "a", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "b", Action: core.ActionBuy, Skill: "design", Price: 10},
	}

	if txs := MatchIntents(decisions, agents, normalEvent(), 1); len(txs) != 0 {
		t.Errorf("got %d transactions, want 0 (skills differ)", len(txs))
	}
}

func TestMatchIntentsDeterministic(t *testing.T) {
	agents := indexAgents([]core.Agent{
		testAgent("a", "A", 100),
		testAgent("b", "B", 100),
		testAgent("c", "C", 100),
	})
	decisions := []core.Decision{
		{AgentID: "a", Action: core.ActionSell, Skill: "coding", Price: 10},
		{AgentID: "b", Action: core.ActionBuy, Skill: "coding", Price: 12},
		{AgentID: "c", Action: core.ActionBuy, Skill: "coding", Price: 15},
	}

	first := MatchIntents(decisions, agents, normalEvent(), 1)
	second := MatchIntents(decisions, agents, normalEvent(), 1)
	if len(first) != len(second) {
		t.Fatalf("run lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].BuyerID != second[i].BuyerID ||
			first[i].SellerID != second[i].SellerID ||
			first[i].Amount != second[i].Amount {
			t.Errorf("transaction %d differs between runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSupplementalTradesConstraints(t *testing.T) {
	agents := []core.Agent{
		testAgent("a", "A", 100),
		testAgent("b", "B", 50),
		testAgent("c", "C", 3),
	}
	event := core.MarketEvent{Type: "boom", PriceMultiplier: 1.5, TradeProbability: 0.8}
	byID := indexAgents(agents)

	for seed := int64(0); seed < 50; seed++ {
		m := NewMatcher(rand.New(rand.NewSource(seed)))
		txs := m.SupplementalTrades(agents, event, 1, false)

		if len(txs) > 3 {
			t.Fatalf("seed %d: %d supplemental trades, want at most 3", seed, len(txs))
		}
		for _, tx := range txs {
			if tx.BuyerID == tx.SellerID {
				t.Errorf("seed %d: self trade %s", seed, tx.BuyerID)
			}
			if tx.Amount <= core.DustThreshold {
				t.Errorf("seed %d: dust amount %v", seed, tx.Amount)
			}
			if tx.Amount > byID[tx.BuyerID].Balance {
				t.Errorf("seed %d: amount %v exceeds buyer balance %v", seed, tx.Amount, byID[tx.BuyerID].Balance)
			}
			if _, ok := core.SkillByName(tx.Skill); !ok {
				t.Errorf("seed %d: unknown skill %q", seed, tx.Skill)
			}
		}
	}
}

func TestSupplementalTradesNeedTwoAgents(t *testing.T) {
	m := NewMatcher(rand.New(rand.NewSource(1)))
	event := normalEvent()

	if txs := m.SupplementalTrades([]core.Agent{testAgent("a", "A", 100)}, event, 1, true); txs != nil {
		t.Errorf("got %d trades with a single agent, want none", len(txs))
	}
	if txs := m.SupplementalTrades(nil, event, 1, true); txs != nil {
		t.Errorf("got %d trades with no agents, want none", len(txs))
	}
}

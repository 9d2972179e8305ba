package sim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/hyunwoooim-star/ai-market-sub000/ai"
	"github.com/hyunwoooim-star/ai-market-sub000/core"
	"github.com/hyunwoooim-star/ai-market-sub000/messaging"
	"github.com/hyunwoooim-star/ai-market-sub000/storage"
)

// ErrRunInProgress is returned when a run is requested while another one
// holds the engine. Concurrent epoch runs against the same agent set are
// unsupported; the loser fails fast.
var ErrRunInProgress = errors.New("sim: epoch run already in progress")

// ErrNoActiveAgents is returned when every agent has gone bankrupt.
var ErrNoActiveAgents = errors.New("sim: no active agents left")

// Engine drives the sequential epoch pipeline: decision collection, trade
// matching, settlement, bankruptcy detection and epoch recording.
type Engine struct {
	agents  *storage.AgentRepository
	txs     *storage.TransactionRepository
	epochs  *storage.EpochRepository
	decider ai.DecisionProvider
	bus     *messaging.Messenger
	matcher *Matcher
	rng     *rand.Rand
	delay   time.Duration

	mu sync.Mutex // run-lock, one epoch pipeline at a time
}

// NewEngine wires the epoch pipeline. bus may be nil (events are dropped);
// rng may be nil (seeded from the clock).
func NewEngine(
	agents *storage.AgentRepository,
	txs *storage.TransactionRepository,
	epochs *storage.EpochRepository,
	decider ai.DecisionProvider,
	bus *messaging.Messenger,
	delay time.Duration,
	rng *rand.Rand,
) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		agents:  agents,
		txs:     txs,
		epochs:  epochs,
		decider: decider,
		bus:     bus,
		matcher: NewMatcher(rng),
		rng:     rng,
		delay:   delay,
	}
}

// RunEpochs runs count consecutive epochs with the configured delay between
// them. It returns the epochs that completed; an error mid-run still reports
// the completed prefix.
func (e *Engine) RunEpochs(ctx context.Context, count int) ([]core.Epoch, error) {
	if !e.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer e.mu.Unlock()

	var completed []core.Epoch
	for i := 0; i < count; i++ {
		epoch, err := e.runEpoch(ctx)
		if err != nil {
			return completed, fmt.Errorf("epoch %d of %d: %w", i+1, count, err)
		}
		completed = append(completed, epoch)

		if i < count-1 && e.delay > 0 {
			select {
			case <-time.After(e.delay):
			case <-ctx.Done():
				return completed, ctx.Err()
			}
		}
	}
	return completed, nil
}

// runEpoch executes one full pipeline pass. Once started an epoch runs to
// completion or fails with partial effects; there is no cancellation.
func (e *Engine) runEpoch(ctx context.Context) (core.Epoch, error) {
	maxNumber, err := e.epochs.MaxNumber()
	if err != nil {
		return core.Epoch{}, fmt.Errorf("failed to read epoch counter: %w", err)
	}
	number := maxNumber + 1

	roster, err := e.agents.ActiveByBalance()
	if err != nil {
		return core.Epoch{}, fmt.Errorf("failed to load agents: %w", err)
	}
	if len(roster) == 0 {
		return core.Epoch{}, ErrNoActiveAgents
	}

	event := SelectMarketEvent(e.rng)
	log.Printf("Epoch %d: market event %q (x%.2f, p=%.2f), %d active agents",
		number, event.Type, event.PriceMultiplier, event.TradeProbability, len(roster))

	decisions := e.collectDecisions(ctx, roster, event)
	candidates := e.matcher.Match(decisions, roster, event, number)

	index := make(map[string]*core.Agent, len(roster))
	ordered := make([]*core.Agent, len(roster))
	for i := range roster {
		index[roster[i].ID] = &roster[i]
		ordered[i] = &roster[i]
	}

	res, err := settleAll(e.agents, index, candidates)
	if err != nil {
		return core.Epoch{}, err
	}

	if err := e.txs.SaveAll(number, res.Applied); err != nil {
		return core.Epoch{}, fmt.Errorf("failed to persist transactions: %w", err)
	}

	bankrupted, err := detectBankruptcies(e.agents, ordered)
	if err != nil {
		return core.Epoch{}, err
	}
	for _, id := range bankrupted {
		messaging.BroadcastEvent(messaging.EventAgentBankrupt, index[id])
	}

	epoch := buildEpoch(number, event, ordered, res, len(bankrupted))
	if err := e.epochs.Create(epoch); err != nil {
		// An unrecorded epoch must never proceed to anchoring.
		return core.Epoch{}, fmt.Errorf("failed to record epoch %d: %w", number, err)
	}

	log.Printf("Epoch %d settled: %d trades, volume %.4f, %d bankruptcies, top earner %s",
		number, len(res.Applied), res.Volume, len(bankrupted), epoch.TopEarner)

	if err := e.bus.PublishEpochSettled(epoch); err != nil {
		log.Printf("Failed to publish epoch event: %v", err)
	}
	messaging.BroadcastEvent(messaging.EventEpochSettled, epoch)

	return epoch, nil
}

// collectDecisions asks the decision provider for one intent per active
// agent, sequentially to respect upstream rate limits. A single agent's
// failure is isolated: that agent WAITs and the epoch continues.
func (e *Engine) collectDecisions(ctx context.Context, roster []core.Agent, event core.MarketEvent) []core.Decision {
	market := ai.MarketContext{
		Peers:  roster,
		Skills: core.Skills,
		Event:  event,
	}

	decisions := make([]core.Decision, 0, len(roster))
	for _, agent := range roster {
		decision, err := e.decider.ProposeDecision(ctx, agent, market)
		if err != nil {
			log.Printf("Decision failed for agent %s, defaulting to WAIT: %v", agent.Name, err)
			decision = core.WaitDecision(agent.ID)
		}
		decision.AgentID = agent.ID
		decisions = append(decisions, decision)
	}
	return decisions
}

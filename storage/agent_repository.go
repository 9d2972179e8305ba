package storage

import (
	"fmt"
	"sort"

	"github.com/hyunwoooim-star/ai-market-sub000/core"
)

const agentPrefix = "agent:"

type AgentRepository struct {
	db Store
}

func NewAgentRepository(db Store) *AgentRepository {
	return &AgentRepository{db: db}
}

func agentKey(id string) string {
	return agentPrefix + id
}

func (r *AgentRepository) Save(agent core.Agent) error {
	return r.db.PutObject(agentKey(agent.ID), agent)
}

// SaveBoth persists the two sides of one settlement in a single write
// transaction so a failure can never leave buyer and seller out of sync.
func (r *AgentRepository) SaveBoth(buyer, seller core.Agent) error {
	return r.db.PutObjects(map[string]interface{}{
		agentKey(buyer.ID):  buyer,
		agentKey(seller.ID): seller,
	})
}

func (r *AgentRepository) Get(id string) (core.Agent, error) {
	var agent core.Agent
	err := r.db.GetObject(agentKey(id), &agent)
	return agent, err
}

// All returns every agent sorted ascending by id.
func (r *AgentRepository) All() ([]core.Agent, error) {
	values, err := r.db.GetByPrefix(agentPrefix)
	if err != nil {
		return nil, err
	}

	agents := make([]core.Agent, 0, len(values))
	for key, data := range values {
		var agent core.Agent
		if err := decode(data, &agent); err != nil {
			return nil, fmt.Errorf("failed to unmarshal agent %s: %v", key, err)
		}
		agents = append(agents, agent)
	}

	sort.Slice(agents, func(i, j int) bool { return agents[i].ID < agents[j].ID })
	return agents, nil
}

// ActiveByBalance returns active agents sorted balance-descending. This is
// the epoch iteration order: the matcher's first-fit tie-break depends on it,
// so wealthier agents' offers are considered first. Ties fall back to id order
// to keep runs reproducible.
func (r *AgentRepository) ActiveByBalance() ([]core.Agent, error) {
	all, err := r.All()
	if err != nil {
		return nil, err
	}

	active := make([]core.Agent, 0, len(all))
	for _, a := range all {
		if a.IsActive() {
			active = append(active, a)
		}
	}

	sort.SliceStable(active, func(i, j int) bool { return active[i].Balance > active[j].Balance })
	return active, nil
}

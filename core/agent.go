package core

import "time"

// Agent statuses. The active -> bankrupt transition is one-way.
const (
	AgentActive   = "active"
	AgentBankrupt = "bankrupt"
)

// Agent represents an AI-powered market participant.
type Agent struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Persona     string    `json:"persona"`
	Balance     float64   `json:"balance"`
	TotalEarned float64   `json:"total_earned"`
	TotalSpent  float64   `json:"total_spent"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsActive reports whether the agent still participates in epochs.
func (a *Agent) IsActive() bool {
	return a.Status == AgentActive
}

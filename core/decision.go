package core

// Decision actions an agent may propose for one epoch.
const (
	ActionSell = "SELL"
	ActionBuy  = "BUY"
	ActionWait = "WAIT"
)

// Decision is an agent's proposed action for the current epoch.
// Decisions are ephemeral and never persisted.
type Decision struct {
	AgentID string  `json:"-"`
	Action  string  `json:"action"`
	Skill   string  `json:"skill"`
	Price   float64 `json:"price"`
	Target  string  `json:"target,omitempty"`
	Reason  string  `json:"reason,omitempty"`
}

// WaitDecision is the fallback when an agent cannot produce a usable decision.
func WaitDecision(agentID string) Decision {
	return Decision{AgentID: agentID, Action: ActionWait}
}

// ValidAction reports whether action is one of SELL, BUY or WAIT.
func ValidAction(action string) bool {
	switch action {
	case ActionSell, ActionBuy, ActionWait:
		return true
	}
	return false
}

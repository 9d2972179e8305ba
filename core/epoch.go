package core

import "time"

// Epoch summarizes one settled simulation round. Epochs are append-only and
// numbered monotonically; the chosen market event is embedded here.
type Epoch struct {
	EpochNumber      int       `json:"epoch_number"`
	TotalVolume      float64   `json:"total_volume"`
	ActiveAgents     int       `json:"active_agents"`
	Bankruptcies     int       `json:"bankruptcies"`
	TopEarner        string    `json:"top_earner"`
	EventType        string    `json:"event_type"`
	EventDescription string    `json:"event_description"`
	CreatedAt        time.Time `json:"created_at"`
}

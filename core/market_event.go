package core

// MarketEvent is a per-epoch modifier altering trade pricing and likelihood.
// One event is drawn per epoch; it is embedded in the Epoch record rather
// than persisted on its own.
type MarketEvent struct {
	Type             string  `json:"type"`
	Description      string  `json:"description"`
	PriceMultiplier  float64 `json:"price_multiplier"`
	TradeProbability float64 `json:"trade_probability"`
}

// MarketEvents is the fixed catalog the Market Event Selector draws from.
var MarketEvents = []MarketEvent{
	{Type: "boom", Description: "Demand surge! Prices climb and everyone wants in", PriceMultiplier: 1.5, TradeProbability: 0.8},
	{Type: "recession", Description: "Market slump. Prices sag and trades are scarce", PriceMultiplier: 0.6, TradeProbability: 0.3},
	{Type: "opportunity", Description: "A rare opening: premium prices for bold traders", PriceMultiplier: 2.0, TradeProbability: 0.6},
	{Type: "normal", Description: "Business as usual", PriceMultiplier: 1.0, TradeProbability: 0.5},
}

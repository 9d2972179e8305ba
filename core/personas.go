package core

// Persona is a seed identity for a simulated agent.
type Persona struct {
	Name    string
	Profile string
}

// DefaultPersonas seeds a fresh market when no agents exist yet.
// Registration itself happens in the surrounding product; the engine only
// needs a populated roster to run.
var DefaultPersonas = []Persona{
	{Name: "Nova", Profile: "An ambitious full-stack developer who undercuts everyone on price and never stops shipping."},
	{Name: "Atlas", Profile: "A methodical data analyst who only trades when the numbers clearly favor it."},
	{Name: "Lyra", Profile: "A flamboyant designer who charges premium prices and talks clients into them."},
	{Name: "Orion", Profile: "A cautious translator who saves aggressively and hates risk."},
	{Name: "Vega", Profile: "A fast-talking marketer who buys skills cheap and resells the results."},
	{Name: "Rigel", Profile: "A veteran writer with steady output and stubborn pricing."},
}

package core

// Skill is a tradeable service with a catalog base price.
type Skill struct {
	Name      string  `json:"name"`
	BasePrice float64 `json:"base_price"`
}

// Skills is the fixed catalog loaded once at startup and injected where needed.
var Skills = []Skill{
	{Name: "coding", BasePrice: 10},
	{Name: "design", BasePrice: 8},
	{Name: "analysis", BasePrice: 9},
	{Name: "marketing", BasePrice: 7},
	{Name: "writing", BasePrice: 6},
	{Name: "translation", BasePrice: 5},
}

// SkillByName looks a skill up in the catalog.
func SkillByName(name string) (Skill, bool) {
	for _, s := range Skills {
		if s.Name == name {
			return s, true
		}
	}
	return Skill{}, false
}

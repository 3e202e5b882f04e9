package model

// CookwareItem is a normalized piece of equipment name (lower-case, singular, canonical synonym).
// Build values with cookware.Normalize; equality is plain string equality.
type CookwareItem string

// Recipe is a candidate recipe produced by the recipe source adapter
type Recipe struct {
	Title     string         `json:"title"`
	Summary   string         `json:"summary,omitempty"`   // Provider snippet or catalog blurb
	Steps     []string       `json:"steps,omitempty"`     // Ordered instructions (may be empty for provider results)
	Equipment []CookwareItem `json:"equipment,omitempty"` // Required cookware, deduplicated
	Source    *Source        `json:"source,omitempty"`    // nil for built-in recipes
	Generic   bool           `json:"generic,omitempty"`   // Placeholder for a dish with no known recipe: no steps, equipment unknown
}

// Source attributes a recipe to where it was found
type Source struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Verdict classifies whether a recipe can be made with the available cookware
type Verdict string

const (
	VerdictFullyAvailable Verdict = "fully_available"
	VerdictSubstitutable  Verdict = "substitutable"
	VerdictInfeasible     Verdict = "infeasible"
)

// MatchResult is the cookware verdict for one recipe
type MatchResult struct {
	Verdict       Verdict                       `json:"verdict"`
	Substitutions map[CookwareItem]CookwareItem `json:"substitutions,omitempty"` // missing item -> substitute on hand
	Missing       []CookwareItem                `json:"missing,omitempty"`       // no direct match and no substitute
	MissingCount  int                           `json:"missing_count"`           // required items not directly available
	OverThreshold bool                          `json:"over_threshold,omitempty"`
	Unverified    bool                          `json:"unverified,omitempty"` // recipe lists no equipment, nothing was checked
}

// Unavailable lists every required item the user does not directly have, in recipe order
func (m MatchResult) Unavailable(recipe Recipe) []CookwareItem {
	var out []CookwareItem
	seen := make(map[CookwareItem]bool)
	for _, item := range recipe.Equipment {
		if seen[item] {
			continue
		}
		seen[item] = true
		if _, ok := m.Substitutions[item]; ok {
			out = append(out, item)
			continue
		}
		for _, missing := range m.Missing {
			if missing == item {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

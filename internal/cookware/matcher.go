package cookware

import (
	"github.com/ppiankov/cookbot/internal/model"
)

// DefaultThreshold rejects a recipe when more than half of its equipment needs substituting
const DefaultThreshold = 0.5

// Matcher decides whether a recipe can be made with the cookware on hand
type Matcher struct {
	// Threshold is the largest share of required items that may be missing
	// (even with substitutes) before a recipe is infeasible. Zero allows no
	// substitution at all; a negative value uses DefaultThreshold.
	Threshold float64
}

// NewMatcher creates a matcher with the given substitution threshold
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold}
}

// Match computes the availability verdict for recipe against the available cookware.
// Available names are normalized, so "Dutch Oven" and "dutch oven" give the same result.
// A recipe with no known equipment is fully available but marked Unverified.
func (m *Matcher) Match(recipe model.Recipe, available []model.CookwareItem) model.MatchResult {
	have := make(map[model.CookwareItem]bool, len(available))
	for _, item := range available {
		have[Normalize(string(item))] = true
	}

	result := model.MatchResult{Verdict: model.VerdictFullyAvailable}
	required := 0
	seen := make(map[model.CookwareItem]bool, len(recipe.Equipment))

	for _, raw := range recipe.Equipment {
		item := Normalize(string(raw))
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		required++

		if have[item] {
			continue
		}
		result.MissingCount++

		if sub, ok := firstAvailable(Substitutes(item), have); ok {
			if result.Substitutions == nil {
				result.Substitutions = make(map[model.CookwareItem]model.CookwareItem)
			}
			result.Substitutions[item] = sub
			continue
		}
		result.Missing = append(result.Missing, item)
	}

	if required == 0 {
		result.Unverified = true
		return result
	}
	if result.MissingCount == 0 {
		return result
	}

	result.OverThreshold = float64(result.MissingCount)/float64(required) > m.threshold()
	switch {
	case len(result.Missing) > 0, result.OverThreshold:
		result.Verdict = model.VerdictInfeasible
	default:
		result.Verdict = model.VerdictSubstitutable
	}
	return result
}

func (m *Matcher) threshold() float64 {
	if m == nil || m.Threshold < 0 {
		return DefaultThreshold
	}
	return m.Threshold
}

func firstAvailable(candidates []model.CookwareItem, have map[model.CookwareItem]bool) (model.CookwareItem, bool) {
	for _, c := range candidates {
		if have[c] {
			return c, true
		}
	}
	return "", false
}

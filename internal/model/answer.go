package model

// Outcome is the terminal business result of a query
type Outcome string

const (
	OutcomeRefused     Outcome = "refused"
	OutcomeAnswered    Outcome = "answered"
	OutcomeInfeasible  Outcome = "infeasible"  // recipe request where no candidate fits the cookware
	OutcomeUnavailable Outcome = "unavailable" // every generation and fallback path failed
)

// Stage is a state visited by the orchestrator while answering a query
type Stage string

const (
	StageStart      Stage = "start"
	StageClassified Stage = "classified"
	StageSearched   Stage = "searched"
	StageMatched    Stage = "matched"
	StageRefused    Stage = "refused"
	StageAnswered   Stage = "answered"
)

// Answer is the final response returned to the caller
type Answer struct {
	RequestID string       `json:"request_id"`
	Text      string       `json:"response"`
	Intent    Intent       `json:"intent"`
	Outcome   Outcome      `json:"outcome"`
	Degraded  bool         `json:"degraded"` // a local fallback replaced an external dependency
	Recipe    *Recipe      `json:"recipe,omitempty"`
	Match     *MatchResult `json:"match,omitempty"`
	Stages    []Stage      `json:"stages,omitempty"`
}

// Relevant reports whether the query was treated as cooking-related
func (a Answer) Relevant() bool {
	return a.Intent != IntentOutOfScope
}

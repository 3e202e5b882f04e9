package model

import (
	"fmt"
	"strings"
)

// Query is a single user request: free text plus the cookware the user declared
type Query struct {
	Text     string   `json:"query"`
	Cookware []string `json:"cookware,omitempty"`
}

// HasCookware reports whether the user declared any cookware
func (q Query) HasCookware() bool {
	for _, c := range q.Cookware {
		if strings.TrimSpace(c) != "" {
			return true
		}
	}
	return false
}

// Intent is the classified purpose of a query.
// The zero value is IntentOutOfScope so an unset intent always refuses.
type Intent int

const (
	IntentOutOfScope Intent = iota
	IntentTechniqueQuestion
	IntentRecipeRequest
	IntentRecipeRequestWithCookware
)

var intentNames = map[Intent]string{
	IntentOutOfScope:                "out_of_scope",
	IntentTechniqueQuestion:         "technique_question",
	IntentRecipeRequest:             "recipe_request",
	IntentRecipeRequestWithCookware: "recipe_request_with_cookware",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// MarshalText implements encoding.TextMarshaler
func (i Intent) MarshalText() ([]byte, error) {
	name, ok := intentNames[i]
	if !ok {
		return nil, fmt.Errorf("unknown intent: %d", int(i))
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (i *Intent) UnmarshalText(text []byte) error {
	parsed, err := ParseIntent(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}

// ParseIntent parses the text form of an intent
func ParseIntent(s string) (Intent, error) {
	for intent, name := range intentNames {
		if name == s {
			return intent, nil
		}
	}
	return IntentOutOfScope, fmt.Errorf("unknown intent: %q", s)
}

// IsRecipe reports whether the intent requires a recipe search
func (i Intent) IsRecipe() bool {
	return i == IntentRecipeRequest || i == IntentRecipeRequestWithCookware
}

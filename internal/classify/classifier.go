package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/cookbot/internal/llm"
	"github.com/ppiankov/cookbot/internal/model"
)

const systemPrompt = `You are a query classifier for a cooking and recipe assistant.
Classify the user's query into exactly one label:

OUT_OF_SCOPE          - not about cooking, recipes, food preparation or ingredients
RECIPE_WITH_COOKWARE  - asks for a dish or recipe and mentions the cookware they have
RECIPE                - asks for a dish or recipe
TECHNIQUE             - asks about a technique, ingredient substitution, timing, storage or tools

Examples of cooking-related queries:
- How do I make pasta? (RECIPE)
- What's a good recipe for chicken soup? (RECIPE)
- How do I make chicken soup with the cookware I have? (RECIPE_WITH_COOKWARE)
- Can I substitute butter with oil? (TECHNIQUE)
- How long should I cook salmon? (TECHNIQUE)
- What tools do I need to make pizza? (TECHNIQUE)

Examples of non-cooking-related queries (OUT_OF_SCOPE):
- What's the weather today?
- How do I fix my car?
- Who won the Super Bowl?
- What's the capital of France?
- Can you help me with my homework?

Respond with the label only.`

var (
	// ErrNoGenerator means no language model is configured
	ErrNoGenerator = errors.New("no text generator configured")

	// ErrUnknownLabel means the model answered with something other than a label
	ErrUnknownLabel = errors.New("unrecognised classification label")
)

// ClassificationError reports that a query could not be classified.
// Callers treat it as out of scope with the degraded flag set.
type ClassificationError struct {
	Query string
	Label string // raw model output, if any
	Err   error
}

func (e *ClassificationError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("classify %q: %v (got %q)", e.Query, e.Err, e.Label)
	}
	return fmt.Sprintf("classify %q: %v", e.Query, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// Classifier decides which capability a query needs
type Classifier struct {
	gen     llm.TextGenerator
	timeout time.Duration
}

// New creates a classifier. A zero timeout leaves the generator's own timeout in charge.
func New(gen llm.TextGenerator, timeout time.Duration) *Classifier {
	return &Classifier{gen: gen, timeout: timeout}
}

// Classify returns the intent of q. Out-of-scope queries are never upgraded to a recipe intent.
func (c *Classifier) Classify(ctx context.Context, q model.Query) (model.Intent, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return model.IntentOutOfScope, nil
	}
	if c.gen == nil {
		return model.IntentOutOfScope, &ClassificationError{Query: text, Err: ErrNoGenerator}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.gen.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Prompt:      "Query: " + text,
		MaxTokens:   10,
		Temperature: 0,
	})
	if err != nil {
		return model.IntentOutOfScope, &ClassificationError{Query: text, Err: err}
	}

	intent, ok := ParseLabel(resp.Text)
	if !ok {
		return model.IntentOutOfScope, &ClassificationError{Query: text, Label: resp.Text, Err: ErrUnknownLabel}
	}

	if intent == model.IntentRecipeRequest && (q.HasCookware() || MentionsCookware(text)) {
		intent = model.IntentRecipeRequestWithCookware
	}
	return intent, nil
}

// ParseLabel maps model output to an intent. OUT_OF_SCOPE wins whenever it
// appears; otherwise the most specific label found is used.
func ParseLabel(output string) (model.Intent, bool) {
	label := strings.ToUpper(output)
	label = strings.NewReplacer(" ", "_", "-", "_").Replace(label)

	switch {
	case strings.Contains(label, "OUT_OF_SCOPE"):
		return model.IntentOutOfScope, true
	case strings.Contains(label, "RECIPE_WITH_COOKWARE"):
		return model.IntentRecipeRequestWithCookware, true
	case strings.Contains(label, "RECIPE"):
		return model.IntentRecipeRequest, true
	case strings.Contains(label, "TECHNIQUE"):
		return model.IntentTechniqueQuestion, true
	}
	return model.IntentOutOfScope, false
}

// cookwarePhrases signal that the user is constrained to the equipment they own
var cookwarePhrases = []string{
	"cookware",
	"equipment i have",
	"utensils i have",
	"tools i have",
	"with what i have",
	"with what i've got",
	"pots and pans",
	"my pot",
	"my pan",
	"my kitchen tools",
	"i only have",
	"i just have",
	"with only",
	"using only",
	"with just",
}

// MentionsCookware reports whether the query text refers to the user's own equipment
func MentionsCookware(text string) bool {
	lower := strings.ToLower(text)
	lower = strings.ReplaceAll(lower, "’", "'")
	for _, phrase := range cookwarePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

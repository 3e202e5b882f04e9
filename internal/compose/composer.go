package compose

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/cookbot/internal/llm"
	"github.com/ppiankov/cookbot/internal/model"
	"github.com/ppiankov/cookbot/internal/recipes"
)

const (
	refusalText = "I am a cooking assistant that specializes in recipes, cooking techniques, and food preparation. " +
		"I cannot help with questions about cars, technology, or other non-cooking topics. " +
		"Please feel free to ask me anything about cooking, recipes, or food preparation!"

	degradedRefusalText = "I couldn't check your question properly because part of the service is having trouble right now, " +
		"so I can only answer requests that are clearly about cooking. " +
		"I am a cooking assistant that specializes in recipes, cooking techniques, and food preparation. " +
		"Please try again in a moment."

	unavailableText = "Sorry, the cooking assistant is experiencing service problems and couldn't answer right now. " +
		"Please try again in a moment."

	techniqueSystem = `You are a helpful cooking assistant that specializes in recipes, cooking techniques, and food preparation.
Answer the cooking question clearly and accurately. Be educational but concise.
Only discuss cooking, food and kitchen topics.`

	recipeSystem = `You are a helpful cooking assistant formatting a recipe for a home cook.
Use ONLY the facts provided: the title, summary, steps and cookware.
Do not add cookware that is not listed. Do not invent a source.
Write a short introduction sentence, then numbered steps with cooking times where given.`
)

// ErrNoGenerator means no language model is configured
var ErrNoGenerator = errors.New("no text generator configured")

// GenerationError reports that the language model could not produce a piece of an answer
type GenerationError struct {
	Task string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Task, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Composer turns structured results into answer text.
// Facts that must be exact (refusals, cookware lists, infeasibility) are templated, never generated.
type Composer struct {
	gen     llm.TextGenerator
	timeout time.Duration
}

// New creates a composer. gen may be nil, in which case every generated part falls back.
func New(gen llm.TextGenerator, timeout time.Duration) *Composer {
	return &Composer{gen: gen, timeout: timeout}
}

// Refusal returns the fixed out-of-scope answer
func Refusal(degraded bool) string {
	if degraded {
		return degradedRefusalText
	}
	return refusalText
}

// Unavailable returns the generic answer used when every path has failed
func Unavailable() string {
	return unavailableText
}

// Technique answers a cooking technique question with the language model
func (c *Composer) Technique(ctx context.Context, q model.Query) (string, error) {
	text, err := c.generate(ctx, llm.Request{System: techniqueSystem, Prompt: strings.TrimSpace(q.Text)})
	if err != nil {
		return "", &GenerationError{Task: "technique answer", Err: err}
	}
	return text, nil
}

// TechniqueFromSearch builds a technique answer from search hits when generation is unavailable
func TechniqueFromSearch(question string, records []recipes.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here is what I found about %q:\n\n", strings.TrimSpace(question))
	for _, r := range records {
		fmt.Fprintf(&b, "- %s", r.Title)
		if r.Snippet != "" {
			fmt.Fprintf(&b, ": %s", r.Snippet)
		}
		if r.Link != "" {
			fmt.Fprintf(&b, " (%s)", r.Link)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nThese are search results; I couldn't write a full answer right now.")
	return b.String()
}

// Recipe composes the answer for a chosen recipe. The header and footer are templated;
// the body is formatted by the language model and falls back to the recipe's own steps.
// Generic placeholders have no steps to format, so they never reach the language model.
// The returned text is always usable; a non-nil *GenerationError reports that the fallback body was used.
func (c *Composer) Recipe(ctx context.Context, q model.Query, recipe model.Recipe, match *model.MatchResult, degraded bool) (string, error) {
	var b strings.Builder
	b.WriteString(recipeHeader(recipe, match))

	var body string
	var err error
	if recipe.Generic {
		body = fallbackBody(recipe)
	} else if body, err = c.generate(ctx, llm.Request{System: recipeSystem, Prompt: recipePrompt(q, recipe, match)}); err != nil {
		err = &GenerationError{Task: "recipe body", Err: err}
		body = fallbackBody(recipe)
	}
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(recipeFooter(recipe, degraded))

	return strings.TrimSpace(b.String()), err
}

// Candidate is a recipe together with its cookware verdict
type Candidate struct {
	Recipe model.Recipe
	Match  model.MatchResult
}

// Infeasible explains that none of the candidates can be made with the declared cookware.
// It names what is missing for each candidate and offers at most one substitution scheme.
func Infeasible(candidates []Candidate) string {
	var b strings.Builder
	b.WriteString("I can't find a recipe you can make with the cookware you have.\n")

	if len(candidates) > 0 {
		b.WriteString("\n")
	}
	for _, cand := range candidates {
		missing := cand.Match.Missing
		if len(missing) == 0 {
			missing = cand.Match.Unavailable(cand.Recipe)
		}
		fmt.Fprintf(&b, "- %s: missing %s", cand.Recipe.Title, joinItems(missing))
		if len(cand.Match.Missing) == 0 && cand.Match.OverThreshold {
			b.WriteString(" (too many substitutions needed)")
		}
		b.WriteString("\n")
	}

	if scheme, ok := closestScheme(candidates); ok {
		b.WriteString("\n")
		fmt.Fprintf(&b, "If you want to improvise, %s could be attempted by %s, but the result would differ a lot from the original recipe.\n",
			scheme.Recipe.Title, describeSubstitutions(scheme.Match.Substitutions))
	}

	b.WriteString("\nIf you can get hold of the missing cookware, ask me again and I'll walk you through it.")
	return b.String()
}

// closestScheme picks the over-threshold candidate needing the fewest substitutions.
// Candidates with an item that has no substitute are never offered.
func closestScheme(candidates []Candidate) (Candidate, bool) {
	best := -1
	for i, cand := range candidates {
		if len(cand.Match.Missing) > 0 || len(cand.Match.Substitutions) == 0 {
			continue
		}
		if best < 0 || cand.Match.MissingCount < candidates[best].Match.MissingCount {
			best = i
		}
	}
	if best < 0 {
		return Candidate{}, false
	}
	return candidates[best], true
}

func (c *Composer) generate(ctx context.Context, req llm.Request) (string, error) {
	if c == nil || c.gen == nil {
		return "", ErrNoGenerator
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	resp, err := c.gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

func recipeHeader(recipe model.Recipe, match *model.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", recipe.Title)
	if len(recipe.Equipment) > 0 {
		fmt.Fprintf(&b, "Cookware: %s\n", joinItems(recipe.Equipment))
	}
	if match != nil {
		switch {
		case match.Unverified:
			b.WriteString("I couldn't check this dish's cookware against yours, because I don't know what it needs.\n")
		case match.Verdict == model.VerdictFullyAvailable:
			b.WriteString("You have all the cookware this recipe needs.\n")
		case match.Verdict == model.VerdictSubstitutable:
			fmt.Fprintf(&b, "Substitutions: %s.\n", describeSubstitutions(match.Substitutions))
		}
	}
	return b.String()
}

func recipePrompt(q model.Query, recipe model.Recipe, match *model.MatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "User question: %s\n\n", strings.TrimSpace(q.Text))
	fmt.Fprintf(&b, "Title: %s\n", recipe.Title)
	if recipe.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", recipe.Summary)
	}
	if len(recipe.Equipment) > 0 {
		fmt.Fprintf(&b, "Cookware: %s\n", joinItems(recipe.Equipment))
	}
	if match != nil && len(match.Substitutions) > 0 {
		fmt.Fprintf(&b, "Substitutions to apply: %s\n", describeSubstitutions(match.Substitutions))
	}
	if len(recipe.Steps) > 0 {
		b.WriteString("Steps:\n")
		for i, step := range recipe.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	}
	return b.String()
}

func fallbackBody(recipe model.Recipe) string {
	var b strings.Builder
	if recipe.Summary != "" {
		fmt.Fprintf(&b, "%s\n", recipe.Summary)
	}
	if len(recipe.Steps) > 0 {
		b.WriteString("\n")
		for i, step := range recipe.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
	} else if recipe.Source != nil && recipe.Source.URL != "" {
		fmt.Fprintf(&b, "Full instructions: %s\n", recipe.Source.URL)
	}
	return b.String()
}

func recipeFooter(recipe model.Recipe, degraded bool) string {
	var b strings.Builder
	switch {
	case recipe.Source != nil && recipe.Source.URL != "":
		fmt.Fprintf(&b, "\nSource: %s (%s)", recipe.Source.Name, recipe.Source.URL)
	case recipe.Generic:
		b.WriteString("\nPlease check a trusted recipe source for the ingredients, steps and cookware.")
	default:
		b.WriteString("\nThis is one of my built-in recipes.")
	}
	if degraded && recipe.Generic {
		b.WriteString("\nNote: recipe search is unavailable right now, so I couldn't look this dish up.")
	} else if degraded {
		b.WriteString("\nNote: recipe search is unavailable right now, so this suggestion comes from a small built-in collection and may be less precise.")
	}
	return b.String()
}

// describeSubstitutions renders "using your pot instead of a dutch oven" in a stable order
func describeSubstitutions(subs map[model.CookwareItem]model.CookwareItem) string {
	missing := make([]string, 0, len(subs))
	for item := range subs {
		missing = append(missing, string(item))
	}
	sort.Strings(missing)

	parts := make([]string, len(missing))
	for i, item := range missing {
		parts[i] = fmt.Sprintf("using your %s instead of a %s", subs[model.CookwareItem(item)], item)
	}
	return strings.Join(parts, " and ")
}

func joinItems(items []model.CookwareItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = string(item)
	}
	return strings.Join(names, ", ")
}

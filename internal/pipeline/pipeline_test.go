package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/ppiankov/cookbot/internal/compose"
	"github.com/ppiankov/cookbot/internal/llm"
	"github.com/ppiankov/cookbot/internal/model"
	"github.com/ppiankov/cookbot/internal/recipes"
)

// fakeGenerator answers classification prompts with label and everything else with text
type fakeGenerator struct {
	label    string
	labelErr error
	text     string
	textErr  error
	calls    atomic.Int32
}

func (f *fakeGenerator) Name() string                     { return "fake" }
func (f *fakeGenerator) IsAvailable(context.Context) bool { return true }

func (f *fakeGenerator) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	f.calls.Add(1)
	if strings.HasPrefix(req.Prompt, "Query: ") {
		if f.labelErr != nil {
			return nil, f.labelErr
		}
		return &llm.Response{Text: f.label}, nil
	}
	if f.textErr != nil {
		return nil, f.textErr
	}
	return &llm.Response{Text: f.text}, nil
}

// fakeProvider implements recipes.RecipeProvider
type fakeProvider struct {
	records []recipes.Record
	err     error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(ctx context.Context, term string, limit int) ([]recipes.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func newTestPipeline(gen llm.TextGenerator, provider recipes.RecipeProvider) *Pipeline {
	return New(model.DefaultConfig(), gen, provider, zap.NewNop())
}

func stagesEqual(got, want []model.Stage) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestAnswer_ChickenSoupWithPot(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE_WITH_COOKWARE", text: "Warm the oil, add the vegetables and simmer."}
	p := newTestPipeline(gen, nil)

	answer := p.Answer(context.Background(), model.Query{
		Text:     "How do I make chicken soup with the cookware I have?",
		Cookware: []string{"Pot"},
	})

	if answer.Outcome != model.OutcomeAnswered {
		t.Fatalf("Outcome = %s, want answered", answer.Outcome)
	}
	if answer.Intent != model.IntentRecipeRequestWithCookware {
		t.Errorf("Intent = %s, want recipe_request_with_cookware", answer.Intent)
	}
	if answer.Recipe == nil || answer.Recipe.Title != "One-Pot Chicken Soup" {
		t.Fatalf("Recipe = %+v, want One-Pot Chicken Soup", answer.Recipe)
	}
	if answer.Match == nil || answer.Match.Verdict != model.VerdictFullyAvailable {
		t.Errorf("Match = %+v, want fully available", answer.Match)
	}
	if !strings.Contains(answer.Text, "One-Pot Chicken Soup") {
		t.Errorf("Text does not name the recipe: %q", answer.Text)
	}
	if !answer.Degraded {
		t.Error("built-in recipes without a search provider should be marked degraded")
	}

	want := []model.Stage{model.StageStart, model.StageClassified, model.StageSearched, model.StageMatched, model.StageAnswered}
	if !stagesEqual(answer.Stages, want) {
		t.Errorf("Stages = %v, want %v", answer.Stages, want)
	}
}

func TestAnswer_CakeWithOnlyPotIsInfeasible(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE_WITH_COOKWARE", text: "should not be used"}
	p := newTestPipeline(gen, nil)

	answer := p.Answer(context.Background(), model.Query{
		Text:     "How do I bake a traditional chocolate cake with the cookware I have",
		Cookware: []string{"pot"},
	})

	if answer.Outcome != model.OutcomeInfeasible {
		t.Fatalf("Outcome = %s, want infeasible", answer.Outcome)
	}
	if answer.Recipe != nil {
		t.Errorf("Recipe = %+v, want nil for an infeasible answer", answer.Recipe)
	}
	for _, item := range []string{"oven", "cake pan"} {
		if !strings.Contains(answer.Text, item) {
			t.Errorf("Text should name missing %q: %q", item, answer.Text)
		}
	}
	if gen.calls.Load() != 1 {
		t.Errorf("generator calls = %d, want only the classification call", gen.calls.Load())
	}
}

func TestAnswer_UnknownDishDoesNotClaimCookware(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE_WITH_COOKWARE", text: "Layer ladyfingers with mascarpone cream."}
	p := newTestPipeline(gen, nil)

	answer := p.Answer(context.Background(), model.Query{
		Text:     "How do I make tiramisu with the cookware I have",
		Cookware: []string{"pot"},
	})

	if answer.Recipe == nil || !answer.Recipe.Generic {
		t.Fatalf("Recipe = %+v, want the generic placeholder", answer.Recipe)
	}
	if answer.Match == nil || !answer.Match.Unverified {
		t.Errorf("Match = %+v, want unverified", answer.Match)
	}
	if strings.Contains(answer.Text, "all the cookware") {
		t.Errorf("Text claims the cookware was checked: %q", answer.Text)
	}
	if strings.Contains(answer.Text, "mascarpone") {
		t.Errorf("Text contains generated steps for an unknown recipe: %q", answer.Text)
	}
	if !strings.Contains(answer.Text, "couldn't check") {
		t.Errorf("Text should say the cookware could not be checked: %q", answer.Text)
	}
	if gen.calls.Load() != 1 {
		t.Errorf("generator calls = %d, want only the classification call", gen.calls.Load())
	}
	if !answer.Degraded {
		t.Error("built-in fallback without a search provider should be marked degraded")
	}
}

func TestAnswer_DefaultInventoryWhenNoneDeclared(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE", text: "Rinse, simmer, rest."}
	p := newTestPipeline(gen, nil)

	answer := p.Answer(context.Background(), model.Query{Text: "Make rice with what I have"})

	if answer.Intent != model.IntentRecipeRequestWithCookware {
		t.Fatalf("Intent = %s, want recipe_request_with_cookware", answer.Intent)
	}
	if answer.Recipe == nil || answer.Recipe.Title != "Stovetop Rice" {
		t.Fatalf("Recipe = %+v, want Stovetop Rice", answer.Recipe)
	}
	if answer.Match == nil || answer.Match.Verdict != model.VerdictFullyAvailable {
		t.Errorf("Match = %+v, want fully available with the default inventory", answer.Match)
	}
}

func TestAnswer_OutOfScope(t *testing.T) {
	gen := &fakeGenerator{label: "OUT_OF_SCOPE"}
	p := newTestPipeline(gen, nil)

	answer := p.Answer(context.Background(), model.Query{Text: "How do I fix my car?"})

	if answer.Outcome != model.OutcomeRefused {
		t.Fatalf("Outcome = %s, want refused", answer.Outcome)
	}
	if answer.Text != compose.Refusal(false) {
		t.Errorf("Text = %q, want the refusal", answer.Text)
	}
	if answer.Degraded {
		t.Error("a clean refusal should not be degraded")
	}
	if answer.Relevant() {
		t.Error("Relevant() should be false")
	}
	if gen.calls.Load() != 1 {
		t.Errorf("generator calls = %d, want 1", gen.calls.Load())
	}

	want := []model.Stage{model.StageStart, model.StageClassified, model.StageRefused}
	if !stagesEqual(answer.Stages, want) {
		t.Errorf("Stages = %v, want %v", answer.Stages, want)
	}
}

func TestAnswer_ClassificationFailureRefusesDegraded(t *testing.T) {
	tests := []struct {
		name string
		gen  llm.TextGenerator
	}{
		{"generator error", &fakeGenerator{labelErr: errors.New("timeout")}},
		{"unknown label", &fakeGenerator{label: "I think this is about soup"}},
		{"no generator", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(tt.gen, nil)
			answer := p.Answer(context.Background(), model.Query{Text: "chicken soup please"})

			if answer.Outcome != model.OutcomeRefused {
				t.Errorf("Outcome = %s, want refused", answer.Outcome)
			}
			if !answer.Degraded {
				t.Error("Degraded should be true")
			}
			if answer.Text != compose.Refusal(true) {
				t.Errorf("Text = %q, want the degraded refusal", answer.Text)
			}
		})
	}
}

func TestAnswer_ProviderFailureFallsBack(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"transport error", errors.New("connection refused")},
		{"malformed response", fmt.Errorf("%w: missing organic_results", recipes.ErrMalformedResponse)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{label: "RECIPE", text: "Cook the pasta and toss with sauce."}
			p := newTestPipeline(gen, &fakeProvider{err: tt.err})

			answer := p.Answer(context.Background(), model.Query{Text: "spaghetti with tomato sauce"})

			if answer.Outcome != model.OutcomeAnswered {
				t.Fatalf("Outcome = %s, want answered", answer.Outcome)
			}
			if !answer.Degraded {
				t.Error("Degraded should be true after a provider failure")
			}
			if answer.Recipe == nil || answer.Recipe.Source != nil {
				t.Errorf("Recipe = %+v, want a built-in recipe", answer.Recipe)
			}
		})
	}
}

func TestAnswer_ProviderResults(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE", text: "Simmer everything for an hour."}
	provider := &fakeProvider{records: []recipes.Record{
		{Title: "Best Chicken Soup", Snippet: "Simmer in a <b>stockpot</b>.", Link: "https://www.example.com/soup", Position: 1},
	}}
	p := newTestPipeline(gen, provider)

	answer := p.Answer(context.Background(), model.Query{Text: "chicken soup recipe"})

	if answer.Degraded {
		t.Error("provider results should not be degraded")
	}
	if answer.Recipe == nil || answer.Recipe.Source == nil {
		t.Fatalf("Recipe = %+v, want a sourced recipe", answer.Recipe)
	}
	if answer.Recipe.Source.URL != "https://www.example.com/soup" {
		t.Errorf("Source.URL = %q", answer.Recipe.Source.URL)
	}
	if !strings.Contains(answer.Text, "https://www.example.com/soup") {
		t.Errorf("Text should cite the source: %q", answer.Text)
	}
}

func TestAnswer_RecipeGenerationFailureUsesSteps(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE", textErr: errors.New("rate limited")}
	p := newTestPipeline(gen, nil)

	answer := p.Answer(context.Background(), model.Query{Text: "fluffy pancakes"})

	if answer.Outcome != model.OutcomeAnswered {
		t.Fatalf("Outcome = %s, want answered", answer.Outcome)
	}
	if !answer.Degraded {
		t.Error("Degraded should be true")
	}
	if answer.Recipe == nil || len(answer.Recipe.Steps) == 0 {
		t.Fatalf("Recipe = %+v, want a built-in recipe with steps", answer.Recipe)
	}
	if !strings.Contains(answer.Text, answer.Recipe.Steps[0]) {
		t.Errorf("Text should contain the recipe steps: %q", answer.Text)
	}
}

func TestAnswer_Technique(t *testing.T) {
	gen := &fakeGenerator{label: "TECHNIQUE", text: "Salt the water generously before adding pasta."}
	p := newTestPipeline(gen, nil)

	answer := p.Answer(context.Background(), model.Query{Text: "Should I salt pasta water?"})

	if answer.Outcome != model.OutcomeAnswered {
		t.Fatalf("Outcome = %s, want answered", answer.Outcome)
	}
	if answer.Text != "Salt the water generously before adding pasta." {
		t.Errorf("Text = %q", answer.Text)
	}
	if answer.Degraded {
		t.Error("Degraded should be false")
	}

	want := []model.Stage{model.StageStart, model.StageClassified, model.StageAnswered}
	if !stagesEqual(answer.Stages, want) {
		t.Errorf("Stages = %v, want %v", answer.Stages, want)
	}
}

func TestAnswer_TechniqueFallsBackToSearch(t *testing.T) {
	gen := &fakeGenerator{label: "TECHNIQUE", textErr: errors.New("boom")}
	provider := &fakeProvider{records: []recipes.Record{
		{Title: "How to Salt Pasta Water", Snippet: "Use a <b>tablespoon</b> per pot.", Link: "https://example.com/salt"},
	}}
	p := newTestPipeline(gen, provider)

	answer := p.Answer(context.Background(), model.Query{Text: "Should I salt pasta water?"})

	if answer.Outcome != model.OutcomeAnswered {
		t.Fatalf("Outcome = %s, want answered", answer.Outcome)
	}
	if !answer.Degraded {
		t.Error("Degraded should be true")
	}
	if !strings.Contains(answer.Text, "How to Salt Pasta Water") || strings.Contains(answer.Text, "<b>") {
		t.Errorf("Text = %q, want cleaned search results", answer.Text)
	}
}

func TestAnswer_AllPathsExhausted(t *testing.T) {
	gen := &fakeGenerator{label: "TECHNIQUE", textErr: errors.New("boom")}

	for _, provider := range []recipes.RecipeProvider{nil, &fakeProvider{err: errors.New("down")}} {
		p := newTestPipeline(gen, provider)
		answer := p.Answer(context.Background(), model.Query{Text: "How long do eggs keep?"})

		if answer.Outcome != model.OutcomeUnavailable {
			t.Errorf("Outcome = %s, want unavailable", answer.Outcome)
		}
		if answer.Text != compose.Unavailable() {
			t.Errorf("Text = %q, want the unavailable message", answer.Text)
		}
		if !answer.Degraded {
			t.Error("Degraded should be true")
		}
	}
}

func TestAnswer_StableForSameInputs(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE_WITH_COOKWARE", text: "Simmer."}
	p := newTestPipeline(gen, nil)
	q := model.Query{Text: "chicken soup with what I have", Cookware: []string{"Dutch Oven", "ladle"}}

	first := p.Answer(context.Background(), q)
	second := p.Answer(context.Background(), q)

	if first.Intent != second.Intent || first.Outcome != second.Outcome || first.Text != second.Text {
		t.Errorf("answers differ:\n%+v\n%+v", first, second)
	}
}

func TestAnswer_RequestIDsAreUnique(t *testing.T) {
	p := newTestPipeline(&fakeGenerator{label: "OUT_OF_SCOPE"}, nil)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		answer := p.Answer(context.Background(), model.Query{Text: "weather?"})
		if answer.RequestID == "" {
			t.Fatal("RequestID is empty")
		}
		if seen[answer.RequestID] {
			t.Fatalf("duplicate RequestID %s", answer.RequestID)
		}
		seen[answer.RequestID] = true
	}
}

func TestAnswer_Concurrent(t *testing.T) {
	gen := &fakeGenerator{label: "RECIPE_WITH_COOKWARE", text: "Simmer."}
	p := newTestPipeline(gen, nil)

	var wg sync.WaitGroup
	answers := make([]model.Answer, 20)
	for i := range answers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answers[i] = p.Answer(context.Background(), model.Query{
				Text:     "chicken soup",
				Cookware: []string{"pot"},
			})
		}(i)
	}
	wg.Wait()

	for i, answer := range answers {
		if answer.Recipe == nil || answer.Recipe.Title != "One-Pot Chicken Soup" {
			t.Errorf("answer %d: Recipe = %+v, want One-Pot Chicken Soup", i, answer.Recipe)
		}
	}
}

func TestNewPipeline_DisabledProviders(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "bogus"
	cfg.Search.Provider = "serpapi"
	cfg.Search.APIKey = ""

	p := NewPipeline(cfg, nil)
	if p == nil {
		t.Fatal("NewPipeline returned nil")
	}
	if name := p.adapter.ProviderName(); name != "builtin" {
		t.Errorf("ProviderName() = %q, want builtin", name)
	}

	answer := p.Answer(context.Background(), model.Query{Text: "chicken soup"})
	if answer.Outcome != model.OutcomeRefused || !answer.Degraded {
		t.Errorf("Answer = %+v, want a degraded refusal without a language model", answer)
	}
}

func TestNoFeasibleRecipeError(t *testing.T) {
	err := &NoFeasibleRecipeError{Term: "cake", Candidates: make([]compose.Candidate, 2)}
	if got := err.Error(); got != `no feasible recipe for "cake" among 2 candidates` {
		t.Errorf("Error() = %q", got)
	}
}

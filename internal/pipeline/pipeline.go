package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/cookbot/internal/classify"
	"github.com/ppiankov/cookbot/internal/compose"
	"github.com/ppiankov/cookbot/internal/cookware"
	"github.com/ppiankov/cookbot/internal/llm"
	"github.com/ppiankov/cookbot/internal/model"
	"github.com/ppiankov/cookbot/internal/recipes"
	"github.com/ppiankov/cookbot/internal/worker"
)

// Pipeline answers one query in a single pass: classify, then refuse, answer the
// technique question, or search recipes and match them against the user's cookware.
// Apart from the search rate limiter, which is shared by every request and
// guarded by its own lock, it holds only immutable configuration. It is safe for concurrent use.
type Pipeline struct {
	classifier *classify.Classifier
	adapter    *recipes.Adapter
	matcher    *cookware.Matcher
	composer   *compose.Composer
	inventory  []model.CookwareItem // used when a cookware request declares nothing
	logger     *zap.Logger
}

// NewPipeline creates a pipeline with providers built from configuration.
// Providers that fail to initialize are logged and left out; the pipeline then degrades.
func NewPipeline(cfg *model.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	gen, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		logger.Warn("LLM provider disabled", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		gen = nil
	}

	provider, err := recipes.NewProvider(cfg.Search)
	if err != nil {
		logger.Warn("search provider disabled", zap.String("provider", cfg.Search.Provider), zap.Error(err))
		provider = nil
	}
	if provider == nil {
		logger.Info("no recipe search provider configured, using built-in recipes")
	}

	return New(cfg, gen, provider, logger)
}

// New creates a pipeline around the given capabilities. gen and provider may be nil.
func New(cfg *model.Config, gen llm.TextGenerator, provider recipes.RecipeProvider, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := worker.NewLimiter(cfg.Search.RequestsPerSecond, cfg.Search.Burst)

	return &Pipeline{
		classifier: classify.New(gen, cfg.LLM.Timeout),
		adapter:    recipes.NewAdapter(provider, limiter, recipes.ConfigFromModel(cfg.Search)),
		matcher:    cookware.NewMatcher(cfg.Cookware.SubstitutionThreshold),
		composer:   compose.New(gen, cfg.LLM.Timeout),
		inventory:  cookware.NormalizeAll(cfg.Cookware.DefaultInventory),
		logger:     logger,
	}
}

// NoFeasibleRecipeError is the business outcome of a cookware request where every
// candidate is infeasible. It is rendered as an answer, never returned to callers.
type NoFeasibleRecipeError struct {
	Term       string
	Candidates []compose.Candidate
}

func (e *NoFeasibleRecipeError) Error() string {
	return fmt.Sprintf("no feasible recipe for %q among %d candidates", e.Term, len(e.Candidates))
}

// run carries the per-request answer under construction
type run struct {
	answer model.Answer
	logger *zap.Logger
}

func (r *run) visit(stage model.Stage) {
	r.answer.Stages = append(r.answer.Stages, stage)
	r.logger.Debug("stage",
		zap.String("stage", string(stage)),
		zap.String("intent", r.answer.Intent.String()),
		zap.Bool("degraded", r.answer.Degraded),
	)
}

// Answer handles one query. It always returns an answer; failures are folded into
// a degraded refusal, a fallback answer, or the unavailable outcome.
func (p *Pipeline) Answer(ctx context.Context, q model.Query) model.Answer {
	id := uuid.NewString()
	r := &run{
		answer: model.Answer{RequestID: id},
		logger: p.logger.With(zap.String("request_id", id)),
	}
	r.visit(model.StageStart)

	intent, err := p.classifier.Classify(ctx, q)
	r.answer.Intent = intent
	if err != nil {
		r.logger.Warn("classification failed, refusing", zap.Error(err))
		r.answer.Degraded = true
		r.visit(model.StageClassified)
		return p.refuse(r)
	}
	r.visit(model.StageClassified)

	switch intent {
	case model.IntentOutOfScope:
		return p.refuse(r)
	case model.IntentTechniqueQuestion:
		return p.answerTechnique(ctx, r, q)
	case model.IntentRecipeRequest:
		return p.answerRecipe(ctx, r, q)
	case model.IntentRecipeRequestWithCookware:
		return p.answerWithCookware(ctx, r, q)
	default:
		r.logger.Error("unhandled intent, refusing", zap.Int("intent", int(intent)))
		r.answer.Intent = model.IntentOutOfScope
		r.answer.Degraded = true
		return p.refuse(r)
	}
}

func (p *Pipeline) refuse(r *run) model.Answer {
	r.answer.Text = compose.Refusal(r.answer.Degraded)
	r.answer.Outcome = model.OutcomeRefused
	r.visit(model.StageRefused)
	r.logger.Info("query refused", zap.Bool("degraded", r.answer.Degraded))
	return r.answer
}

func (p *Pipeline) unavailable(r *run) model.Answer {
	r.answer.Text = compose.Unavailable()
	r.answer.Outcome = model.OutcomeUnavailable
	r.answer.Degraded = true
	r.answer.Recipe = nil
	r.answer.Match = nil
	r.visit(model.StageAnswered)
	r.logger.Error("all answer paths failed")
	return r.answer
}

func (p *Pipeline) answered(r *run, outcome model.Outcome, text string) model.Answer {
	r.answer.Text = text
	r.answer.Outcome = outcome
	r.visit(model.StageAnswered)
	r.logger.Info("query answered",
		zap.String("intent", r.answer.Intent.String()),
		zap.String("outcome", string(outcome)),
		zap.Bool("degraded", r.answer.Degraded),
	)
	return r.answer
}

func (p *Pipeline) answerTechnique(ctx context.Context, r *run, q model.Query) model.Answer {
	text, err := p.composer.Technique(ctx, q)
	if err == nil {
		return p.answered(r, model.OutcomeAnswered, text)
	}
	r.logger.Warn("technique generation failed, trying search", zap.Error(err))

	records, err := p.adapter.SearchTips(ctx, q.Text)
	r.answer.Degraded = true
	r.visit(model.StageSearched)
	if err != nil {
		r.logger.Warn("technique search failed", zap.Error(err))
		return p.unavailable(r)
	}
	return p.answered(r, model.OutcomeAnswered, compose.TechniqueFromSearch(q.Text, records))
}

// search runs the recipe adapter, logging masked failures
func (p *Pipeline) search(ctx context.Context, r *run, term string) *recipes.Results {
	results, err := p.adapter.Search(ctx, term)
	var adapterErr *recipes.AdapterError
	if errors.As(err, &adapterErr) {
		r.logger.Warn("malformed search response, using built-in recipes", zap.Error(err))
	}
	if results.Degraded() {
		r.answer.Degraded = true
		r.logger.Info("recipe search degraded", zap.String("term", term), zap.NamedError("cause", results.Cause()))
	}
	r.visit(model.StageSearched)
	return results
}

func (p *Pipeline) answerRecipe(ctx context.Context, r *run, q model.Query) model.Answer {
	results := p.search(ctx, r, recipes.TermFromQuery(q.Text))

	recipe, ok := results.Next(ctx)
	if !ok {
		return p.unavailable(r)
	}
	return p.composeRecipe(ctx, r, q, recipe, nil)
}

func (p *Pipeline) answerWithCookware(ctx context.Context, r *run, q model.Query) model.Answer {
	term := recipes.TermFromQuery(q.Text)
	results := p.search(ctx, r, term)

	available := cookware.NormalizeAll(q.Cookware)
	if len(available) == 0 {
		available = p.inventory
	}

	var rejected []compose.Candidate
	for {
		recipe, ok := results.Next(ctx)
		if !ok {
			break
		}
		match := p.matcher.Match(recipe, available)
		if match.Verdict != model.VerdictInfeasible {
			r.visit(model.StageMatched)
			return p.composeRecipe(ctx, r, q, recipe, &match)
		}
		rejected = append(rejected, compose.Candidate{Recipe: recipe, Match: match})
	}
	r.visit(model.StageMatched)

	if len(rejected) == 0 {
		return p.unavailable(r)
	}

	noFit := &NoFeasibleRecipeError{Term: term, Candidates: rejected}
	r.logger.Info("no feasible recipe", zap.Error(noFit))
	return p.answered(r, model.OutcomeInfeasible, compose.Infeasible(noFit.Candidates))
}

func (p *Pipeline) composeRecipe(ctx context.Context, r *run, q model.Query, recipe model.Recipe, match *model.MatchResult) model.Answer {
	text, err := p.composer.Recipe(ctx, q, recipe, match, r.answer.Degraded)
	if err != nil {
		r.logger.Warn("recipe formatting failed, using recipe steps", zap.Error(err))
		r.answer.Degraded = true
	}
	r.answer.Recipe = &recipe
	r.answer.Match = match
	return p.answered(r, model.OutcomeAnswered, text)
}

package recipes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/cookbot/internal/cookware"
	"github.com/ppiankov/cookbot/internal/model"
	"github.com/ppiankov/cookbot/internal/util"
	"github.com/ppiankov/cookbot/internal/worker"
)

// Adapter searches the configured provider for recipes and falls back to the
// built-in catalog when the provider is missing, throttled or failing.
type Adapter struct {
	provider RecipeProvider
	limiter  *worker.Limiter
	pages    *http.Client
	config   Config
}

// NewAdapter creates an adapter. provider and limiter may be nil.
func NewAdapter(provider RecipeProvider, limiter *worker.Limiter, config Config) *Adapter {
	if config.MaxCandidates <= 0 {
		config.MaxCandidates = DefaultConfig().MaxCandidates
	}
	client := util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy)
	client.Timeout = config.Timeout
	return &Adapter{
		provider: provider,
		limiter:  limiter,
		pages:    client,
		config:   config,
	}
}

// ProviderName returns the configured provider's name, or "builtin"
func (a *Adapter) ProviderName() string {
	if a.provider == nil {
		return "builtin"
	}
	return a.provider.Name()
}

// Search returns candidate recipes for term. Provider failures are masked by
// degraded catalog results; a malformed provider response additionally returns *AdapterError.
func (a *Adapter) Search(ctx context.Context, term string) (*Results, error) {
	term = strings.TrimSpace(term)

	if a.provider == nil {
		return a.fallback(term, ErrNoProvider), nil
	}
	if !a.limiter.Allow(a.quotaKey()) {
		return a.fallback(term, ErrRateLimited), nil
	}

	records, err := a.provider.Search(ctx, recipeQuery(term), a.config.MaxCandidates)
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) {
			return a.fallback(term, err), &AdapterError{Provider: a.provider.Name(), Term: term, Err: err}
		}
		return a.fallback(term, err), nil
	}
	if len(records) == 0 {
		return a.fallback(term, ErrNoResults), nil
	}

	if len(records) > a.config.MaxCandidates {
		records = records[:a.config.MaxCandidates]
	}

	var robots *util.RobotsChecker
	if a.config.EnrichPages {
		robots = util.NewRobotsChecker(a.pages, a.config.UserAgent)
	}
	return &Results{
		n: len(records),
		at: func(ctx context.Context, i int) model.Recipe {
			return a.toRecipe(ctx, records[i], robots)
		},
	}, nil
}

// SearchTips returns raw search hits for a cooking technique question.
// There is no built-in fallback: tips are only served from a live provider.
func (a *Adapter) SearchTips(ctx context.Context, question string) ([]Record, error) {
	if a.provider == nil {
		return nil, ErrNoProvider
	}
	if !a.limiter.Allow(a.quotaKey()) {
		return nil, ErrRateLimited
	}

	records, err := a.provider.Search(ctx, strings.TrimSpace(question), a.config.MaxCandidates)
	if err != nil {
		return nil, fmt.Errorf("search tips: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoResults
	}
	for i := range records {
		records[i].Snippet = StripHTML(records[i].Snippet)
	}
	return records, nil
}

func (a *Adapter) fallback(term string, cause error) *Results {
	recipes := Catalog(term)
	if len(recipes) > a.config.MaxCandidates {
		recipes = recipes[:a.config.MaxCandidates]
	}
	return &Results{
		n:        len(recipes),
		degraded: true,
		cause:    cause,
		at: func(_ context.Context, i int) model.Recipe {
			return recipes[i]
		},
	}
}

// quotaKey identifies the provider in the shared limiter
func (a *Adapter) quotaKey() string {
	if e, ok := a.provider.(interface{ Endpoint() string }); ok {
		return e.Endpoint()
	}
	return "search://" + a.provider.Name()
}

// toRecipe converts a search hit into a recipe, optionally reading the page's recipe markup
func (a *Adapter) toRecipe(ctx context.Context, rec Record, robots *util.RobotsChecker) model.Recipe {
	title := StripHTML(rec.Title)
	summary := StripHTML(rec.Snippet)

	recipe := model.Recipe{
		Title:     title,
		Summary:   summary,
		Equipment: cookware.Infer(title + ". " + summary),
		Source:    &model.Source{Name: sourceName(rec.Link, a.provider.Name()), URL: rec.Link},
	}

	if robots == nil || rec.Link == "" {
		return recipe
	}
	page, err := a.fetchPage(ctx, rec.Link, robots)
	if err != nil {
		return recipe
	}

	recipe.Steps = page.Steps
	if len(page.Tools) > 0 {
		recipe.Equipment = mergeEquipment(recipe.Equipment, cookware.NormalizeAll(page.Tools))
	}
	return recipe
}

var errPageSkipped = errors.New("page skipped")

func (a *Adapter) fetchPage(ctx context.Context, link string, robots *util.RobotsChecker) (*pageRecipe, error) {
	if !robots.Allowed(ctx, link) || !a.limiter.Allow(link) {
		return nil, errPageSkipped
	}

	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", a.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := a.pages.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return nil, fmt.Errorf("%w: content type %s", errPageSkipped, ct)
	}

	page, ok := extractPageRecipe(io.LimitReader(resp.Body, a.config.MaxBodyBytes))
	if !ok {
		return nil, fmt.Errorf("%w: no recipe markup", errPageSkipped)
	}
	return page, nil
}

func mergeEquipment(base, extra []model.CookwareItem) []model.CookwareItem {
	seen := make(map[model.CookwareItem]bool, len(base)+len(extra))
	out := make([]model.CookwareItem, 0, len(base)+len(extra))
	for _, list := range [][]model.CookwareItem{base, extra} {
		for _, item := range list {
			if !seen[item] {
				seen[item] = true
				out = append(out, item)
			}
		}
	}
	return out
}

func sourceName(link, fallback string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return fallback
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Results is a lazy, finite, non-restartable sequence of candidate recipes, best first
type Results struct {
	n        int
	pos      int
	degraded bool
	cause    error
	at       func(ctx context.Context, i int) model.Recipe
}

// Next returns the next candidate, converting it on demand. It reports false once exhausted.
func (r *Results) Next(ctx context.Context) (model.Recipe, bool) {
	if r == nil || r.pos >= r.n {
		return model.Recipe{}, false
	}
	recipe := r.at(ctx, r.pos)
	r.pos++
	return recipe, true
}

// Len returns the total number of candidates, consumed or not
func (r *Results) Len() int {
	if r == nil {
		return 0
	}
	return r.n
}

// Degraded reports whether the candidates come from the built-in catalog after a provider failure
func (r *Results) Degraded() bool {
	return r != nil && r.degraded
}

// Cause returns why the adapter fell back, or nil for provider results
func (r *Results) Cause() error {
	if r == nil {
		return nil
	}
	return r.cause
}

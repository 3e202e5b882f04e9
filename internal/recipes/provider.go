package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/cookbot/internal/model"
)

// RecipeProvider is an external search capability returning ranked raw records, best first
type RecipeProvider interface {
	// Name returns the provider name
	Name() string

	// Search returns at most limit records for term
	Search(ctx context.Context, term string, limit int) ([]Record, error)
}

// Record is one raw search hit
type Record struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet"`
	Link     string `json:"link"`
	Position int    `json:"position"`
}

var (
	// ErrMalformedResponse marks a provider answer that succeeded at the transport level but cannot be read
	ErrMalformedResponse = errors.New("malformed search response")

	// ErrNoProvider is the fallback cause when no search credential is configured
	ErrNoProvider = errors.New("no search provider configured")

	// ErrRateLimited is the fallback cause when the search quota is exhausted
	ErrRateLimited = errors.New("search rate limit exceeded")

	// ErrNoResults is the fallback cause when the provider found nothing
	ErrNoResults = errors.New("search returned no results")
)

// AdapterError reports a malformed provider response. The adapter has already
// fallen back to built-in recipes when it returns one.
type AdapterError struct {
	Provider string
	Term     string
	Err      error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("recipe search %s %q: %v", e.Provider, e.Term, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// Config controls candidate count and page enrichment
type Config struct {
	MaxCandidates int
	EnrichPages   bool
	UserAgent     string
	MaxBodyBytes  int64
	Timeout       time.Duration
	HTTPProxy     string
	HTTPSProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		MaxCandidates: 3,
		UserAgent:     "cookbot/0.1",
		MaxBodyBytes:  2_000_000,
		Timeout:       10 * time.Second,
	}
}

// ConfigFromModel converts model.SearchConfig to recipes.Config
func ConfigFromModel(c model.SearchConfig) Config {
	cfg := Config{
		MaxCandidates: c.MaxCandidates,
		EnrichPages:   c.EnrichPages,
		UserAgent:     c.UserAgent,
		MaxBodyBytes:  c.MaxBodyBytes,
		Timeout:       c.Timeout,
		HTTPProxy:     c.HTTPProxy,
		HTTPSProxy:    c.HTTPSProxy,
	}
	def := DefaultConfig()
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = def.MaxCandidates
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return cfg
}

// NewProvider creates the configured search provider.
// A missing provider name or credential is a normal condition and returns (nil, nil).
func NewProvider(c model.SearchConfig) (RecipeProvider, error) {
	switch strings.ToLower(c.Provider) {
	case "":
		return nil, nil

	case "serpapi", "serp":
		if c.APIKey == "" {
			return nil, nil
		}
		return NewSerpAPIProvider(SerpAPIConfig{
			APIKey:       c.APIKey,
			BaseURL:      c.BaseURL,
			Timeout:      c.Timeout,
			MaxBodyBytes: c.MaxBodyBytes,
			HTTPProxy:    c.HTTPProxy,
			HTTPSProxy:   c.HTTPSProxy,
		})

	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: serpapi)", c.Provider)
	}
}

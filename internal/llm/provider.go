package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ppiankov/cookbot/internal/util"
)

// TextGenerator is the language generation capability: given a prompt, produce a completion.
// Implementations must return an error rather than block past the configured timeout.
type TextGenerator interface {
	// Name returns the provider name
	Name() string

	// Generate produces a single completion for the request
	Generate(ctx context.Context, req Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// Request contains the input for one completion
type Request struct {
	// System sets the assistant's role and rules
	System string

	// Prompt is the user turn
	Prompt string

	// MaxTokens caps the completion length (0 = provider config)
	MaxTokens int

	// Temperature overrides the configured temperature when > 0
	Temperature float32
}

// Response contains a completion
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// ErrEmptyCompletion is returned when a provider answers without any text
var ErrEmptyCompletion = errors.New("empty completion")

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout bounds every generation call
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// Temperature used when a request does not set one
	Temperature float32

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     30 * time.Second,
		MaxTokens:   800,
		Temperature: 0.2,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return c.Timeout
}

func (c Config) maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 800
}

func (c Config) temperature(req Request) float32 {
	if req.Temperature > 0 {
		return req.Temperature
	}
	return c.Temperature
}

func (c Config) httpClient() *http.Client {
	return util.NewHTTPClient(c.HTTPProxy, c.HTTPSProxy)
}

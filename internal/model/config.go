package model

import (
	"runtime"
	"time"
)

// Config holds the complete cookbot configuration
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Cookware    CookwareConfig    `yaml:"cookware" mapstructure:"cookware"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
}

// LLMConfig configures the text generation provider
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per generation call
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	HTTPProxy   string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// SearchConfig configures the external recipe search provider
type SearchConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider"` // serpapi, "" (built-in recipes only)
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"` // Per search call
	MaxCandidates     int           `yaml:"max_candidates" mapstructure:"max_candidates"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables limiting
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	EnrichPages       bool          `yaml:"enrich_pages" mapstructure:"enrich_pages"` // Fetch result pages for steps/equipment
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	HTTPProxy         string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// CookwareConfig configures cookware matching
type CookwareConfig struct {
	// SubstitutionThreshold is the largest share of required items that may be
	// substituted before a recipe is rejected as infeasible. 0 allows no
	// substitution; a negative value means the default of 0.5.
	SubstitutionThreshold float64 `yaml:"substitution_threshold" mapstructure:"substitution_threshold"`

	// DefaultInventory is used when a cookware request declares no items
	DefaultInventory []string `yaml:"default_inventory" mapstructure:"default_inventory"`
}

// ServerConfig configures the HTTP endpoint
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"` // empty allows all
	Debug          bool     `yaml:"debug" mapstructure:"debug"`                     // Include debug_info in responses
}

// ConcurrencyConfig configures batch processing
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o",
			Timeout:     30 * time.Second,
			MaxTokens:   800,
			Temperature: 0.2,
		},
		Search: SearchConfig{
			Provider:          "serpapi",
			Timeout:           10 * time.Second,
			MaxCandidates:     3,
			RequestsPerSecond: 5,
			Burst:             5,
			UserAgent:         "cookbot/0.1 (+https://github.com/ppiankov/cookbot)",
			MaxBodyBytes:      2_000_000,
		},
		Cookware: CookwareConfig{
			SubstitutionThreshold: 0.5,
			DefaultInventory: []string{
				"Spatula",
				"Frying Pan",
				"Little Pot",
				"Stovetop",
				"Whisk",
				"Knife",
				"Ladle",
				"Spoon",
			},
		},
		Server: ServerConfig{
			Addr: ":8000",
		},
		Concurrency: ConcurrencyConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

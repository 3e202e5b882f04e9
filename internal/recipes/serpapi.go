package recipes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/ppiankov/cookbot/internal/util"
)

// SerpAPIConfig configures the SerpAPI Google search provider
type SerpAPIConfig struct {
	APIKey       string
	BaseURL      string
	Timeout      time.Duration
	MaxBodyBytes int64
	HTTPProxy    string
	HTTPSProxy   string
}

// SerpAPIProvider implements RecipeProvider over SerpAPI's Google engine
type SerpAPIProvider struct {
	apiKey       string
	baseURL      string
	timeout      time.Duration
	maxBodyBytes int64
	httpClient   *http.Client
}

// NewSerpAPIProvider creates a new SerpAPI provider
func NewSerpAPIProvider(config SerpAPIConfig) (*SerpAPIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("SerpAPI key is required")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://serpapi.com"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	maxBody := config.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 2_000_000
	}

	return &SerpAPIProvider{
		apiKey:       config.APIKey,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		timeout:      timeout,
		maxBodyBytes: maxBody,
		httpClient:   util.NewHTTPClient(config.HTTPProxy, config.HTTPSProxy),
	}, nil
}

// Name returns the provider name
func (p *SerpAPIProvider) Name() string {
	return "serpapi"
}

// Endpoint is the URL the provider's requests go to
func (p *SerpAPIProvider) Endpoint() string {
	return p.baseURL + "/search.json"
}

// Search queries Google through SerpAPI and returns organic results in rank order.
// Failures are returned as-is; the adapter owns the fallback.
func (p *SerpAPIProvider) Search(ctx context.Context, term string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 3
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	params := url.Values{}
	params.Set("engine", "google")
	params.Set("q", term)
	params.Set("google_domain", "google.com")
	params.Set("gl", "us")
	params.Set("hl", "en")
	params.Set("num", strconv.Itoa(limit))
	params.Set("api_key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Message: gjson.GetBytes(body, "error").String()}
	}

	return parseSerpAPI(body, limit)
}

// StatusError is a non-2xx answer from the search API
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("SerpAPI error (%d): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("SerpAPI error (%d)", e.Code)
}

// parseSerpAPI reads organic_results from a SerpAPI response body
func parseSerpAPI(body []byte, limit int) ([]Record, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedResponse)
	}

	doc := gjson.ParseBytes(body)
	organic := doc.Get("organic_results")
	if !organic.Exists() {
		// Google legitimately found nothing
		if doc.Get("search_metadata.status").String() == "Success" {
			return nil, nil
		}
		if msg := doc.Get("error").String(); msg != "" {
			return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, msg)
		}
		return nil, fmt.Errorf("%w: no organic_results", ErrMalformedResponse)
	}
	if !organic.IsArray() {
		return nil, fmt.Errorf("%w: organic_results is %s", ErrMalformedResponse, organic.Type)
	}

	var records []Record
	for i, item := range organic.Array() {
		if len(records) >= limit {
			break
		}
		title := strings.TrimSpace(item.Get("title").String())
		if title == "" {
			continue
		}
		position := int(item.Get("position").Int())
		if position == 0 {
			position = i + 1
		}
		records = append(records, Record{
			Title:    title,
			Snippet:  item.Get("snippet").String(),
			Link:     item.Get("link").String(),
			Position: position,
		})
	}

	return records, nil
}

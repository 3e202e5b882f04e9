package worker

import (
	"testing"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Allow(t *testing.T) {
	// 1 rps, burst 1
	limiter := NewLimiter(1, 1)
	url := "https://serpapi.com/search.json?q=soup"

	if !limiter.Allow(url) {
		t.Errorf("first request should pass")
	}

	// Token consumed; Allow never waits
	if limiter.Allow(url) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	// Different host has its own bucket
	if !limiter.Allow("https://www.allrecipes.com/recipe/1") {
		t.Errorf("expected allow for other host")
	}
}

func TestLimiter_Disabled(t *testing.T) {
	limiter := NewLimiter(0, 1)
	for i := 0; i < 100; i++ {
		if !limiter.Allow("https://serpapi.com/search.json") {
			t.Fatalf("request %d denied with limiting disabled", i)
		}
	}

	var nilLimiter *Limiter
	if !nilLimiter.Allow("https://serpapi.com") {
		t.Error("nil limiter should allow")
	}
}

func TestLimiter_RejectsHostlessURL(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.Allow("::invalid") {
		t.Error("expected invalid URL to be denied")
	}
	if limiter.Allow("/relative/path") {
		t.Error("expected URL without host to be denied")
	}
}

func TestExtractHost(t *testing.T) {
	host, err := extractHost("http://example.com/foo")
	if err != nil {
		t.Fatalf("extractHost failed: %v", err)
	}
	if host != "example.com" {
		t.Errorf("expected example.com, got %s", host)
	}

	_, err = extractHost("::invalid")
	if err == nil {
		t.Errorf("expected error for invalid URL")
	}
}

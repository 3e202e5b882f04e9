package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://plain:8080", "http://secure:8443")

	req, _ := http.NewRequest(http.MethodGet, "https://serpapi.com/search.json", nil)
	u, err := proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u.Host != "secure:8443" {
		t.Errorf("Expected https proxy, got %s", u.Host)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://localhost:11434/api/generate", nil)
	u, err = proxy(req)
	if err != nil {
		t.Fatalf("proxy: %v", err)
	}
	if u.Host != "plain:8080" {
		t.Errorf("Expected http proxy, got %s", u.Host)
	}
}

func TestRobotsChecker_Allowed(t *testing.T) {
	var robotsHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsHits, 1)
			_, _ = w.Write([]byte("User-agent: cookbot\nDisallow: /private/\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "cookbot/1.0")
	ctx := context.Background()

	if !checker.Allowed(ctx, server.URL+"/recipes/soup") {
		t.Error("Expected /recipes/soup to be allowed")
	}
	if checker.Allowed(ctx, server.URL+"/private/soup") {
		t.Error("Expected /private/soup to be disallowed")
	}
	if got := atomic.LoadInt32(&robotsHits); got != 1 {
		t.Errorf("Expected robots.txt fetched once per checker, got %d", got)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker(server.Client(), "cookbot/1.0")
	if !checker.Allowed(context.Background(), server.URL+"/anything") {
		t.Error("Expected missing robots.txt to allow fetch")
	}
}

func TestRobotsChecker_RejectsBadURL(t *testing.T) {
	checker := NewRobotsChecker(nil, "cookbot")
	for _, raw := range []string{"", "ftp://example.com/x", "not a url"} {
		if checker.Allowed(context.Background(), raw) {
			t.Errorf("Expected %q to be rejected", raw)
		}
	}
}

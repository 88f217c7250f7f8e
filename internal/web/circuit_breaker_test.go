package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCircuitBreakerFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<a href="/tool.zip">tool</a>`))
	}))
	defer server.Close()

	cbFetcher := NewCircuitBreakerFetcher(NewFetcher())

	page, err := cbFetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if page.Len() != 1 {
		t.Errorf("expected 1 link, got %d", page.Len())
	}

	states := cbFetcher.BreakerState()
	if len(states) != 1 {
		t.Fatalf("expected 1 breaker state, got %d", len(states))
	}
	for host, state := range states {
		if state != "closed" {
			t.Errorf("breaker for %s is %s, want closed", host, state)
		}
	}
}

func TestCircuitBreakerOpensOnFailures(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cbFetcher := NewCircuitBreakerFetcher(NewFetcher(WithMaxRetries(0), WithBaseDelay(0)))

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, _ = cbFetcher.Fetch(ctx, server.URL+"/index.html")
	}

	if requests >= 10 {
		t.Errorf("expected the breaker to stop requests, server saw %d", requests)
	}

	_, err := cbFetcher.Fetch(ctx, server.URL+"/index.html")
	if !errors.Is(err, ErrUpstreamDown) {
		t.Errorf("expected ErrUpstreamDown from open breaker, got %v", err)
	}

	for host, state := range cbFetcher.BreakerState() {
		if state != "open" {
			t.Errorf("breaker for %s is %s, want open", host, state)
		}
	}
}

func TestExtractHost(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
	}{
		{"plain", "https://www.7-zip.org/download.html", "www.7-zip.org"},
		{"with port", "https://example.com:8080/path", "example.com:8080"},
		{"invalid URL", "not-a-valid-url", "not-a-valid-url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractHost(tt.url); got != tt.expected {
				t.Errorf("extractHost(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

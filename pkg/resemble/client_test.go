package resemble

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/resemble-ai/resemble-go/internal/config"
	"github.com/resemble-ai/resemble-go/internal/resilience"
)

func fastRetry() *resilience.RetryConfig {
	return &resilience.RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func newTestClient(t *testing.T, h http.Handler, opts ...Option) *Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	base := []Option{
		WithBaseURL(srv.URL + "/api"),
		WithSynthesisURL(srv.URL + "/synth"),
		WithLogger(zerolog.Nop()),
		WithRetryConfig(fastRetry()),
	}
	c, err := New("test-key", append(base, opts...)...)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_EmptyKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("Expected error for empty API key")
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New("key", WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.BaseURL() != DefaultBaseURL {
		t.Errorf("Expected base URL %q, got %q", DefaultBaseURL, c.BaseURL())
	}
	if c.SynthesisURL() != DefaultSynthesisURL {
		t.Errorf("Expected synthesis URL %q, got %q", DefaultSynthesisURL, c.SynthesisURL())
	}
	if c.httpClient.Timeout != defaultTimeout {
		t.Errorf("Expected timeout %v, got %v", defaultTimeout, c.httpClient.Timeout)
	}
}

func TestEndpoint(t *testing.T) {
	c, err := New("key",
		WithBaseURL("https://example.com/api"),
		WithSynthesisURL("https://synth.example.com"),
		WithLogger(zerolog.Nop()),
	)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		srv      server
		path     string
		expected string
	}{
		{appServer, "projects", "https://example.com/api/v2/projects"},
		{appServer, "/projects/p1/batch", "https://example.com/api/v2/projects/p1/batch"},
		{synthesisServer, "stream", "https://synth.example.com/stream"},
		{synthesisServer, "/synthesize", "https://synth.example.com/synthesize"},
	}

	for _, tt := range tests {
		if got := c.endpoint(tt.srv, tt.path); got != tt.expected {
			t.Errorf("endpoint(%q) = %q, expected %q", tt.path, got, tt.expected)
		}
	}
}

func TestHeaders(t *testing.T) {
	var appAuth, synthAuth, synthToken, requestID string
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2/projects/p1", func(w http.ResponseWriter, r *http.Request) {
		appAuth = r.Header.Get("Authorization")
		requestID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": map[string]any{"uuid": "p1"}})
	})
	mux.HandleFunc("/synth/synthesize", func(w http.ResponseWriter, r *http.Request) {
		synthAuth = r.Header.Get("Authorization")
		synthToken = r.Header.Get("x-access-token")
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	c := newTestClient(t, mux)

	if _, err := c.Projects.Get(context.Background(), "p1"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if _, err := c.Clips.CreateDirect(context.Background(), DirectClipInput{Data: "hi"}); err != nil {
		t.Fatalf("CreateDirect failed: %v", err)
	}

	if appAuth != "Token token=test-key" {
		t.Errorf("Unexpected app Authorization %q", appAuth)
	}
	if synthAuth != "Bearer test-key" || synthToken != "test-key" {
		t.Errorf("Unexpected synthesis auth %q / %q", synthAuth, synthToken)
	}
	if len(requestID) != 36 {
		t.Errorf("Expected a uuid request ID, got %q", requestID)
	}
}

func TestAPIError_Status(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Project not found"})
	}))

	_, err := c.Projects.Get(context.Background(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("Expected not found error, got %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %T", err)
	}
	if apiErr.Message != "Project not found" {
		t.Errorf("Expected server message, got %q", apiErr.Message)
	}
	if apiErr.RequestID == "" {
		t.Error("Expected request ID on the error")
	}
}

func TestAPIError_SuccessFalse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "name is taken"})
	}))

	_, err := c.Projects.Create(context.Background(), ProjectInput{Name: "dup"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusOK || apiErr.Message != "name is taken" {
		t.Errorf("Unexpected error: %+v", apiErr)
	}
}

func TestAPIError_NonJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusUnauthorized)
	}))

	_, err := c.Voices.Get(context.Background(), "v1", nil)
	if !IsUnauthorized(err) {
		t.Fatalf("Expected unauthorized error, got %v", err)
	}

	var apiErr *APIError
	errors.As(err, &apiErr)
	if apiErr.Message != "Unauthorized" {
		t.Errorf("Expected status text message, got %q", apiErr.Message)
	}
}

func TestRetry_IdempotentRequests(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "message": "busy"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "page": 1, "num_pages": 1, "items": []any{}})
	}))

	if _, err := c.Projects.List(context.Background(), 1, 10); err != nil {
		t.Fatalf("Expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestRetry_NotForPost(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": "boom"})
	}))

	_, err := c.Projects.Create(context.Background(), ProjectInput{Name: "x"})

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("Expected 500 APIError, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for POST, got %d", calls)
	}
}

func TestRetry_NotForClientErrors(t *testing.T) {
	var calls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "bad page"})
	}))

	if _, err := c.Projects.List(context.Background(), -1, 0); err == nil {
		t.Fatal("Expected error")
	}
	if calls != 1 {
		t.Errorf("Expected 1 call for a 400, got %d", calls)
	}
}

func TestCircuitBreaker_Opens(t *testing.T) {
	var calls int32
	breaker := resilience.NewCircuitBreaker("resemble-test", 2, time.Hour)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}), WithCircuitBreaker(breaker), WithRetryConfig(nil))

	for i := 0; i < 2; i++ {
		_, _ = c.Projects.Get(context.Background(), "p1")
	}

	_, err := c.Projects.Get(context.Background(), "p1")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("Expected ErrCircuitOpen, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected the open circuit to block the third call, got %d calls", calls)
	}
	if ok, _ := c.Healthy(context.Background()); ok {
		t.Error("Expected client to report unhealthy while open")
	}
}

func TestCircuitBreaker_IgnoresClientErrors(t *testing.T) {
	breaker := resilience.NewCircuitBreaker("resemble-test", 1, time.Hour)
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false})
	}), WithCircuitBreaker(breaker))

	for i := 0; i < 3; i++ {
		if _, err := c.Phonemes.Get(context.Background(), "x"); !IsNotFound(err) {
			t.Fatalf("Expected not found, got %v", err)
		}
	}
	if breaker.GetState() != resilience.StateClosed {
		t.Error("Expected 404s not to open the circuit")
	}
}

func TestContextCancelled(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := c.Projects.Get(ctx, "p1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		APIKey:                     "cfg-key",
		BaseURL:                    "https://example.com/api",
		SynthesisURL:               "https://synth.example.com",
		HTTPTimeout:                5,
		RetryMaxAttempts:           4,
		RetryInitialBackoff:        10,
		RetryMaxBackoff:            100,
		CircuitBreakerMaxFailures:  2,
		CircuitBreakerResetTimeout: 1,
	}

	c, err := NewFromConfig(cfg, WithLogger(zerolog.Nop()))
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if c.BaseURL() != "https://example.com/api/" || c.SynthesisURL() != "https://synth.example.com/" {
		t.Errorf("Unexpected URLs %q, %q", c.BaseURL(), c.SynthesisURL())
	}
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %v", c.httpClient.Timeout)
	}
	if c.retry.MaxAttempts != 4 || c.retry.InitialBackoff != 10*time.Millisecond {
		t.Errorf("Unexpected retry config %+v", c.retry)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d := parseRetryAfter("3"); d != 3*time.Second {
		t.Errorf("Expected 3s, got %v", d)
	}
	if d := parseRetryAfter(""); d != 0 {
		t.Errorf("Expected 0, got %v", d)
	}
	if d := parseRetryAfter("soon"); d != 0 {
		t.Errorf("Expected 0 for garbage, got %v", d)
	}
}

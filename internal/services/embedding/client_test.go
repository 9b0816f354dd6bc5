package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func writeEmbeddings(t *testing.T, w http.ResponseWriter, data []map[string]any) {
	t.Helper()
	payload := map[string]any{
		"data":  data,
		"model": "demo-model",
		"usage": map[string]int{"prompt_tokens": 7, "total_tokens": 7},
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestEmbedSendsRequestAndOrdersResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var body embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "demo-model" || len(body.Input) != 2 || body.Input[0] != "first" {
			t.Errorf("unexpected request body %+v", body)
		}
		writeEmbeddings(t, w, []map[string]any{
			{"index": 1, "embedding": []float64{0, 1}},
			{"index": 0, "embedding": []float64{1, 0}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL + "/v1/", Model: "demo-model"})
	vectors, usage, err := client.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1 || vectors[1][1] != 1 {
		t.Fatalf("expected vectors in input order, got %v", vectors)
	}
	if usage.TotalTokens != 7 {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestEmbedRejectsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEmbeddings(t, w, []map[string]any{{"index": 0, "embedding": []float64{1}}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	_, _, err := client.Embed(context.Background(), []string{"a", "b"})
	if err == nil || !strings.Contains(err.Error(), "expected 2 embeddings, got 1") {
		t.Fatalf("expected count mismatch error, got %v", err)
	}
}

func TestEmbedRejectsEmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEmbeddings(t, w, []map[string]any{{"index": 0, "embedding": []float64{}}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	if _, _, err := client.Embed(context.Background(), []string{"a"}); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty vector error, got %v", err)
	}
}

func TestEmbedValidatesArguments(t *testing.T) {
	client := NewClient(Config{APIKey: "k", Model: "m"})
	if _, _, err := client.Embed(context.Background(), nil); err == nil {
		t.Fatal("expected error for no inputs")
	}
	if _, _, err := client.Embed(context.Background(), []string{"ok", "  "}); err == nil {
		t.Fatal("expected error for blank input")
	}
	noKey := NewClient(Config{Model: "m"})
	if _, _, err := noKey.Embed(context.Background(), []string{"x"}); err == nil || !strings.Contains(err.Error(), "api key required") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestEmbedRetriesOnTooManyRequests(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
			return
		}
		writeEmbeddings(t, w, []map[string]any{{"index": 0, "embedding": []float64{0.5}}})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	vectors, _, err := client.Embed(context.Background(), []string{"x"})
	if err != nil {
		t.Fatalf("Embed returned error: %v", err)
	}
	if vectors[0][0] != 0.5 {
		t.Fatalf("unexpected vector %v", vectors)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != 3*time.Second {
		t.Fatalf("expected Retry-After delay of 3s, got %v", slept)
	}
}

func TestEmbedRetriesServerErrorsWithBackoff(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "k", BaseURL: server.URL, Model: "m", MaxRetries: 4},
		WithRetryBackoff(100*time.Millisecond, 250*time.Millisecond),
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	_, _, err := client.Embed(context.Background(), []string{"x"})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if !strings.Contains(err.Error(), "failed after 4 attempts") {
		t.Fatalf("unexpected error: %v", err)
	}
	if StatusCode(err) != http.StatusBadGateway {
		t.Fatalf("expected status 502 to be recoverable from error, got %d", StatusCode(err))
	}
	if atomic.LoadInt32(&calls) != 4 {
		t.Fatalf("expected 4 calls, got %d", calls)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 250 * time.Millisecond}
	if len(slept) != len(want) {
		t.Fatalf("unexpected sleeps %v", slept)
	}
	for i := range want {
		if slept[i] != want[i] {
			t.Fatalf("sleep %d: got %v want %v", i, slept[i], want[i])
		}
	}
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "m"}, WithSleeper(func(time.Duration) {}))
	_, _, err := client.Embed(context.Background(), []string{"x"})
	if err == nil || StatusCode(err) != http.StatusUnauthorized {
		t.Fatalf("expected 401 error, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected a single call, got %d", calls)
	}
}

func TestEmbedStopsRetryingWhenContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	client := NewClient(
		Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithSleeper(func(time.Duration) { cancel() }),
	)
	_, _, err := client.Embed(ctx, []string{"x"})
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHealthCheckSingleAttempt(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, WithSleeper(func(time.Duration) {}))
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check failure")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected one attempt, got %d", calls)
	}
}

func TestHealthCheckSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEmbeddings(t, w, []map[string]any{{"index": 0, "embedding": []float64{0.1, 0.2}}})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("5"); !ok || d != 5*time.Second {
		t.Fatalf("unexpected seconds parse: %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("negative seconds should be rejected")
	}
	if _, ok := parseRetryAfter("soon"); ok {
		t.Fatal("garbage should be rejected")
	}
	future := time.Now().Add(time.Hour).UTC().Format(http.TimeFormat)
	if d, ok := parseRetryAfter(future); !ok || d <= 0 {
		t.Fatalf("expected positive delay for HTTP date, got %v %v", d, ok)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{APIKey: " k ", Model: " m "})
	if client.cfg.BaseURL != defaultBaseURL {
		t.Fatalf("unexpected base url %q", client.cfg.BaseURL)
	}
	if client.Model() != "m" {
		t.Fatalf("expected trimmed model, got %q", client.Model())
	}
	if client.retryAttempts() != defaultRetryAttempts {
		t.Fatalf("unexpected attempts %d", client.retryAttempts())
	}
	if client.timeoutDuration() != defaultHTTPTimeout {
		t.Fatalf("unexpected timeout %v", client.timeoutDuration())
	}
}

package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// EmbeddingServer is a fake OpenAI-compatible embeddings endpoint. Each input
// maps to a vector of Dimensions values derived from its length, so equal
// inputs always embed equally.
type EmbeddingServer struct {
	Dimensions int

	server *httptest.Server
	mu     sync.Mutex
	inputs []string
	fail   int
}

// NewEmbeddingServer starts a fake endpoint that is closed when the test ends.
func NewEmbeddingServer(t testing.TB, dimensions int) *EmbeddingServer {
	t.Helper()
	s := &EmbeddingServer{Dimensions: dimensions}
	s.server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL to configure as embedding.base_url.
func (s *EmbeddingServer) URL() string {
	return s.server.URL + "/v1"
}

// FailWith makes every following request fail with status.
func (s *EmbeddingServer) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = status
}

// Inputs returns every input received so far.
func (s *EmbeddingServer) Inputs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.inputs...)
}

// VectorFor returns the vector the server produces for input.
func (s *EmbeddingServer) VectorFor(input string) []float64 {
	vector := make([]float64, s.Dimensions)
	for i := range vector {
		vector[i] = float64(len(input) * (i + 1))
	}
	return vector
}

func (s *EmbeddingServer) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/embeddings") || r.Header.Get("Authorization") == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	var req struct {
		Model string   `json:"model"`
		Input []string `json:"input"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	fail := s.fail
	s.inputs = append(s.inputs, req.Input...)
	s.mu.Unlock()
	if fail != 0 {
		w.WriteHeader(fail)
		_, _ = w.Write([]byte(`{"error":{"message":"forced failure"}}`))
		return
	}

	data := make([]map[string]any, len(req.Input))
	tokens := 0
	for i, input := range req.Input {
		data[i] = map[string]any{"index": i, "embedding": s.VectorFor(input)}
		tokens += len(strings.Fields(input))
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":  data,
		"model": req.Model,
		"usage": map[string]int{"prompt_tokens": tokens, "total_tokens": tokens},
	})
}

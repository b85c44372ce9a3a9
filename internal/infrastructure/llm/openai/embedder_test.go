package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/adgm-corporate-agent/internal/core/domain"
)

func newEmbeddingsServer(t *testing.T, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		if status != http.StatusOK {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		var req struct {
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		data := make([]map[string]any, 0, len(req.Input))
		// reversed on purpose: results are placed by index
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{
				"object":    "embedding",
				"index":     i,
				"embedding": []float32{float32(i), 0.5},
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": data, "model": "m"})
	}))
}

func TestEmbedOrdersByIndex(t *testing.T) {
	server := newEmbeddingsServer(t, http.StatusOK)
	defer server.Close()

	embedder, err := NewEmbedder(Options{APIKey: "k", BaseURL: server.URL + "/v1", Model: "m", Dimension: 2})
	if err != nil {
		t.Fatalf("NewEmbedder() error = %v", err)
	}
	vectors, err := embedder.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Fatalf("vector %d out of order: %v", i, v)
		}
	}
}

func TestEmbedServerErrorIsTemporary(t *testing.T) {
	server := newEmbeddingsServer(t, http.StatusServiceUnavailable)
	defer server.Close()

	embedder, err := NewEmbedder(Options{APIKey: "k", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("NewEmbedder() error = %v", err)
	}
	_, err = embedder.EmbedQuery(context.Background(), "q")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestNewEmbedderRequiresAPIKey(t *testing.T) {
	_, err := NewEmbedder(Options{})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

package embed

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOllama serves /api/tags and /api/embed with fixed 3-wide embeddings.
func fakeOllama(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/embed", func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		resp := embedResponse{Embeddings: make([][]float32, len(req.Input))}
		for i := range req.Input {
			resp.Embeddings[i] = []float32{2, 0, 0}
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestOllamaEmbedder_ProbesDimensions(t *testing.T) {
	server := fakeOllama(t)

	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: server.URL})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, 3, e.Dimensions())
	assert.Equal(t, "ollama/nomic-embed-text", e.ModelName())
}

func TestOllamaEmbedder_BatchVectorsNormalized(t *testing.T) {
	server := fakeOllama(t)
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: server.URL, BatchSize: 2})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	// Three texts across two chunked requests.
	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)

	require.Len(t, vectors, 3)
	for _, v := range vectors {
		var sum float64
		for _, val := range v {
			sum += float64(val) * float64(val)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-5)
	}
}

func TestOllamaEmbedder_UnreachableHostFails(t *testing.T) {
	_, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: "http://127.0.0.1:1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestOllamaEmbedder_ClosedRejectsRequests(t *testing.T) {
	server := fakeOllama(t)
	e, err := NewOllamaEmbedder(context.Background(), OllamaConfig{Host: server.URL})
	require.NoError(t, err)
	require.NoError(t, e.Close())

	_, err = e.EmbedBatch(context.Background(), []string{"a"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestNewEmbedder_FactoryFallsBackWhenModelDown(t *testing.T) {
	e, err := NewEmbedder(context.Background(), Options{
		Provider:   "ollama",
		OllamaHost: "http://127.0.0.1:1",
	})
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, "termfreq", e.ModelName())
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := NewEmbedder(context.Background(), Options{Provider: "openai"})

	require.Error(t, err)
}

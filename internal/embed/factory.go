package embed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Options selects and configures the embedding backend for a pipeline run.
type Options struct {
	// Provider is "ollama" or "termfreq".
	Provider string
	// Model is the Ollama model name.
	Model string
	// OllamaHost is the Ollama endpoint.
	OllamaHost string
	// BatchSize is the texts-per-request batch size.
	BatchSize int
	// MaxFeatures bounds the term-frequency fallback vocabulary.
	MaxFeatures int
}

// NewEmbedder creates the embedder for a pipeline run. The backend is
// chosen once here and used for every collection in the run. When the
// model backend is unavailable the pipeline degrades to the local
// term-frequency vectorizer with a warning rather than failing.
func NewEmbedder(ctx context.Context, opts Options) (Embedder, error) {
	switch strings.ToLower(opts.Provider) {
	case "", "ollama":
		embedder, err := NewOllamaEmbedder(ctx, OllamaConfig{
			Host:      opts.OllamaHost,
			Model:     opts.Model,
			BatchSize: opts.BatchSize,
		})
		if err != nil {
			slog.Warn("embedding model unavailable, degrading to term-frequency fallback",
				slog.String("host", opts.OllamaHost),
				slog.String("error", err.Error()))
			return NewTermFrequencyEmbedder(opts.MaxFeatures), nil
		}
		return embedder, nil

	case "termfreq":
		return NewTermFrequencyEmbedder(opts.MaxFeatures), nil

	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}

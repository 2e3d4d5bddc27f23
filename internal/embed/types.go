// Package embed generates vector embeddings for knowledge-base entities.
// Two interchangeable backends exist: an Ollama-backed model embedder and
// a local term-frequency vectorizer used as the degraded-mode fallback.
// The backend is selected once at pipeline start.
package embed

import (
	"context"
	"math"
	"time"
)

// Common embedding constants.
const (
	// DefaultBatchSize is the default number of texts per embedding request.
	DefaultBatchSize = 32

	// DefaultTimeout is the per-request timeout for the model backend.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of retry attempts for transient
	// model-backend failures.
	DefaultMaxRetries = 3

	// DefaultMaxFeatures bounds the term-frequency fallback vocabulary.
	DefaultMaxFeatures = 1000
)

// Embedder generates vector embeddings for text. Implementations return
// unit-norm vectors so the flat inner-product index computes cosine
// similarity directly.
type Embedder interface {
	// Embed generates the embedding for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding width.
	Dimensions() int

	// ModelName returns the backend identifier.
	ModelName() string

	// Available reports whether the backend is ready.
	Available(ctx context.Context) bool

	// Close releases resources.
	Close() error
}

// Fitter is implemented by backends whose vector basis must be fit on a
// collection before embedding it. The term-frequency fallback fits per
// collection, which makes its vectors local to that collection: they are
// not comparable across collections.
type Fitter interface {
	Fit(texts []string)
}

// Normalize scales v to unit L2 norm. Zero vectors are returned unchanged.
func Normalize(v []float32) []float32 {
	var sumSquares float64
	for _, val := range v {
		sumSquares += float64(val) * float64(val)
	}
	magnitude := math.Sqrt(sumSquares)
	if magnitude == 0 {
		return v
	}
	normalized := make([]float32, len(v))
	for i, val := range v {
		normalized[i] = float32(float64(val) / magnitude)
	}
	return normalized
}

package embed

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of text embeddings the cache retains.
const DefaultCacheSize = 1024

// CachedEmbedder wraps an Embedder with an LRU cache keyed by text.
// Repeated query texts skip the backend entirely.
type CachedEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

var _ Embedder = (*CachedEmbedder)(nil)

// NewCachedEmbedder wraps inner with a cache of the given size.
func NewCachedEmbedder(inner Embedder, size int) (*CachedEmbedder, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding cache: %w", err)
	}
	return &CachedEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text or delegates to the backend.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := e.cache.Get(text); ok {
		return v, nil
	}
	v, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	e.cache.Add(text, v)
	return v, nil
}

// EmbedBatch delegates misses to the backend in one request and fills the
// cache with the results.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if v, ok := e.cache.Get(text); ok {
			result[i] = v
		} else {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, text)
		}
	}

	if len(missTexts) > 0 {
		vectors, err := e.inner.EmbedBatch(ctx, missTexts)
		if err != nil {
			return nil, err
		}
		for j, i := range missIdx {
			result[i] = vectors[j]
			e.cache.Add(texts[i], vectors[j])
		}
	}
	return result, nil
}

// Dimensions returns the backend embedding width.
func (e *CachedEmbedder) Dimensions() int { return e.inner.Dimensions() }

// ModelName returns the backend identifier.
func (e *CachedEmbedder) ModelName() string { return e.inner.ModelName() }

// Available reports backend readiness.
func (e *CachedEmbedder) Available(ctx context.Context) bool { return e.inner.Available(ctx) }

// Close purges the cache and closes the backend.
func (e *CachedEmbedder) Close() error {
	e.cache.Purge()
	return e.inner.Close()
}

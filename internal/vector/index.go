// Package vector builds and persists the per-collection similarity
// indexes. Vectors are unit-normalized before insertion, so inner product
// equals cosine similarity; nearest-neighbor search runs over a coder/hnsw
// graph keyed by entity position. Persistence is positional: a flat vector
// file plus a JSON metadata document, so vector i resolves to metadata
// entry i.
package vector

import (
	"fmt"
	"sync"

	"github.com/coder/hnsw"

	"github.com/utcpkb/kbforge/internal/embed"
)

// Index is a cosine-similarity nearest-neighbor index over one entity
// collection. Keys are entity positions in the collection.
type Index struct {
	mu      sync.RWMutex
	graph   *hnsw.Graph[uint64]
	vectors [][]float32 // positional, unit-norm
	dims    int
}

// Result is one similarity hit: the entity position and its cosine
// similarity to the query.
type Result struct {
	Position   int
	Similarity float32
}

// NewIndex creates an empty index for vectors of the given width.
func NewIndex(dims int) *Index {
	graph := hnsw.NewGraph[uint64]()
	graph.Distance = hnsw.CosineDistance
	graph.M = 16
	graph.EfSearch = 20
	graph.Ml = 0.25

	return &Index{graph: graph, dims: dims}
}

// Dimensions returns the vector width.
func (idx *Index) Dimensions() int { return idx.dims }

// Len returns the number of indexed vectors.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.vectors)
}

// Vector returns the stored vector at position, or nil when out of range.
func (idx *Index) Vector(position int) []float32 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	if position < 0 || position >= len(idx.vectors) {
		return nil
	}
	return idx.vectors[position]
}

// Add appends vectors in collection order. Every vector is normalized to
// unit length before insertion; positions are assigned sequentially.
func (idx *Index) Add(vectors [][]float32) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, v := range vectors {
		if len(v) != idx.dims {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", idx.dims, len(v))
		}
		normalized := embed.Normalize(v)
		if isZero(normalized) {
			// Out-of-vocabulary texts embed to zero. A fixed basis vector
			// keeps every entry unit norm so cosine distance stays defined.
			normalized = basisVector(idx.dims)
		}
		position := uint64(len(idx.vectors))
		idx.graph.Add(hnsw.MakeNode(position, normalized))
		idx.vectors = append(idx.vectors, normalized)
	}
	return nil
}

func isZero(v []float32) bool {
	for _, val := range v {
		if val != 0 {
			return false
		}
	}
	return true
}

func basisVector(dims int) []float32 {
	v := make([]float32, dims)
	v[0] = 1
	return v
}

// Search returns the k nearest entities to query by cosine similarity,
// most similar first. The query is normalized before searching.
func (idx *Index) Search(query []float32, k int) ([]Result, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(query) != idx.dims {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", idx.dims, len(query))
	}
	if len(idx.vectors) == 0 || k <= 0 {
		return []Result{}, nil
	}

	normalized := embed.Normalize(query)
	nodes := idx.graph.Search(normalized, k)

	results := make([]Result, 0, len(nodes))
	for _, node := range nodes {
		// CosineDistance = 1 - cosine similarity.
		distance := idx.graph.Distance(normalized, node.Value)
		results = append(results, Result{
			Position:   int(node.Key),
			Similarity: 1 - distance,
		})
	}
	return results, nil
}

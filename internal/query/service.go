// Package query is the read-only surface external collaborators (CLI,
// HTTP layers, packagers) consume: full collection reads, substring
// search, exact-match filtering, statistics, and optional semantic lookup
// over the concept vector index.
package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/utcpkb/kbforge/internal/embed"
	"github.com/utcpkb/kbforge/internal/kb"
	"github.com/utcpkb/kbforge/internal/store"
	"github.com/utcpkb/kbforge/internal/vector"
)

// DefaultSearchLimit applies when a caller passes limit <= 0.
const DefaultSearchLimit = 50

// Service answers read queries over a loaded store.
type Service struct {
	store *store.Store

	// Optional semantic search assets, set via EnableSemantic.
	conceptIndex *vector.Index
	embedder     embed.Embedder
}

// NewService creates a Service over a loaded store.
func NewService(s *store.Store) *Service {
	return &Service{store: s}
}

// EnableSemantic attaches the concept vector index and an embedder so
// SemanticSearch can resolve queries. Without it SemanticSearch errors.
func (s *Service) EnableSemantic(idx *vector.Index, embedder embed.Embedder) {
	s.conceptIndex = idx
	s.embedder = embedder
}

// Concepts returns the full concept collection.
func (s *Service) Concepts() []kb.Concept { return s.store.Concepts() }

// Relationships returns the full relationship collection.
func (s *Service) Relationships() []kb.Relationship { return s.store.Relationships() }

// Repositories returns the repository extraction records.
func (s *Service) Repositories() []kb.Repository { return s.store.Repositories() }

// Wisdom returns one wisdom collection.
func (s *Service) Wisdom(category kb.WisdomCategory) []kb.WisdomItem {
	return s.store.Wisdom(category)
}

// ConceptByID returns the concept at position id in collection order.
func (s *Service) ConceptByID(id int) (kb.Concept, error) {
	concepts := s.store.Concepts()
	if id < 0 || id >= len(concepts) {
		return kb.Concept{}, fmt.Errorf("concept %d not found", id)
	}
	return concepts[id], nil
}

// SearchResults groups the per-collection hits of one search.
type SearchResults struct {
	Concepts      []kb.Concept      `json:"concepts"`
	Relationships []kb.Relationship `json:"relationships"`
	Principles    []kb.WisdomItem   `json:"principles"`
	Patterns      []kb.WisdomItem   `json:"patterns"`
}

// Search performs a case-insensitive substring match across the concept,
// relationship, principle, and pattern collections. Result order is
// collection order; each list truncates at limit.
func (s *Service) Search(query string, limit int) SearchResults {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	q := strings.ToLower(query)

	results := SearchResults{
		Concepts:      []kb.Concept{},
		Relationships: []kb.Relationship{},
		Principles:    []kb.WisdomItem{},
		Patterns:      []kb.WisdomItem{},
	}

	for _, c := range s.store.Concepts() {
		if len(results.Concepts) >= limit {
			break
		}
		if containsFold(q, c.Name, c.Description, c.Context) {
			results.Concepts = append(results.Concepts, c)
		}
	}

	for _, r := range s.store.Relationships() {
		if len(results.Relationships) >= limit {
			break
		}
		if containsFold(q, r.Source, r.Target, r.Context) {
			results.Relationships = append(results.Relationships, r)
		}
	}

	for _, item := range s.store.Wisdom(kb.WisdomPrinciples) {
		if len(results.Principles) >= limit {
			break
		}
		if containsFold(q, item.Name, item.Description) {
			results.Principles = append(results.Principles, item)
		}
	}

	for _, item := range s.store.Wisdom(kb.WisdomPatterns) {
		if len(results.Patterns) >= limit {
			break
		}
		if containsFold(q, item.Name, item.Description) {
			results.Patterns = append(results.Patterns, item)
		}
	}

	return results
}

// FilterOptions selects records by exact field match. Zero values match
// everything.
type FilterOptions struct {
	SourceRepo string
	Type       string
}

// FilterConcepts returns the concepts matching opts, in collection order.
func (s *Service) FilterConcepts(opts FilterOptions) []kb.Concept {
	var out []kb.Concept
	for _, c := range s.store.Concepts() {
		if opts.SourceRepo != "" && c.SourceRepo != opts.SourceRepo {
			continue
		}
		if opts.Type != "" && string(c.Type) != opts.Type {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterRelationships returns the relationships matching opts.
func (s *Service) FilterRelationships(opts FilterOptions) []kb.Relationship {
	var out []kb.Relationship
	for _, r := range s.store.Relationships() {
		if opts.SourceRepo != "" && r.SourceRepo != opts.SourceRepo {
			continue
		}
		if opts.Type != "" && string(r.Type) != opts.Type {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Statistics summarizes the knowledge base for external callers.
type Statistics struct {
	TotalConcepts      int       `json:"total_concepts"`
	TotalRelationships int       `json:"total_relationships"`
	TotalRepositories  int       `json:"total_repositories"`
	TotalPrinciples    int       `json:"total_principles"`
	TotalPatterns      int       `json:"total_patterns"`
	TotalBestPractices int       `json:"total_best_practices"`
	TotalInsights      int       `json:"total_insights"`
	Repositories       []string  `json:"repositories"`
	ConceptTypes       []string  `json:"concept_types"`
	RelationshipTypes  []string  `json:"relationship_types"`
	GeneratedAt        time.Time `json:"timestamp"`
}

// Statistics computes collection counts plus the distinct repositories and
// types seen across the store.
func (s *Service) Statistics() Statistics {
	stats := Statistics{
		TotalConcepts:      len(s.store.Concepts()),
		TotalRelationships: len(s.store.Relationships()),
		TotalRepositories:  len(s.store.Repositories()),
		TotalPrinciples:    len(s.store.Wisdom(kb.WisdomPrinciples)),
		TotalPatterns:      len(s.store.Wisdom(kb.WisdomPatterns)),
		TotalBestPractices: len(s.store.Wisdom(kb.WisdomBestPractices)),
		TotalInsights:      len(s.store.Wisdom(kb.WisdomInsights)),
		GeneratedAt:        time.Now(),
	}

	stats.Repositories = distinct(s.store.Concepts(), func(c kb.Concept) string { return c.SourceRepo })
	stats.ConceptTypes = distinct(s.store.Concepts(), func(c kb.Concept) string { return string(c.Type) })
	stats.RelationshipTypes = distinct(s.store.Relationships(), func(r kb.Relationship) string { return string(r.Type) })
	return stats
}

// SemanticHit pairs a concept with its cosine similarity to the query.
type SemanticHit struct {
	Concept    kb.Concept `json:"concept"`
	Similarity float32    `json:"similarity"`
}

// SemanticSearch embeds the query and returns the k most similar concepts
// from the vector index. Requires EnableSemantic; the embedder must be the
// same backend that produced the index (fallback vectors are only
// comparable within the collection they were fit on).
func (s *Service) SemanticSearch(ctx context.Context, queryText string, k int) ([]SemanticHit, error) {
	if s.conceptIndex == nil || s.embedder == nil {
		return nil, fmt.Errorf("semantic search is not enabled: no vector index loaded")
	}

	queryVec, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits, err := s.conceptIndex.Search(queryVec, k)
	if err != nil {
		return nil, err
	}

	concepts := s.store.Concepts()
	out := make([]SemanticHit, 0, len(hits))
	for _, hit := range hits {
		if hit.Position < 0 || hit.Position >= len(concepts) {
			continue
		}
		out = append(out, SemanticHit{
			Concept:    concepts[hit.Position],
			Similarity: hit.Similarity,
		})
	}
	return out, nil
}

func containsFold(lowerQuery string, fields ...string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), lowerQuery) {
			return true
		}
	}
	return false
}

func distinct[T any](items []T, key func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		k := key(item)
		if k != "" && !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}

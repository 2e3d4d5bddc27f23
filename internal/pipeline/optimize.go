package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/utcpkb/kbforge/internal/embed"
	"github.com/utcpkb/kbforge/internal/index"
	"github.com/utcpkb/kbforge/internal/kb"
	"github.com/utcpkb/kbforge/internal/store"
	"github.com/utcpkb/kbforge/internal/telemetry"
	"github.com/utcpkb/kbforge/internal/vector"
	"github.com/utcpkb/kbforge/internal/wisdom"
)

// Vector index base names under the vectors directory.
const (
	conceptVectors      = "concepts"
	relationshipVectors = "relationships"
	repositoryVectors   = "repositories"
	wisdomVectors       = "wisdom"
)

// OptimizeResult summarizes one optimization stage run.
type OptimizeResult struct {
	ConceptTokens       int
	RelationshipTokens  int
	ConceptVectors      int
	RelationshipVectors int
	RepositoryVectors   int
	WisdomVectors       int
	EmbeddingModel      string
	Wisdom              map[kb.WisdomCategory]int
}

// Optimize derives the retrieval layers from the stored knowledge graph:
// lexical inverted indexes, embedding vector indexes, and the four wisdom
// collections. Everything is rebuilt from scratch.
func (p *Pipeline) Optimize(ctx context.Context) (*OptimizeResult, error) {
	release, err := p.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	s, err := p.openStore()
	if err != nil {
		return nil, err
	}

	result := &OptimizeResult{Wisdom: make(map[kb.WisdomCategory]int)}

	if err := p.buildLexicalIndexes(s, result); err != nil {
		return nil, err
	}
	// Wisdom is inferred before the vector pass so wisdom items get
	// embedded alongside the other collections.
	if err := p.inferWisdom(s, result); err != nil {
		return nil, err
	}
	if err := p.buildVectorIndexes(ctx, s, result); err != nil {
		return nil, err
	}

	p.logger.Info("optimization complete",
		slog.String("run_id", p.runID),
		slog.Int("concept_tokens", result.ConceptTokens),
		slog.Int("relationship_tokens", result.RelationshipTokens),
		slog.Int("concept_vectors", result.ConceptVectors),
		slog.String("embedding_model", result.EmbeddingModel))

	p.recordRun(telemetry.RunRecord{
		Stage:         "optimize",
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Concepts:      len(s.Concepts()),
		Relationships: len(s.Relationships()),
		Succeeded:     true,
		Detail:        result.EmbeddingModel,
	})
	return result, nil
}

func (p *Pipeline) buildLexicalIndexes(s *store.Store, result *OptimizeResult) error {
	dir := filepath.Join(p.cfg.Paths.KBDir, indexesDir)

	conceptIndex := index.BuildConceptIndex(s.Concepts())
	if err := conceptIndex.Save(filepath.Join(dir, "concept_index.json")); err != nil {
		return err
	}
	relationshipIndex := index.BuildRelationshipIndex(s.Relationships())
	if err := relationshipIndex.Save(filepath.Join(dir, "relationship_index.json")); err != nil {
		return err
	}

	result.ConceptTokens = len(conceptIndex)
	result.RelationshipTokens = len(relationshipIndex)
	return nil
}

// buildVectorIndexes embeds both collections with one backend chosen for
// the whole run. The term-frequency fallback is fit per collection, so its
// vectors are only comparable within the collection they were built from.
func (p *Pipeline) buildVectorIndexes(ctx context.Context, s *store.Store, result *OptimizeResult) error {
	embedder, err := embed.NewEmbedder(ctx, embed.Options{
		Provider:    p.cfg.Embeddings.Provider,
		Model:       p.cfg.Embeddings.Model,
		OllamaHost:  p.cfg.Embeddings.OllamaHost,
		BatchSize:   p.cfg.Embeddings.BatchSize,
		MaxFeatures: p.cfg.Embeddings.MaxFeatures,
	})
	if err != nil {
		return err
	}
	defer func() { _ = embedder.Close() }()

	// A fitting backend refits per collection, which would poison a
	// shared cache. Only remote backends get the cache wrapper.
	if _, fits := embedder.(embed.Fitter); !fits {
		cached, err := embed.NewCachedEmbedder(embedder, embed.DefaultCacheSize)
		if err != nil {
			return err
		}
		embedder = cached
	}
	result.EmbeddingModel = embedder.ModelName()

	conceptTexts := make([]string, len(s.Concepts()))
	conceptMeta := make(vector.Metadata, len(s.Concepts()))
	for i, c := range s.Concepts() {
		conceptTexts[i] = conceptText(c)
		conceptMeta[i] = map[string]any{
			"name":        c.Name,
			"type":        string(c.Type),
			"source_repo": c.SourceRepo,
			"source_file": c.SourceFile,
		}
	}
	n, err := p.embedCollection(ctx, embedder, conceptVectors, conceptTexts, conceptMeta)
	if err != nil {
		return err
	}
	result.ConceptVectors = n

	relTexts := make([]string, len(s.Relationships()))
	relMeta := make(vector.Metadata, len(s.Relationships()))
	for i, r := range s.Relationships() {
		relTexts[i] = relationshipText(r)
		relMeta[i] = map[string]any{
			"source":      r.Source,
			"target":      r.Target,
			"type":        string(r.Type),
			"source_repo": r.SourceRepo,
		}
	}
	n, err = p.embedCollection(ctx, embedder, relationshipVectors, relTexts, relMeta)
	if err != nil {
		return err
	}
	result.RelationshipVectors = n

	repoTexts := make([]string, len(s.Repositories()))
	repoMeta := make(vector.Metadata, len(s.Repositories()))
	for i, r := range s.Repositories() {
		repoTexts[i] = repositoryText(r)
		repoMeta[i] = map[string]any{
			"name":   r.Name,
			"run_id": r.RunID,
		}
	}
	n, err = p.embedCollection(ctx, embedder, repositoryVectors, repoTexts, repoMeta)
	if err != nil {
		return err
	}
	result.RepositoryVectors = n

	// Wisdom items from all four categories embed as one collection, in
	// canonical category order so positions stay stable.
	var wisdomTexts []string
	var wisdomMeta vector.Metadata
	for _, category := range kb.WisdomCategories {
		for _, item := range s.Wisdom(category) {
			wisdomTexts = append(wisdomTexts, wisdomText(item))
			wisdomMeta = append(wisdomMeta, map[string]any{
				"name":     item.Name,
				"category": string(category),
			})
		}
	}
	n, err = p.embedCollection(ctx, embedder, wisdomVectors, wisdomTexts, wisdomMeta)
	if err != nil {
		return err
	}
	result.WisdomVectors = n
	return nil
}

// Embedding text per entity kind. The repository name is doubled so it
// outweighs the boilerplate tail in term-frequency vectors.
func conceptText(c kb.Concept) string {
	return c.Name + " " + c.Description + " " + c.Context
}

func relationshipText(r kb.Relationship) string {
	return r.Source + " " + string(r.Type) + " " + r.Target + " " + r.Context
}

func repositoryText(r kb.Repository) string {
	return r.Name + " " + r.Name + " implementation details"
}

func wisdomText(item kb.WisdomItem) string {
	return item.Name + " " + item.Description + " " + item.Context
}

// embedCollection embeds one collection's texts and persists its vector
// index. Empty collections produce no index files.
func (p *Pipeline) embedCollection(ctx context.Context, embedder embed.Embedder, name string, texts []string, meta vector.Metadata) (int, error) {
	if len(texts) == 0 {
		return 0, nil
	}
	if fitter, ok := embedder.(embed.Fitter); ok {
		fitter.Fit(texts)
	}

	vecs, err := embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("failed to embed %s: %w", name, err)
	}

	idx := vector.NewIndex(embedder.Dimensions())
	if err := idx.Add(vecs); err != nil {
		return 0, err
	}

	dir := filepath.Join(p.cfg.Paths.KBDir, vectorsDir)
	vecPath := filepath.Join(dir, name+".vec")
	metaPath := filepath.Join(dir, name+"_metadata.json")
	if err := idx.Save(vecPath, metaPath, meta); err != nil {
		return 0, err
	}
	return len(vecs), nil
}

func (p *Pipeline) inferWisdom(s *store.Store, result *OptimizeResult) error {
	engine := wisdom.NewEngine(wisdom.DefaultRules())
	inferred := engine.Infer(s.Concepts(), s.Relationships())
	for category, items := range inferred {
		s.ReplaceWisdom(category, items)
		result.Wisdom[category] = len(items)
	}
	return s.Save()
}

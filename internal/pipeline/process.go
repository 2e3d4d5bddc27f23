package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/utcpkb/kbforge/internal/graph"
	"github.com/utcpkb/kbforge/internal/kb"
	"github.com/utcpkb/kbforge/internal/telemetry"
)

// ProcessResult summarizes one processing stage run.
type ProcessResult struct {
	Repositories  int
	Concepts      int
	Relationships int
}

// Process rebuilds the knowledge graph from the persisted raw extraction
// bundles. The concept and relationship collections are fully replaced;
// repository records accumulate across runs as extraction history.
func (p *Pipeline) Process(ctx context.Context) (*ProcessResult, error) {
	release, err := p.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	bundles, err := p.loadBundles()
	if err != nil {
		return nil, err
	}

	s, err := p.openStore()
	if err != nil {
		return nil, err
	}

	builder := graph.NewBuilder()
	var concepts []kb.Concept
	var relationships []kb.Relationship
	for _, bundle := range bundles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c, r := builder.Build(bundle)
		concepts = append(concepts, c...)
		relationships = append(relationships, r...)
	}

	repositories := mergeRepositories(s.Repositories(), bundles)
	s.ReplaceKnowledge(concepts, relationships, repositories)
	if err := s.Save(); err != nil {
		return nil, err
	}
	if err := s.SaveSummaries(); err != nil {
		return nil, err
	}

	result := &ProcessResult{
		Repositories:  len(bundles),
		Concepts:      len(concepts),
		Relationships: len(relationships),
	}
	p.logger.Info("knowledge graph rebuilt",
		slog.String("run_id", p.runID),
		slog.Int("repositories", result.Repositories),
		slog.Int("concepts", result.Concepts),
		slog.Int("relationships", result.Relationships))

	p.recordRun(telemetry.RunRecord{
		Stage:         "process",
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Concepts:      result.Concepts,
		Relationships: result.Relationships,
		Succeeded:     true,
	})
	return result, nil
}

// mergeRepositories appends the bundles' repository records to the
// existing history, dropping any prior record with the same name and run
// so reprocessing never duplicates.
func mergeRepositories(existing []kb.Repository, bundles []kb.RepoExtraction) []kb.Repository {
	incoming := make(map[string]bool, len(bundles))
	for _, b := range bundles {
		incoming[b.Repository.Name+"\x00"+b.Repository.RunID] = true
	}

	var merged []kb.Repository
	for _, r := range existing {
		if !incoming[r.Name+"\x00"+r.RunID] {
			merged = append(merged, r)
		}
	}
	for _, b := range bundles {
		merged = append(merged, b.Repository)
	}
	return merged
}

// Package pipeline orchestrates the batch stages: extract raw facts from
// upstream repositories, process them into the knowledge graph, and
// optimize the result into lexical and vector indexes plus wisdom.
// Dataflow is strictly forward; each run replaces the derived collections
// rather than merging into them.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/utcpkb/kbforge/internal/config"
	"github.com/utcpkb/kbforge/internal/store"
	"github.com/utcpkb/kbforge/internal/telemetry"
)

// Knowledge-base directory layout.
const (
	rawExtractionsDir = "raw-extractions"
	extractionFile    = "extraction.json"
	indexesDir        = "indexes"
	vectorsDir        = "vectors"
	lockFile          = "kbforge.lock"
	runsDB            = "runs.db"
)

// Pipeline runs the batch stages against one knowledge-base directory.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	runID  string
}

// New creates a Pipeline. Each Pipeline value carries one run identity;
// create a fresh one per run.
func New(cfg *config.Config, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		runID:  uuid.New().String(),
	}
}

// RunID returns this pipeline's run identifier.
func (p *Pipeline) RunID() string { return p.runID }

// KBDir returns the knowledge-base root directory.
func (p *Pipeline) KBDir() string { return p.cfg.Paths.KBDir }

// RunResult collects the per-stage results of one full pipeline run.
type RunResult struct {
	Extract  *ExtractResult
	Process  *ProcessResult
	Optimize *OptimizeResult
}

// Run executes extract, process, and optimize in order, stopping at the
// first failing stage. Per-file extraction errors do not stop the run;
// they are surfaced as counts on the extract result.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}
	var err error

	if result.Extract, err = p.Extract(ctx); err != nil {
		return nil, err
	}
	if result.Process, err = p.Process(ctx); err != nil {
		return nil, err
	}
	if result.Optimize, err = p.Optimize(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

// lock acquires the knowledge-base directory lock. Mutating stages hold it
// for their full duration so concurrent runs cannot interleave writes.
func (p *Pipeline) lock(ctx context.Context) (release func(), err error) {
	kbDir := p.cfg.Paths.KBDir
	if err := os.MkdirAll(kbDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create knowledge-base directory: %w", err)
	}

	fl := flock.New(filepath.Join(kbDir, lockFile))
	lockCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ok, err := fl.TryLockContext(lockCtx, 250*time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire knowledge-base lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("knowledge base is locked by another run: %s", fl.Path())
	}
	return func() { _ = fl.Unlock() }, nil
}

// openStore loads the persisted collections from the knowledge base.
func (p *Pipeline) openStore() (*store.Store, error) {
	s := store.New(p.cfg.Paths.KBDir)
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// recordRun appends a telemetry row for one completed stage. Telemetry is
// advisory: failures are logged and never fail the run.
func (p *Pipeline) recordRun(rec telemetry.RunRecord) {
	rec.RunID = p.runID
	ts, err := telemetry.Open(filepath.Join(p.cfg.Paths.KBDir, runsDB))
	if err != nil {
		p.logger.Warn("run history unavailable", slog.String("error", err.Error()))
		return
	}
	defer func() { _ = ts.Close() }()

	if err := ts.RecordRun(rec); err != nil {
		p.logger.Warn("failed to record run history", slog.String("error", err.Error()))
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utcpkb/kbforge/internal/extract"
	"github.com/utcpkb/kbforge/internal/kb"
	"github.com/utcpkb/kbforge/internal/scanner"
	"github.com/utcpkb/kbforge/internal/telemetry"
)

// unknownCommit marks repositories without a readable git HEAD.
const unknownCommit = "unknown"

// ExtractResult summarizes one extraction stage run.
type ExtractResult struct {
	RunID        string
	Repositories []string
	FilesScanned int
	Extractions  int
	Errors       int
}

// Extract scans every configured upstream repository, extracts per-file
// facts in parallel, and persists one raw extraction bundle per repository.
// A file that cannot be read becomes an error record and is excluded from
// downstream stages; the batch continues.
func (p *Pipeline) Extract(ctx context.Context) (*ExtractResult, error) {
	release, err := p.lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	started := time.Now()
	repos, err := p.resolveRepositories()
	if err != nil {
		return nil, err
	}
	p.logger.Info("extraction started",
		slog.String("run_id", p.runID),
		slog.Int("repositories", len(repos)))

	result := &ExtractResult{RunID: p.runID, Repositories: repos}
	for _, repo := range repos {
		bundle, scanned, err := p.extractRepo(ctx, repo)
		if err != nil {
			return nil, fmt.Errorf("extraction failed for %s: %w", repo, err)
		}
		if err := p.saveBundle(repo, bundle); err != nil {
			return nil, err
		}

		result.FilesScanned += scanned
		result.Extractions += len(bundle.Extractions)
		result.Errors += len(bundle.Errors)
		p.logger.Info("repository extracted",
			slog.String("repo", repo),
			slog.Int("files", scanned),
			slog.Int("extractions", len(bundle.Extractions)),
			slog.Int("errors", len(bundle.Errors)))
	}

	p.recordRun(telemetry.RunRecord{
		Stage:        "extract",
		StartedAt:    started,
		FinishedAt:   time.Now(),
		FilesScanned: result.FilesScanned,
		FilesSkipped: result.Errors,
		Extractions:  result.Extractions,
		Errors:       result.Errors,
		Succeeded:    true,
	})
	return result, nil
}

// resolveRepositories returns the configured repository names, or every
// subdirectory of the upstream directory when none are configured.
func (p *Pipeline) resolveRepositories() ([]string, error) {
	if len(p.cfg.Repositories) > 0 {
		return p.cfg.Repositories, nil
	}

	entries, err := os.ReadDir(p.cfg.Paths.UpstreamDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read upstream directory %s: %w", p.cfg.Paths.UpstreamDir, err)
	}
	var repos []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			repos = append(repos, e.Name())
		}
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("no repositories found under %s", p.cfg.Paths.UpstreamDir)
	}
	return repos, nil
}

// extractRepo runs the per-file extraction for one repository. Workers run
// concurrently but results keep scan order, so bundles are deterministic
// for a given tree.
func (p *Pipeline) extractRepo(ctx context.Context, repo string) (*kb.RepoExtraction, int, error) {
	repoDir := filepath.Join(p.cfg.Paths.UpstreamDir, repo)
	files, err := scanner.Scan(ctx, scanner.Options{
		RootDir:     repoDir,
		Extensions:  p.cfg.Extraction.SupportedExtensions,
		MaxFileSize: p.cfg.Extraction.MaxFileSize,
	})
	if err != nil {
		return nil, 0, err
	}

	workers := p.cfg.Extraction.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	extractor := extract.New()
	extractions := make([]*kb.Extraction, len(files))
	errRecords := make([]*kb.ExtractionError, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(f.AbsPath)
			if err != nil {
				errRecords[i] = &kb.ExtractionError{
					FilePath:  f.Path,
					Error:     err.Error(),
					Timestamp: time.Now(),
				}
				return nil
			}
			extraction := extractor.ExtractFile(f.Path, string(content))
			extractions[i] = &extraction
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	bundle := &kb.RepoExtraction{}
	for i := range files {
		if extractions[i] != nil {
			bundle.Extractions = append(bundle.Extractions, *extractions[i])
		}
		if errRecords[i] != nil {
			bundle.Errors = append(bundle.Errors, *errRecords[i])
		}
	}

	hash, committed := gitHead(ctx, repoDir)
	bundle.Repository = kb.Repository{
		Name:            repo,
		RunID:           p.runID,
		CommitHash:      hash,
		CommitTimestamp: committed,
		FileCount:       len(bundle.Extractions),
		ExtractedAt:     time.Now(),
	}
	return bundle, len(files), nil
}

// saveBundle persists one repository's extraction bundle.
func (p *Pipeline) saveBundle(repo string, bundle *kb.RepoExtraction) error {
	dir := filepath.Join(p.cfg.Paths.KBDir, rawExtractionsDir, repo)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}
	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal extraction bundle: %w", err)
	}
	path := filepath.Join(dir, extractionFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write extraction bundle: %w", err)
	}
	return nil
}

// loadBundles reads every persisted extraction bundle, sorted by
// repository name.
func (p *Pipeline) loadBundles() ([]kb.RepoExtraction, error) {
	root := filepath.Join(p.cfg.Paths.KBDir, rawExtractionsDir)
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("no raw extractions found; run extract first")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read extractions directory: %w", err)
	}

	var bundles []kb.RepoExtraction
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(root, e.Name(), extractionFile)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read extraction bundle %s: %w", path, err)
		}
		var bundle kb.RepoExtraction
		if err := json.Unmarshal(data, &bundle); err != nil {
			return nil, fmt.Errorf("failed to parse extraction bundle %s: %w", path, err)
		}
		bundles = append(bundles, bundle)
	}
	if len(bundles) == 0 {
		return nil, fmt.Errorf("no raw extractions found; run extract first")
	}
	return bundles, nil
}

// gitHead reads the repository's HEAD commit hash and timestamp. Missing
// or non-git directories report an unknown commit; extraction proceeds.
func gitHead(ctx context.Context, dir string) (string, time.Time) {
	out, err := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "HEAD").Output()
	if err != nil {
		return unknownCommit, time.Time{}
	}
	hash := strings.TrimSpace(string(out))

	out, err = exec.CommandContext(ctx, "git", "-C", dir, "log", "-1", "--format=%cI").Output()
	if err != nil {
		return hash, time.Time{}
	}
	committed, err := time.Parse(time.RFC3339, strings.TrimSpace(string(out)))
	if err != nil {
		return hash, time.Time{}
	}
	return hash, committed
}

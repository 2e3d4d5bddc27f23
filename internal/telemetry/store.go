// Package telemetry records pipeline run history in a local SQLite
// database so operators can review past runs without scraping logs.
package telemetry

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// RunRecord is one pipeline run row.
type RunRecord struct {
	RunID         string
	Stage         string
	StartedAt     time.Time
	FinishedAt    time.Time
	FilesScanned  int
	FilesSkipped  int
	Extractions   int
	Errors        int
	Concepts      int
	Relationships int
	Succeeded     bool
	Detail        string
}

// Store is a SQLite-backed run history store.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the run history database and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open telemetry database: %w", err)
	}
	// One writer at a time; the pipeline already serializes runs.
	db.SetMaxOpenConns(1)

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		stage TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL,
		files_scanned INTEGER NOT NULL DEFAULT 0,
		files_skipped INTEGER NOT NULL DEFAULT 0,
		extractions INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0,
		concepts INTEGER NOT NULL DEFAULT 0,
		relationships INTEGER NOT NULL DEFAULT 0,
		succeeded INTEGER NOT NULL DEFAULT 1,
		detail TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_pipeline_runs_run_id ON pipeline_runs(run_id);
	CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs(started_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create telemetry schema: %w", err)
	}
	return nil
}

// RecordRun appends one run row.
func (s *Store) RecordRun(rec RunRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO pipeline_runs (
			run_id, stage, started_at, finished_at,
			files_scanned, files_skipped, extractions, errors,
			concepts, relationships, succeeded, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.RunID, rec.Stage, rec.StartedAt.UTC(), rec.FinishedAt.UTC(),
		rec.FilesScanned, rec.FilesSkipped, rec.Extractions, rec.Errors,
		rec.Concepts, rec.Relationships, boolToInt(rec.Succeeded), rec.Detail,
	)
	if err != nil {
		return fmt.Errorf("insert run record: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent run rows, newest first.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT run_id, stage, started_at, finished_at,
		       files_scanned, files_skipped, extractions, errors,
		       concepts, relationships, succeeded, detail
		FROM pipeline_runs
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var succeeded int
		if err := rows.Scan(
			&rec.RunID, &rec.Stage, &rec.StartedAt, &rec.FinishedAt,
			&rec.FilesScanned, &rec.FilesSkipped, &rec.Extractions, &rec.Errors,
			&rec.Concepts, &rec.Relationships, &succeeded, &rec.Detail,
		); err != nil {
			return nil, fmt.Errorf("scan run record: %w", err)
		}
		rec.Succeeded = succeeded != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

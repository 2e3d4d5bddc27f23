package telemetry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_RecordAndListRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	started := time.Now().Add(-time.Minute)
	require.NoError(t, s.RecordRun(RunRecord{
		RunID:        "run-1",
		Stage:        "extract",
		StartedAt:    started,
		FinishedAt:   time.Now(),
		FilesScanned: 42,
		FilesSkipped: 2,
		Extractions:  40,
		Errors:       2,
		Succeeded:    true,
	}))
	require.NoError(t, s.RecordRun(RunRecord{
		RunID:         "run-1",
		Stage:         "process",
		StartedAt:     time.Now(),
		FinishedAt:    time.Now(),
		Concepts:      100,
		Relationships: 250,
		Succeeded:     true,
	}))

	runs, err := s.RecentRuns(10)
	require.NoError(t, err)

	// Newest first.
	require.Len(t, runs, 2)
	assert.Equal(t, "process", runs[0].Stage)
	assert.Equal(t, 100, runs[0].Concepts)
	assert.Equal(t, "extract", runs[1].Stage)
	assert.Equal(t, 42, runs[1].FilesScanned)
	assert.True(t, runs[1].Succeeded)
}

func TestStore_RecentRunsLimit(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordRun(RunRecord{
			RunID: "run", Stage: "extract",
			StartedAt: time.Now(), FinishedAt: time.Now(), Succeeded: true,
		}))
	}

	runs, err := s.RecentRuns(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestStore_ReopenKeepsHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")

	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.RecordRun(RunRecord{
		RunID: "run-1", Stage: "optimize",
		StartedAt: time.Now(), FinishedAt: time.Now(), Succeeded: true,
	}))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	runs, err := reopened.RecentRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "optimize", runs[0].Stage)
}

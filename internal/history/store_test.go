package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRecord(state string, started time.Time) RunRecord {
	return RunRecord{
		ID:             uuid.NewString(),
		Root:           "/proj",
		StartedAt:      started,
		FinishedAt:     started.Add(3 * time.Second),
		FilesCollected: 42,
		FilesDigested:  10,
		FilesSkipped:   1,
		State:          state,
		ReportBytes:    2048,
	}
}

func TestRecordAndRecentRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	first := testRecord("done", base)
	second := testRecord("done", base.Add(time.Minute))

	require.NoError(t, store.RecordRun(ctx, first))
	require.NoError(t, store.RecordRun(ctx, second))

	runs, err := store.RecentRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Most recent first
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	got := runs[1]
	assert.Equal(t, "/proj", got.Root)
	assert.Equal(t, 42, got.FilesCollected)
	assert.Equal(t, 10, got.FilesDigested)
	assert.Equal(t, 1, got.FilesSkipped)
	assert.Equal(t, "done", got.State)
	assert.Equal(t, 2048, got.ReportBytes)
	assert.True(t, got.StartedAt.Equal(base))
	assert.Equal(t, 3*time.Second, got.Duration())
}

func TestRecordFailedRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("failed", time.Now())
	rec.FailureStage = "invoking"
	rec.ErrorMessage = "analysis command failed: exit status 1"
	rec.ReportBytes = 0

	require.NoError(t, store.RecordRun(ctx, rec))

	runs, err := store.RecentRuns(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].State)
	assert.Equal(t, "invoking", runs[0].FailureStage)
	assert.Contains(t, runs[0].ErrorMessage, "exit status 1")
}

func TestRecentRunsLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		require.NoError(t, store.RecordRun(ctx, testRecord("done", base.Add(time.Duration(i)*time.Second))))
	}

	runs, err := store.RecentRuns(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRecentRunsEmpty(t *testing.T) {
	store := newTestStore(t)

	runs, err := store.RecentRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("done", time.Now())
	require.NoError(t, store.RecordRun(ctx, rec))
	assert.Error(t, store.RecordRun(ctx, rec))
}

func TestStoreCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.RecordRun(context.Background(), testRecord("done", time.Now())))
}

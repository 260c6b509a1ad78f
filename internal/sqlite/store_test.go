// File path: internal/sqlite/store_test.go
package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicodishanthj/spinyleaf/internal/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{Path: filepath.Join(t.TempDir(), "nested", "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	run, err := store.StartRun(ctx, "echo", "skip")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, StatusRunning, run.Status)

	sections := []SectionRecord{
		{Dimension: "wellbeing", Status: SectionAssembled},
		{Dimension: "comfort", Status: SectionAssembled, IssueCount: 2, WorstFactors: "daylight"},
		{Dimension: "delight", Status: SectionSkipped, Message: "rate limited"},
	}
	require.NoError(t, store.FinishRun(ctx, run.ID, StatusSucceeded, "/tmp/out.docx", "", sections))

	detail, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, detail.Status)
	assert.Equal(t, "/tmp/out.docx", detail.OutputPath)
	assert.Equal(t, "echo", detail.Provider)
	require.NotNil(t, detail.FinishedAt)
	assert.WithinDuration(t, time.Now(), *detail.FinishedAt, time.Minute)
	require.Len(t, detail.Sections, 3)
	assert.Equal(t, 1, detail.Sections[0].Position)
	assert.Equal(t, "comfort", detail.Sections[1].Dimension)
	assert.Equal(t, 2, detail.Sections[1].IssueCount)
	assert.Equal(t, "daylight", detail.Sections[1].WorstFactors)
	assert.Equal(t, SectionSkipped, detail.Sections[2].Status)
	assert.Equal(t, "rate limited", detail.Sections[2].Message)
}

func TestFinishRunReplacesSections(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	run, err := store.StartRun(ctx, "openai", "abort")
	require.NoError(t, err)
	require.NoError(t, store.FinishRun(ctx, run.ID, StatusFailed, "", "boom", []SectionRecord{{Dimension: "wellbeing", Status: SectionAssembled}}))
	require.NoError(t, store.FinishRun(ctx, run.ID, StatusFailed, "", "boom", nil))

	detail, err := store.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "boom", detail.Error)
	assert.Empty(t, detail.Sections)
}

func TestListRunsNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	first, err := store.StartRun(ctx, "echo", "abort")
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := store.StartRun(ctx, "echo", "abort")
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)
	assert.Nil(t, runs[0].FinishedAt)

	limited, err := store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestUnknownRun(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	_, err := store.GetRun(ctx, "missing")
	assert.True(t, errors.Is(err, ErrRunNotFound))
	err = store.FinishRun(ctx, "missing", StatusSucceeded, "", "", nil)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	store, err := Open(Config{Path: path})
	require.NoError(t, err)
	run, err := store.StartRun(context.Background(), "echo", "abort")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(Config{Path: path})
	require.NoError(t, err)
	defer reopened.Close()
	detail, err := reopened.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, detail.Status)
}

func TestOpenPathWithURLCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cat?log#1%2F", "catalog.db")
	store, err := Open(Config{Path: path})
	require.NoError(t, err)
	run, err := store.StartRun(context.Background(), "echo", "skip")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.FileExists(t, path)
	reopened, err := Open(Config{Path: path})
	require.NoError(t, err)
	defer reopened.Close()
	_, err = reopened.GetRun(context.Background(), run.ID)
	require.NoError(t, err)
}

func TestConfigFromEnvOverride(t *testing.T) {
	t.Setenv("SQLITE_PATH", "/var/lib/catalog.db")
	t.Setenv("SQLITE_BUSY_TIMEOUT", "2s")
	cfg, err := ConfigFrom(config.CatalogConfig{Path: "data/catalog.db", MaxOpenConns: 2})
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/catalog.db", cfg.Path)
	assert.Equal(t, 2*time.Second, cfg.BusyTimeout)
	assert.Equal(t, 2, cfg.MaxOpenConns)
	assert.Equal(t, 2, cfg.MaxIdleConns)

	t.Setenv("SQLITE_MAX_OPEN_CONNS", "many")
	_, err = ConfigFrom(config.CatalogConfig{})
	assert.Error(t, err)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)
}

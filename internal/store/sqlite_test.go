package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/capital-cli/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	st, err := NewSQLite(":memory:")
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	assert.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestRunLifecycleComplete(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run, err := st.CreateRun(ctx, "budget.csv", "abc123")
	assert.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	metrics := model.RunMetrics{Projects: 2, TotalActuals: 1060, NetReallocation: 510}
	assert.NoError(t, st.CompleteRun(ctx, run.ID, metrics))

	got, err := st.GetRun(ctx, run.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	assert.Equal(t, metrics, got.Metrics)
	assert.Equal(t, "budget.csv", got.Source)
	assert.Equal(t, "abc123", got.Fingerprint)
	assert.Empty(t, got.Error)
}

func TestRunLifecycleFailed(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	run, err := st.CreateRun(ctx, "bad.csv", "def456")
	assert.NoError(t, err)
	assert.NoError(t, st.FailRun(ctx, run.ID, "upload has no header row"))

	got, err := st.GetRun(ctx, run.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	assert.Equal(t, "upload has no header row", got.Error)
}

func TestRunUpdatesRequireExistingRun(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	assert.Error(t, st.CompleteRun(ctx, "missing", model.RunMetrics{}))
	assert.Error(t, st.FailRun(ctx, "missing", "boom"))
	_, err := st.GetRun(ctx, "missing")
	assert.Error(t, err)
}

func TestListRunsFilters(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	a, err := st.CreateRun(ctx, "a.csv", "fp-a")
	assert.NoError(t, err)
	_, err = st.CreateRun(ctx, "b.csv", "fp-b")
	assert.NoError(t, err)
	assert.NoError(t, st.CompleteRun(ctx, a.ID, model.RunMetrics{Projects: 1}))

	all, err := st.ListRuns(ctx, RunFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	assert.NoError(t, err)
	assert.Len(t, complete, 1)
	assert.Equal(t, a.ID, complete[0].ID)

	bySource, err := st.ListRuns(ctx, RunFilter{Source: "b.csv"})
	assert.NoError(t, err)
	assert.Len(t, bySource, 1)

	limited, err := st.ListRuns(ctx, RunFilter{Limit: 1})
	assert.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestResultCache(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	_, ok, err := st.GetCachedResult(ctx, "fp-1")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, st.SetCachedResult(ctx, "fp-1", []byte(`{"v":1}`)))
	payload, ok, err := st.GetCachedResult(ctx, "fp-1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"v":1}`), payload)

	// Re-caching the same fingerprint replaces the payload.
	assert.NoError(t, st.SetCachedResult(ctx, "fp-1", []byte(`{"v":2}`)))
	payload, ok, err = st.GetCachedResult(ctx, "fp-1")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte(`{"v":2}`), payload)
}

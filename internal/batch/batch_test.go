package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/git"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/metrics"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/testutil"
)

func newRepos(t *testing.T, n int) []string {
	t.Helper()
	paths := make([]string, n)
	for i := range paths {
		repo := testutil.NewTestRepo(t)
		repo.CommitFile("a.txt", "a", "first")
		paths[i] = repo.Path()
	}
	return paths
}

func TestRun_ExcludesFailuresAndKeepsOrder(t *testing.T) {
	repos := newRepos(t, 3)
	notRepo := t.TempDir()
	paths := []string{repos[0], notRepo, repos[1], repos[2]}

	core, logs := observer.New(zapcore.DebugLevel)
	e := New(WithLogger(zap.New(core)), WithConcurrency(2))

	got := e.Run(context.Background(), "status", paths, func(_ context.Context, r *git.Repository) error {
		if r.Path() == repos[1] {
			return errors.New("boom")
		}
		_, err := r.Status()
		return err
	})
	require.Equal(t, []string{repos[0], repos[2]}, got)

	failures := logs.FilterMessage("repository operation failed").All()
	require.Len(t, failures, 2)
	failedPaths := []string{}
	for _, entry := range failures {
		failedPaths = append(failedPaths, entry.ContextMap()["path"].(string))
		require.Equal(t, "status", entry.ContextMap()["operation"])
		require.NotEmpty(t, entry.ContextMap()["run_id"])
	}
	require.ElementsMatch(t, []string{notRepo, repos[1]}, failedPaths)

	summary := logs.FilterMessage("batch finished").All()
	require.Len(t, summary, 1)
	require.Equal(t, int64(2), summary[0].ContextMap()["succeeded"])
	require.Equal(t, int64(2), summary[0].ContextMap()["failed"])
}

func TestRun_Empty(t *testing.T) {
	got := New().Run(context.Background(), "push", nil, func(context.Context, *git.Repository) error {
		t.Fatal("op must not run")
		return nil
	})
	require.Empty(t, got)
}

func TestRun_RespectsConcurrency(t *testing.T) {
	paths := newRepos(t, 6)

	var active, peak atomic.Int32
	got := New(WithConcurrency(2)).Run(context.Background(), "slow", paths, func(context.Context, *git.Repository) error {
		n := active.Add(1)
		defer active.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return nil
	})

	require.Equal(t, paths, got)
	require.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRun_CancelledContext(t *testing.T) {
	paths := newRepos(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	got := New().Run(ctx, "fetch", paths, func(context.Context, *git.Repository) error {
		calls.Add(1)
		return nil
	})
	require.Empty(t, got)
	require.Zero(t, calls.Load())
}

func TestCollect(t *testing.T) {
	repos := newRepos(t, 2)
	paths := []string{repos[1], t.TempDir(), repos[0]}

	infos := Collect(context.Background(), New(), "info", paths, func(_ context.Context, r *git.Repository) (git.RepositoryInfo, error) {
		return r.Info()
	})
	require.Len(t, infos, 2)
	require.Equal(t, repos[1], infos[0].Path)
	require.Equal(t, repos[0], infos[1].Path)
}

func TestRun_RecordsMetrics(t *testing.T) {
	repos := newRepos(t, 2)
	rec := metrics.NewRecorder()

	New(WithMetrics(rec)).Run(context.Background(), "commit", append(repos, t.TempDir()),
		func(context.Context, *git.Repository) error { return nil })

	n, err := promtest.GatherAndCount(rec.Registry(), "gitfleet_repository_operations_total")
	require.NoError(t, err)
	require.Equal(t, 2, n, "expected success and failure series")
}

func TestUnique(t *testing.T) {
	require.Equal(t, []string{"/a", "/b", "a"}, Unique([]string{"/a", "/b", "/a", "a", "/b"}))
	require.Empty(t, Unique(nil))
}

func TestNew_Defaults(t *testing.T) {
	require.Positive(t, New().Concurrency())
	require.Equal(t, 3, New(WithConcurrency(3)).Concurrency())
	require.Equal(t, New().Concurrency(), New(WithConcurrency(0)).Concurrency())
}

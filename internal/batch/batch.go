// Package batch applies one repository operation to many paths in
// parallel.
//
// Every path gets its own repository handle. A failing path is logged and
// left out of the result; a batch as a whole never fails, so callers learn
// which paths failed by comparing input and output.
package batch

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/git"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/metrics"
)

// Op mutates or inspects one open repository.
type Op func(ctx context.Context, r *git.Repository) error

// Executor runs operations across repositories.
type Executor struct {
	logger      *zap.Logger
	concurrency int
	metrics     *metrics.Recorder
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger used for per-path failures and batch summaries.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithConcurrency bounds how many repositories are processed at once.
func WithConcurrency(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMetrics records per-path and per-batch outcomes.
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Executor) {
		e.metrics = r
	}
}

// New creates an Executor bounded to runtime.NumCPU() repositories at once.
func New(opts ...Option) *Executor {
	e := &Executor{
		logger:      zap.NewNop(),
		concurrency: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Concurrency returns the effective parallelism bound.
func (e *Executor) Concurrency() int {
	return e.concurrency
}

// Run applies op to every path and returns the paths it succeeded on, in
// input order.
func (e *Executor) Run(ctx context.Context, name string, paths []string, op Op) []string {
	outcomes := execute(ctx, e, name, paths, func(ctx context.Context, r *git.Repository) (struct{}, error) {
		return struct{}{}, op(ctx, r)
	})
	return lo.FilterMap(outcomes, func(o outcome[struct{}], i int) (string, bool) {
		return paths[i], o.ok
	})
}

// Collect applies fn to every path and returns the values of the calls that
// succeeded, in input order.
func Collect[T any](ctx context.Context, e *Executor, name string, paths []string,
	fn func(context.Context, *git.Repository) (T, error),
) []T {
	outcomes := execute(ctx, e, name, paths, fn)
	return lo.FilterMap(outcomes, func(o outcome[T], _ int) (T, bool) {
		return o.value, o.ok
	})
}

// Unique drops repeated paths, keeping the first occurrence. Paths are
// compared as plain strings.
func Unique(paths []string) []string {
	return lo.Uniq(paths)
}

type outcome[T any] struct {
	value T
	ok    bool
}

func execute[T any](ctx context.Context, e *Executor, name string, paths []string,
	fn func(context.Context, *git.Repository) (T, error),
) []outcome[T] {
	log := e.logger.With(
		zap.String("operation", name),
		zap.String("run_id", uuid.NewString()))
	log.Debug("starting batch", zap.Int("repositories", len(paths)))

	// Each goroutine writes only its own index.
	outcomes := make([]outcome[T], len(paths))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			start := time.Now()
			value, err := apply(ctx, path, fn)
			e.metrics.Observe(name, time.Since(start), err)
			if err != nil {
				log.Error("repository operation failed",
					zap.String("path", path),
					zap.Error(err))
				return nil
			}
			outcomes[i] = outcome[T]{value: value, ok: true}
			return nil
		})
	}
	_ = g.Wait()

	succeeded := lo.CountBy(outcomes, func(o outcome[T]) bool { return o.ok })
	failed := len(paths) - succeeded
	e.metrics.ObserveBatch(name, succeeded, failed)
	log.Info("batch finished",
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed))

	return outcomes
}

func apply[T any](ctx context.Context, path string, fn func(context.Context, *git.Repository) (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		var zero T
		return zero, err
	}
	return git.Query(path, func(r *git.Repository) (T, error) {
		return fn(ctx, r)
	})
}

// Package gitfleet provides a public Go API for managing many local git
// repositories at once: discover them, summarize their state against their
// remotes and run commit, push, fetch, pull and discard across a set of
// paths.
//
// Basic usage:
//
//	client := gitfleet.New(gitfleet.Options{})
//	paths, err := client.Scan("/home/me/src")
//	infos := client.InfoMany(paths)
//	fetched := client.FetchMany(paths) // the paths that fetched cleanly
//
// Single-repository methods return the first error unchanged; compare it
// with errors.Is against the exported sentinels. The *Many methods never
// fail: they log each failing path and return only the paths (or values)
// that succeeded, in input order.
package gitfleet

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/batch"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/credential"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/git"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/metrics"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/pathsafe"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/scanner"
)

// Value types returned by the client.
type (
	RepositoryInfo = git.RepositoryInfo
	RepoStatus     = git.RepoStatus
	FileStatus     = git.FileStatus
	FileStatusKind = git.FileStatusKind
	CommitInfo     = git.CommitInfo
	BranchInfo     = git.BranchInfo

	// AuthResolver supplies transport credentials for a remote URL.
	AuthResolver = git.AuthResolver
)

// File status kinds.
const (
	StatusModified   = git.StatusModified
	StatusAdded      = git.StatusAdded
	StatusDeleted    = git.StatusDeleted
	StatusRenamed    = git.StatusRenamed
	StatusCopied     = git.StatusCopied
	StatusUntracked  = git.StatusUntracked
	StatusConflicted = git.StatusConflicted
)

// Errors returned by single-repository methods.
var (
	ErrRepoNotFound    = git.ErrRepoNotFound
	ErrInvalidRepo     = git.ErrInvalidRepo
	ErrOperationFailed = git.ErrOperationFailed
	ErrNoHead          = git.ErrNoHead
	ErrDetachedHead    = git.ErrDetachedHead
	ErrNoRemote        = git.ErrNoRemote
	ErrBranchNotFound  = git.ErrBranchNotFound
	ErrPath            = pathsafe.ErrPath
)

// Limits applied to commit messages and scans.
const (
	MaxMessageLength    = git.MaxMessageLength
	MaxMessageLines     = git.MaxMessageLines
	DefaultScanMaxDepth = scanner.DefaultMaxDepth
)

// Options configures a Client. The zero value is usable.
type Options struct {
	// Logger receives per-repository failures and batch summaries.
	// Defaults to a no-op logger.
	Logger *zap.Logger

	// Concurrency bounds parallel repository operations in the *Many
	// methods. Defaults to runtime.NumCPU().
	Concurrency int

	// MaxDepth limits how deep Scan descends. Zero means
	// DefaultScanMaxDepth; anything above 50 is capped.
	MaxDepth int

	// SkipDirs are extra directory names Scan never enters.
	SkipDirs []string

	// Sequential makes Scan walk on the calling goroutine.
	Sequential bool

	// CredentialHelper is the command queried for HTTP credentials, e.g.
	// "git credential fill" (the default).
	CredentialHelper string

	// Metrics enables Prometheus collectors, see Client.MetricsRegistry.
	Metrics bool

	// Auth overrides credential resolution entirely. Mostly for tests.
	Auth AuthResolver
}

// Client runs repository operations. It holds no per-repository state:
// every call opens, uses and closes its own handle.
type Client struct {
	logger     *zap.Logger
	scanner    *scanner.Scanner
	sequential bool
	executor   *batch.Executor
	auth       git.AuthResolver
	metrics    *metrics.Recorder
}

// New creates a Client.
func New(opts Options) *Client {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var recorder *metrics.Recorder
	if opts.Metrics {
		recorder = metrics.NewRecorder()
	}

	scanOpts := []scanner.Option{
		scanner.WithLogger(logger.Named("scanner")),
		scanner.WithSkipDirs(opts.SkipDirs...),
	}
	if opts.MaxDepth > 0 {
		scanOpts = append(scanOpts, scanner.WithMaxDepth(opts.MaxDepth))
	}

	batchOpts := []batch.Option{
		batch.WithLogger(logger.Named("batch")),
		batch.WithMetrics(recorder),
	}
	if opts.Concurrency > 0 {
		batchOpts = append(batchOpts, batch.WithConcurrency(opts.Concurrency))
	}

	auth := opts.Auth
	if auth == nil {
		auth = credential.NewResolver(
			credential.WithLogger(logger.Named("credential")),
			credential.WithHelper(credential.ParseCommand(opts.CredentialHelper)),
		)
	}

	return &Client{
		logger:     logger,
		scanner:    scanner.New(scanOpts...),
		sequential: opts.Sequential,
		executor:   batch.New(batchOpts...),
		auth:       auth,
		metrics:    recorder,
	}
}

// MetricsRegistry returns the registry holding operation metrics, or nil
// when Options.Metrics was false.
func (c *Client) MetricsRegistry() *prometheus.Registry {
	return c.metrics.Registry()
}

// WriteMetrics writes the collected metrics to a node exporter textfile.
// It is a no-op when metrics are disabled.
func (c *Client) WriteMetrics(path string) error {
	return c.metrics.WriteTextfile(path)
}

// Scan returns every repository root below root. It fails only when root
// itself is missing, inaccessible or inside a system directory.
func (c *Client) Scan(root string) ([]string, error) {
	if c.sequential {
		return c.scanner.Scan(root)
	}
	return c.scanner.ScanParallel(root)
}

// Info summarizes one repository. Missing branch, upstream or commits
// leave the matching fields empty.
func (c *Client) Info(path string) (RepositoryInfo, error) {
	return query(c, "info", path, (*git.Repository).Info)
}

// Status lists the changed and untracked files of one repository.
func (c *Client) Status(path string) (RepoStatus, error) {
	return query(c, "status", path, (*git.Repository).Status)
}

// Branches lists the local branches of one repository.
func (c *Client) Branches(path string) ([]BranchInfo, error) {
	return query(c, "branches", path, (*git.Repository).Branches)
}

// InfoMany summarizes every readable repository in paths.
func (c *Client) InfoMany(paths []string) []RepositoryInfo {
	return batch.Collect(context.Background(), c.executor, "info", paths,
		func(_ context.Context, r *git.Repository) (RepositoryInfo, error) {
			return r.Info()
		})
}

// Commit stages every change in the repository and commits it on top of
// HEAD. It returns the new commit id.
func (c *Client) Commit(path, message string) (string, error) {
	return query(c, "commit", path, func(r *git.Repository) (string, error) {
		return r.Commit(message)
	})
}

// CommitMany commits every repository in paths with the same message.
func (c *Client) CommitMany(paths []string, message string) []string {
	return c.executor.Run(context.Background(), "commit", paths,
		func(_ context.Context, r *git.Repository) error {
			_, err := r.Commit(message)
			return err
		})
}

// Push pushes the current branch to origin.
func (c *Client) Push(path string) error {
	return c.do("push", path, c.push)
}

// Fetch updates the remote-tracking refs of origin.
func (c *Client) Fetch(path string) error {
	return c.do("fetch", path, c.fetch)
}

// Pull fast-forwards the current branch to origin. Diverged branches fail
// with ErrOperationFailed and leave the working tree untouched.
func (c *Client) Pull(path string) error {
	return c.do("pull", path, c.pull)
}

// Discard throws away every uncommitted change, untracked files included.
// There is no confirmation and no undo.
func (c *Client) Discard(path string) error {
	return c.do("discard", path, discard)
}

// PushMany pushes every repository in paths.
func (c *Client) PushMany(paths []string) []string {
	return c.executor.Run(context.Background(), "push", paths, c.push)
}

// FetchMany fetches every distinct repository in paths.
func (c *Client) FetchMany(paths []string) []string {
	return c.executor.Run(context.Background(), "fetch", batch.Unique(paths), c.fetch)
}

// PullMany pulls every repository in paths.
func (c *Client) PullMany(paths []string) []string {
	return c.executor.Run(context.Background(), "pull", paths, c.pull)
}

// DiscardMany discards changes in every repository in paths.
func (c *Client) DiscardMany(paths []string) []string {
	return c.executor.Run(context.Background(), "discard", paths, discard)
}

func (c *Client) push(ctx context.Context, r *git.Repository) error {
	return r.Push(ctx, c.auth)
}

func (c *Client) fetch(ctx context.Context, r *git.Repository) error {
	return r.Fetch(ctx, c.auth)
}

func (c *Client) pull(ctx context.Context, r *git.Repository) error {
	return r.Pull(ctx, c.auth)
}

func discard(_ context.Context, r *git.Repository) error {
	return r.DiscardAllChanges()
}

func (c *Client) do(name, path string, op batch.Op) error {
	_, err := query(c, name, path, func(r *git.Repository) (struct{}, error) {
		return struct{}{}, op(context.Background(), r)
	})
	return err
}

func query[T any](c *Client, name, path string, fn func(*git.Repository) (T, error)) (T, error) {
	start := time.Now()
	v, err := git.Query(path, fn)
	c.metrics.Observe(name, time.Since(start), err)
	return v, err
}

// Package scanner discovers git repositories below a root directory.
//
// The walk is depth bounded, skips hidden and well-known dependency/build
// directories, and refuses to start inside operating-system directories.
// A repository root is any directory holding a ".git" directory. The marker
// itself is never descended into, but sibling directories are, so nested
// repositories are reported too.
package scanner

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/pathsafe"
)

const (
	// DefaultMaxDepth is used when no depth is configured.
	DefaultMaxDepth = 20
	// AbsoluteMaxDepth caps any requested depth.
	AbsoluteMaxDepth = 50

	marker = ".git"
)

// noiseDirs are dependency caches and tool directories never worth walking.
var noiseDirs = []string{
	"node_modules",
	"target",
	"build",
	".dart_tool",
	".gradle",
	".idea",
	".vscode",
	"vendor",
	"dist",
	"out",
	"__pycache__",
}

// Scanner walks directory trees looking for repository roots.
type Scanner struct {
	maxDepth    int
	skip        map[string]struct{}
	concurrency int64
	logger      *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxDepth sets the depth limit. Values above AbsoluteMaxDepth are capped;
// negative values fall back to DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(s *Scanner) {
		switch {
		case depth < 0:
			s.maxDepth = DefaultMaxDepth
		case depth > AbsoluteMaxDepth:
			s.maxDepth = AbsoluteMaxDepth
		default:
			s.maxDepth = depth
		}
	}
}

// WithSkipDirs adds directory names to the built-in skip list.
func WithSkipDirs(names ...string) Option {
	return func(s *Scanner) {
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				s.skip[n] = struct{}{}
			}
		}
	}
}

// WithConcurrency bounds the number of subtree goroutines in parallel mode.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = int64(n)
		}
	}
}

// WithLogger sets the logger used for absorbed per-directory failures.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Scanner with the default depth limit and skip list.
func New(opts ...Option) *Scanner {
	s := &Scanner{
		maxDepth:    DefaultMaxDepth,
		skip:        lo.SliceToMap(noiseDirs, func(n string) (string, struct{}) { return n, struct{}{} }),
		concurrency: int64(runtime.NumCPU() * 4),
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MaxDepth returns the effective depth limit.
func (s *Scanner) MaxDepth() int {
	return s.maxDepth
}

// Scan walks root on the calling goroutine.
func (s *Scanner) Scan(root string) ([]string, error) {
	canonical, err := pathsafe.Resolve(root)
	if err != nil {
		return nil, err
	}
	w := &walker{Scanner: s}
	return w.visit(canonical, 0), nil
}

// ScanParallel walks each subtree on its own goroutine while slots are
// available. It finds the same set of repositories as Scan.
func (s *Scanner) ScanParallel(root string) ([]string, error) {
	canonical, err := pathsafe.Resolve(root)
	if err != nil {
		return nil, err
	}
	w := &walker{Scanner: s, sem: semaphore.NewWeighted(s.concurrency)}
	return w.visit(canonical, 0), nil
}

type walker struct {
	*Scanner
	// sem is nil for sequential walks.
	sem *semaphore.Weighted
}

func (w *walker) visit(path string, depth int) []string {
	if depth > w.maxDepth {
		return nil
	}

	isRepo, children, ok := w.inspect(path)
	if !ok {
		return nil
	}

	var found []string
	if isRepo {
		found = append(found, path)
	}
	if len(children) == 0 {
		return found
	}

	// Every child owns its slot; slots are merged once all children return.
	results := make([][]string, len(children))
	var g errgroup.Group
	for i, child := range children {
		if w.sem != nil && w.sem.TryAcquire(1) {
			g.Go(func() error {
				defer w.sem.Release(1)
				results[i] = w.visit(child, depth+1)
				return nil
			})
			continue
		}
		// No free slot: walk inline so a parent never blocks on its own children.
		results[i] = w.visit(child, depth+1)
	}
	_ = g.Wait()

	return append(found, lo.Flatten(results)...)
}

// inspect reports whether path is a repository root and which of its
// subdirectories should be walked. ok is false when path is not a directory.
func (w *walker) inspect(path string) (isRepo bool, children []string, ok bool) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false, nil, false
	}

	if fi, err := os.Stat(filepath.Join(path, marker)); err == nil && fi.IsDir() {
		isRepo = true
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		w.logger.Debug("skipping unreadable directory",
			zap.String("path", path),
			zap.Error(err))
		return isRepo, nil, true
	}

	for _, entry := range entries {
		// Symlinked directories are not followed.
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		if _, skip := w.skip[name]; skip {
			continue
		}
		children = append(children, filepath.Join(path, name))
	}

	return isRepo, children, true
}

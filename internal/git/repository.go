package git

import (
	"errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/pathsafe"
)

// Repository is an exclusive handle on one on-disk working tree. It is not
// safe for concurrent use; open one handle per goroutine.
type Repository struct {
	repo *gogit.Repository
	wt   *gogit.Worktree
	path string
}

// Open opens the repository whose working tree root is path. Parent
// directories are not searched.
func Open(path string) (*Repository, error) {
	abs, err := pathsafe.Normalize(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepoNotFound, err)
	}

	r, err := gogit.PlainOpenWithOptions(abs, &gogit.PlainOpenOptions{
		DetectDotGit: false,
	})
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrRepoNotFound, abs)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrInvalidRepo, abs, err)
	}

	wt, err := r.Worktree()
	if err != nil {
		_ = closeStorer(r)
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidRepo, abs, err)
	}

	return &Repository{repo: r, wt: wt, path: abs}, nil
}

// With opens path, runs fn and releases the handle on every exit path.
// Panics in fn propagate after the handle is closed.
func With(path string, fn func(*Repository) error) error {
	r, err := Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()
	return fn(r)
}

// Query is With for operations that produce a value.
func Query[T any](path string, fn func(*Repository) (T, error)) (T, error) {
	var out T
	err := With(path, func(r *Repository) error {
		v, err := fn(r)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Path returns the normalized working tree root.
func (r *Repository) Path() string {
	return r.path
}

// Close releases file handles held by the object storage.
func (r *Repository) Close() error {
	return closeStorer(r.repo)
}

func closeStorer(r *gogit.Repository) error {
	if c, ok := r.Storer.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

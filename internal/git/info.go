package git

import (
	"github.com/samber/lo"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/pathsafe"
)

// optional holds the outcome of a sub-query that may legitimately be
// absent, e.g. the branch of a detached HEAD.
type optional[T any] struct {
	value T
	err   error
}

func attempt[T any](value T, err error) optional[T] {
	return optional[T]{value: value, err: err}
}

// orZero returns the value, or the zero value when the query failed.
func (o optional[T]) orZero() T {
	if o.err != nil {
		var zero T
		return zero
	}
	return o.value
}

// Info aggregates status, branch, upstream distance and the last commit.
// Only a status failure fails the call; the other parts degrade to their
// empty values.
func (r *Repository) Info() (RepositoryInfo, error) {
	status, err := r.Status()
	if err != nil {
		return RepositoryInfo{}, err
	}

	branch := attempt(r.CurrentBranch())
	last := attempt(r.LastCommit())
	dist := attempt(r.upstreamDistance()).orZero()

	untracked := lo.CountBy(status.Files, func(f FileStatus) bool {
		return f.Status == StatusUntracked
	})

	return RepositoryInfo{
		Path:               r.path,
		Name:               pathsafe.RepoName(r.path),
		CurrentBranch:      branch.orZero(),
		IsDirty:            !status.IsClean,
		UncommittedChanges: len(status.Files) - untracked,
		UntrackedFiles:     untracked,
		UnpushedCommits:    dist.ahead,
		Ahead:              dist.ahead,
		Behind:             dist.behind,
		LastCommit:         last.orZero(),
		Files:              status.Files,
	}, nil
}

type distance struct {
	ahead, behind int32
}

func (r *Repository) upstreamDistance() (distance, error) {
	ahead, behind, err := r.AheadBehind()
	return distance{ahead: ahead, behind: behind}, err
}

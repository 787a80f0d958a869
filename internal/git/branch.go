package git

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CurrentBranch returns the short name of the checked out branch.
func (r *Repository) CurrentBranch() (string, error) {
	ref, err := r.headBranch()
	if err != nil {
		return "", err
	}
	return ref.Name().Short(), nil
}

// headBranch resolves HEAD and requires it to point at a branch.
func (r *Repository) headBranch() (*plumbing.Reference, error) {
	ref, err := r.head()
	if err != nil {
		return nil, err
	}
	if !ref.Name().IsBranch() {
		return nil, fmt.Errorf("%w: at %s", ErrDetachedHead, shortHash(ref.Hash().String()))
	}
	return ref, nil
}

func (r *Repository) head() (*plumbing.Reference, error) {
	ref, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNoHead, r.path)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}
	return ref, nil
}

// Upstream returns the short name of the tracking ref configured for
// branch, e.g. "origin/main".
func (r *Repository) Upstream(branch string) (string, error) {
	ref, err := r.upstreamRef(branch)
	if err != nil {
		return "", err
	}
	return ref.Name().Short(), nil
}

// upstreamRef follows the branch's remote/merge config. A remote of "."
// tracks a local branch. A configured upstream whose ref no longer exists
// is reported as ErrNoRemote.
func (r *Repository) upstreamRef(branch string) (*plumbing.Reference, error) {
	cfg, err := r.repo.Config()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	b, ok := cfg.Branches[branch]
	if !ok || b.Remote == "" || b.Merge == "" {
		return nil, fmt.Errorf("%w: branch %q has no upstream", ErrNoRemote, branch)
	}

	name := b.Merge
	if b.Remote != "." {
		name = plumbing.NewRemoteReferenceName(b.Remote, b.Merge.Short())
	}

	ref, err := r.repo.Reference(name, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("%w: upstream %s of %q does not exist", ErrNoRemote, name.Short(), branch)
	}
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", name, err)
	}
	return ref, nil
}

// AheadBehind counts commits reachable only from the current branch
// (ahead) and only from its upstream (behind).
func (r *Repository) AheadBehind() (ahead, behind int32, err error) {
	local, err := r.headBranch()
	if err != nil {
		return 0, 0, err
	}
	upstream, err := r.upstreamRef(local.Name().Short())
	if err != nil {
		return 0, 0, err
	}
	if local.Hash() == upstream.Hash() {
		return 0, 0, nil
	}

	localCommit, err := r.repo.CommitObject(local.Hash())
	if err != nil {
		return 0, 0, fmt.Errorf("loading %s: %w", local.Name().Short(), err)
	}
	upstreamCommit, err := r.repo.CommitObject(upstream.Hash())
	if err != nil {
		return 0, 0, fmt.Errorf("loading %s: %w", upstream.Name().Short(), err)
	}

	a, err := countUnique(localCommit, upstreamCommit)
	if err != nil {
		return 0, 0, err
	}
	b, err := countUnique(upstreamCommit, localCommit)
	if err != nil {
		return 0, 0, err
	}
	return int32(min(a, math.MaxInt32)), int32(min(b, math.MaxInt32)), nil
}

// countUnique counts commits reachable from c but not from other.
func countUnique(c, other *object.Commit) (int, error) {
	exclude := make(map[plumbing.Hash]bool)
	err := object.NewCommitPreorderIter(other, nil, nil).ForEach(func(oc *object.Commit) error {
		exclude[oc.Hash] = true
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking history of %s: %w", shortHash(other.Hash.String()), err)
	}

	n := 0
	err = object.NewCommitPreorderIter(c, exclude, nil).ForEach(func(*object.Commit) error {
		n++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walking history of %s: %w", shortHash(c.Hash.String()), err)
	}
	return n, nil
}

// LastCommit summarizes the commit HEAD points at.
func (r *Repository) LastCommit() (*CommitInfo, error) {
	ref, err := r.head()
	if err != nil {
		return nil, err
	}
	c, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("loading HEAD commit: %w", err)
	}
	return commitInfo(c), nil
}

func commitInfo(c *object.Commit) *CommitInfo {
	sha := c.Hash.String()
	return &CommitInfo{
		Hash:      sha,
		ShortHash: shortHash(sha),
		Message:   c.Message,
		Author:    c.Author.Name,
		Email:     c.Author.Email,
		Timestamp: c.Author.When.Unix(),
	}
}

// Branches lists local branches sorted by name.
func (r *Repository) Branches() ([]BranchInfo, error) {
	current := ""
	if ref, err := r.headBranch(); err == nil {
		current = ref.Name().Short()
	}

	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches: %w", err)
	}

	branches := []BranchInfo{}
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		info := BranchInfo{Name: name, IsCurrent: name == current}
		// Missing or dangling upstream config leaves Upstream empty.
		if up, err := r.Upstream(name); err == nil {
			info.Upstream = up
		}
		branches = append(branches, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating branches: %w", err)
	}

	sort.Slice(branches, func(i, j int) bool { return branches[i].Name < branches[j].Name })
	return branches, nil
}

package git

import (
	"context"
	"errors"
	"fmt"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
)

const originRemote = "origin"

// AuthResolver picks credentials for a remote URL. A nil result means
// anonymous access.
type AuthResolver interface {
	ForURL(ctx context.Context, rawURL string) transport.AuthMethod
}

// origin returns the origin remote and the credentials for its first URL.
func (r *Repository) origin(ctx context.Context, auth AuthResolver) (*gogit.Remote, transport.AuthMethod, error) {
	remote, err := r.repo.Remote(originRemote)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		return nil, nil, fmt.Errorf("%w: %s has no %q remote", ErrNoRemote, r.path, originRemote)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("loading remote %s: %w", originRemote, err)
	}

	urls := remote.Config().URLs
	if auth == nil || len(urls) == 0 {
		return remote, nil, nil
	}
	return remote, auth.ForURL(ctx, urls[0]), nil
}

// Push pushes the current branch to the same-named branch on origin.
func (r *Repository) Push(ctx context.Context, auth AuthResolver) error {
	remote, method, err := r.origin(ctx, auth)
	if err != nil {
		return err
	}
	branch, err := r.CurrentBranch()
	if err != nil {
		return err
	}

	ref := plumbing.NewBranchReferenceName(branch)
	err = remote.PushContext(ctx, &gogit.PushOptions{
		RemoteName: originRemote,
		RefSpecs:   []config.RefSpec{config.RefSpec(ref + ":" + ref)},
		Auth:       method,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pushing %s: %w", branch, err)
	}
	return nil
}

// Fetch updates origin's remote-tracking refs using its configured
// refspecs. Local branches are not touched.
func (r *Repository) Fetch(ctx context.Context, auth AuthResolver) error {
	remote, method, err := r.origin(ctx, auth)
	if err != nil {
		return err
	}

	err = remote.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: originRemote,
		Auth:       method,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s: %w", originRemote, err)
	}
	return nil
}

// Pull fetches the current branch from origin and fast-forwards to it.
// A local branch that already contains the remote tip is left alone;
// diverged histories fail with ErrOperationFailed and leave the working
// tree untouched.
func (r *Repository) Pull(ctx context.Context, auth AuthResolver) error {
	remote, method, err := r.origin(ctx, auth)
	if err != nil {
		return err
	}
	local, err := r.headBranch()
	if err != nil {
		return err
	}
	branch := local.Name().Short()
	tracking := plumbing.NewRemoteReferenceName(originRemote, branch)

	spec := config.RefSpec(fmt.Sprintf("+%s:%s", local.Name(), tracking))
	err = remote.FetchContext(ctx, &gogit.FetchOptions{
		RemoteName: originRemote,
		RefSpecs:   []config.RefSpec{spec},
		Auth:       method,
	})
	if errors.Is(err, gogit.NoMatchingRefSpecError{}) {
		return fmt.Errorf("%w: %s on %s", ErrBranchNotFound, branch, originRemote)
	}
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return fmt.Errorf("fetching %s: %w", branch, err)
	}

	upstream, err := r.repo.Reference(tracking, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return fmt.Errorf("%w: %s", ErrBranchNotFound, tracking.Short())
	}
	if err != nil {
		return fmt.Errorf("resolving %s: %w", tracking.Short(), err)
	}

	if upstream.Hash() == local.Hash() {
		return nil
	}

	localCommit, err := r.repo.CommitObject(local.Hash())
	if err != nil {
		return fmt.Errorf("loading %s: %w", branch, err)
	}
	remoteCommit, err := r.repo.CommitObject(upstream.Hash())
	if err != nil {
		return fmt.Errorf("loading %s: %w", tracking.Short(), err)
	}

	if ok, err := remoteCommit.IsAncestor(localCommit); err != nil {
		return fmt.Errorf("comparing %s with %s: %w", branch, tracking.Short(), err)
	} else if ok {
		return nil
	}

	ok, err := localCommit.IsAncestor(remoteCommit)
	if err != nil {
		return fmt.Errorf("comparing %s with %s: %w", branch, tracking.Short(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s and %s have diverged, pull requires a real merge",
			ErrOperationFailed, branch, tracking.Short())
	}

	return r.fastForward(local.Name(), localCommit, remoteCommit)
}

// fastForward moves branch to target and rewrites the tracked files that
// differ, either between the two trees or from local edits. Untracked and
// ignored files are kept.
func (r *Repository) fastForward(branch plumbing.ReferenceName, from, to *object.Commit) error {
	paths, err := changedBetween(from, to)
	if err != nil {
		return err
	}
	st, err := r.worktreeStatus()
	if err != nil {
		return err
	}
	paths = append(paths, trackedChanges(st)...)

	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(branch, to.Hash)); err != nil {
		return fmt.Errorf("updating %s: %w", branch.Short(), err)
	}
	if len(paths) == 0 {
		return nil
	}

	// An empty Files list would reset the whole tree, removing untracked files.
	err = r.wt.Reset(&gogit.ResetOptions{
		Commit: to.Hash,
		Mode:   gogit.HardReset,
		Files:  paths,
	})
	if err != nil {
		return fmt.Errorf("checking out %s: %w", shortHash(to.Hash.String()), err)
	}
	return nil
}

func changedBetween(from, to *object.Commit) ([]string, error) {
	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", shortHash(from.Hash.String()), err)
	}
	toTree, err := to.Tree()
	if err != nil {
		return nil, fmt.Errorf("loading tree of %s: %w", shortHash(to.Hash.String()), err)
	}

	changes, err := object.DiffTree(fromTree, toTree)
	if err != nil {
		return nil, fmt.Errorf("diffing trees: %w", err)
	}

	var paths []string
	for _, ch := range changes {
		if ch.From.Name != "" {
			paths = append(paths, ch.From.Name)
		}
		if ch.To.Name != "" && ch.To.Name != ch.From.Name {
			paths = append(paths, ch.To.Name)
		}
	}
	return paths, nil
}

package git

import (
	"fmt"
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// DiscardAllChanges restores every tracked file to HEAD and deletes
// untracked files and the directories they leave empty. Ignored files and
// nested repositories are kept. There is no confirmation step.
func (r *Repository) DiscardAllChanges() error {
	head, err := r.head()
	if err != nil {
		return err
	}
	st, err := r.worktreeStatus()
	if err != nil {
		return err
	}
	paths := trackedChanges(st)

	if len(paths) > 0 {
		err = r.wt.Reset(&gogit.ResetOptions{
			Commit: head.Hash(),
			Mode:   gogit.HardReset,
			Files:  paths,
		})
		if err != nil {
			return fmt.Errorf("resetting %s: %w", r.path, err)
		}
		// Files that were only staged are untracked now.
		if st, err = r.worktreeStatus(); err != nil {
			return err
		}
	}

	if err := r.removeUntracked(untracked(st)); err != nil {
		return fmt.Errorf("removing untracked files in %s: %w", r.path, err)
	}
	return nil
}

// trackedChanges lists paths whose index or worktree state differs from
// HEAD, excluding files git has never seen.
func trackedChanges(st gogit.Status) []string {
	var paths []string
	for path, fs := range st {
		if fs == nil || fs.Worktree == gogit.Untracked {
			continue
		}
		if fs.Staging == gogit.Unmodified && fs.Worktree == gogit.Unmodified {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}

// untracked lists files that are neither tracked nor ignored, sorted so
// removal order is stable.
func untracked(st gogit.Status) []string {
	var paths []string
	for path, fs := range st {
		if fs != nil && fs.Worktree == gogit.Untracked {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths
}

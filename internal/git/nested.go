package git

import (
	"fmt"
	"path"

	gogit "github.com/go-git/go-git/v5"
)

// worktreeStatus is wt.Status without the contents of nested repositories.
// A directory holding its own .git belongs to that repository and nothing
// below it is part of the outer working tree.
func (r *Repository) worktreeStatus() (gogit.Status, error) {
	st, err := r.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("reading status of %s: %w", r.path, err)
	}

	nested := map[string]bool{}
	for p := range st {
		if r.insideNested(p, nested) {
			delete(st, p)
		}
	}
	return st, nil
}

// insideNested reports whether any parent directory of the slash separated
// path p contains a .git entry. Results per directory are cached in seen.
func (r *Repository) insideNested(p string, seen map[string]bool) bool {
	for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
		isRepo, ok := seen[dir]
		if !ok {
			_, err := r.wt.Filesystem.Lstat(path.Join(dir, gogit.GitDirName))
			isRepo = err == nil
			seen[dir] = isRepo
		}
		if isRepo {
			return true
		}
	}
	return false
}

// removeUntracked deletes the given untracked files and then any parent
// directories left empty, stopping at the working tree root.
func (r *Repository) removeUntracked(paths []string) error {
	fs := r.wt.Filesystem
	for _, p := range paths {
		if err := fs.Remove(p); err != nil {
			return fmt.Errorf("removing %s: %w", p, err)
		}
		for dir := path.Dir(p); dir != "." && dir != "/"; dir = path.Dir(dir) {
			entries, err := fs.ReadDir(dir)
			if err != nil || len(entries) > 0 {
				break
			}
			if err := fs.Remove(dir); err != nil {
				return fmt.Errorf("removing %s: %w", dir, err)
			}
		}
	}
	return nil
}

package git

import (
	"sort"

	gogit "github.com/go-git/go-git/v5"
)

// Status reports every changed path in the working tree and index,
// including untracked files. Ignored files and the contents of nested
// repositories are not reported.
func (r *Repository) Status() (RepoStatus, error) {
	st, err := r.worktreeStatus()
	if err != nil {
		return RepoStatus{}, err
	}

	files := make([]FileStatus, 0, len(st))
	for path, fs := range st {
		if fs.Staging == gogit.Unmodified && fs.Worktree == gogit.Unmodified {
			continue
		}
		files = append(files, FileStatus{Path: path, Status: classify(fs)})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	return RepoStatus{
		Path:    r.path,
		IsClean: len(files) == 0,
		Files:   files,
	}, nil
}

// classify maps go-git's staging and worktree codes to a single kind. The
// checks run in priority order; new files count as untracked whether or not
// they are staged.
func classify(fs *gogit.FileStatus) FileStatusKind {
	either := func(code gogit.StatusCode) bool {
		return fs.Staging == code || fs.Worktree == code
	}

	switch {
	case either(gogit.Untracked) || either(gogit.Added):
		return StatusUntracked
	case either(gogit.Modified):
		return StatusModified
	case either(gogit.Deleted):
		return StatusDeleted
	case either(gogit.Renamed):
		return StatusRenamed
	case either(gogit.UpdatedButUnmerged):
		return StatusConflicted
	default:
		return StatusModified
	}
}

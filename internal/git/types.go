// Package git reads and updates local git repositories through go-git.
//
// A Repository is an exclusive handle on one working tree. Read queries
// (Status, AheadBehind, Info, ...) never mutate the repository; write
// operations (Commit, Push, Pull, DiscardAllChanges, ...) live alongside
// them on the same handle.
package git

// FileStatusKind classifies a changed path.
type FileStatusKind string

const (
	StatusModified   FileStatusKind = "modified"
	StatusAdded      FileStatusKind = "added"
	StatusDeleted    FileStatusKind = "deleted"
	StatusRenamed    FileStatusKind = "renamed"
	StatusCopied     FileStatusKind = "copied"
	StatusUntracked  FileStatusKind = "untracked"
	StatusConflicted FileStatusKind = "conflicted"
)

// FileStatus is one changed path relative to the working tree root.
type FileStatus struct {
	Path   string         `json:"path"`
	Status FileStatusKind `json:"status"`
}

// RepoStatus is a snapshot of the working tree. IsClean holds exactly when
// Files is empty.
type RepoStatus struct {
	Path    string       `json:"path"`
	IsClean bool         `json:"is_clean"`
	Files   []FileStatus `json:"files"`
}

// CommitInfo summarizes a commit.
type CommitInfo struct {
	Hash      string `json:"hash"`
	ShortHash string `json:"short_hash"`
	Message   string `json:"message"`
	Author    string `json:"author"`
	Email     string `json:"email"`
	Timestamp int64  `json:"timestamp"`
}

// BranchInfo describes a local branch. Upstream is the short name of the
// tracking ref, e.g. "origin/main", or empty.
type BranchInfo struct {
	Name      string `json:"name"`
	IsCurrent bool   `json:"is_current"`
	Upstream  string `json:"upstream,omitempty"`
}

// RepositoryInfo is the aggregate read view of a repository.
type RepositoryInfo struct {
	Path               string       `json:"path"`
	Name               string       `json:"name"`
	CurrentBranch      string       `json:"current_branch,omitempty"`
	IsDirty            bool         `json:"is_dirty"`
	UncommittedChanges int          `json:"uncommitted_changes"`
	UntrackedFiles     int          `json:"untracked_files"`
	UnpushedCommits    int32        `json:"unpushed_commits"`
	Ahead              int32        `json:"ahead"`
	Behind             int32        `json:"behind"`
	LastCommit         *CommitInfo  `json:"last_commit,omitempty"`
	Files              []FileStatus `json:"files"`
}

// shortHash returns the first 7 characters of a hex object id.
func shortHash(sha string) string {
	if len(sha) >= 7 {
		return sha[:7]
	}
	return sha
}

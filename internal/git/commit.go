package git

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

const (
	// MaxMessageLength is the longest accepted commit message, in characters.
	MaxMessageLength = 10000
	// MaxMessageLines is how many lines of a message are kept.
	MaxMessageLines = 100
)

// ValidateMessage rejects empty and overlong commit messages.
func ValidateMessage(message string) error {
	if message == "" {
		return fmt.Errorf("%w: commit message cannot be empty", ErrOperationFailed)
	}
	if utf8.RuneCountInString(message) > MaxMessageLength {
		return fmt.Errorf("%w: commit message too long (max %d characters)", ErrOperationFailed, MaxMessageLength)
	}
	return nil
}

// SanitizeMessage removes NUL bytes and keeps the first MaxMessageLines
// lines. Lines are rejoined with "\n"; a trailing line break is dropped.
func SanitizeMessage(message string) string {
	message = strings.ReplaceAll(message, "\x00", "")

	lines := strings.Split(message, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > MaxMessageLines {
		lines = lines[:MaxMessageLines]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return strings.Join(lines, "\n")
}

// stageAll adds every worktree change outside nested repositories to the
// index. Deleted files are removed from it.
func (r *Repository) stageAll() error {
	st, err := r.worktreeStatus()
	if err != nil {
		return err
	}
	paths := make([]string, 0, len(st))
	for p, fs := range st {
		if fs.Worktree != gogit.Unmodified {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	for _, p := range paths {
		if err := r.wt.AddWithOptions(&gogit.AddOptions{Path: p, SkipStatus: true}); err != nil {
			return fmt.Errorf("staging %s: %w", p, err)
		}
	}
	return nil
}

// Commit stages every change in the working tree, including deletions, and
// records a commit on top of HEAD. Author and committer come from the
// repository's user.name and user.email. It returns the new commit hash.
func (r *Repository) Commit(message string) (string, error) {
	if err := ValidateMessage(message); err != nil {
		return "", err
	}
	sanitized := SanitizeMessage(message)

	head, err := r.head()
	if err != nil {
		return "", err
	}

	if err := r.stageAll(); err != nil {
		return "", err
	}

	hash, err := r.wt.Commit(sanitized, &gogit.CommitOptions{
		AllowEmptyCommits: true,
		Parents:           []plumbing.Hash{head.Hash()},
	})
	if err != nil {
		return "", fmt.Errorf("committing: %w", err)
	}
	return hash.String(), nil
}

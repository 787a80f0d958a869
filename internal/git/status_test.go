package git

import (
	"os"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/testutil"
)

func TestStatus_ModifiedAndUntracked(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.CommitFile("tracked.txt", "v1\n", "first")
	repo.WriteFile("tracked.txt", "v2\n")
	repo.WriteFile("new.txt", "new\n")

	st, err := open(t, repo.Path()).Status()
	require.NoError(t, err)
	require.False(t, st.IsClean)
	require.Equal(t, repo.Path(), st.Path)
	require.Equal(t, []FileStatus{
		{Path: "new.txt", Status: StatusUntracked},
		{Path: "tracked.txt", Status: StatusModified},
	}, st.Files)
}

func TestStatus_Clean(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.CommitFile("a.txt", "a", "first")

	st, err := open(t, repo.Path()).Status()
	require.NoError(t, err)
	require.True(t, st.IsClean)
	require.Empty(t, st.Files)
}

func TestStatus_SkipsNestedRepository(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.CommitFile("a.txt", "a", "first")
	nestRepository(t, repo, "inner")

	st, err := open(t, repo.Path()).Status()
	require.NoError(t, err)
	require.True(t, st.IsClean, "unexpected changes: %v", st.Files)

	repo.WriteFile("outer.txt", "outer")
	st, err = open(t, repo.Path()).Status()
	require.NoError(t, err)
	require.Equal(t, []FileStatus{{Path: "outer.txt", Status: StatusUntracked}}, st.Files)
}

func TestStatus_Kinds(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.CommitFile(".gitignore", "*.log\n", "ignore")
	repo.CommitFile("gone.txt", "x", "add gone")
	repo.CommitFile("dir/keep.txt", "x", "add keep")

	require.NoError(t, os.Remove(filepath.Join(repo.Path(), "gone.txt")))
	repo.WriteFile("staged.txt", "staged")
	repo.Stage("staged.txt")
	repo.WriteFile("dir/nested/untracked.txt", "u")
	repo.WriteFile("debug.log", "ignored")

	st, err := open(t, repo.Path()).Status()
	require.NoError(t, err)
	require.Equal(t, []FileStatus{
		{Path: "dir/nested/untracked.txt", Status: StatusUntracked},
		{Path: "gone.txt", Status: StatusDeleted},
		{Path: "staged.txt", Status: StatusUntracked},
	}, st.Files)
}

func TestStatus_DoesNotMutate(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	head := repo.CommitFile("a.txt", "a", "first")
	repo.WriteFile("a.txt", "b")
	repo.WriteFile("b.txt", "b")

	r := open(t, repo.Path())
	first, err := r.Status()
	require.NoError(t, err)
	second, err := r.Status()
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.Equal(t, head, repo.HeadSha())
	require.Equal(t, "b", repo.ReadFile("a.txt"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		staging  gogit.StatusCode
		worktree gogit.StatusCode
		want     FileStatusKind
	}{
		{"untracked", gogit.Untracked, gogit.Untracked, StatusUntracked},
		{"staged new", gogit.Added, gogit.Unmodified, StatusUntracked},
		{"staged new then edited", gogit.Added, gogit.Modified, StatusUntracked},
		{"modified in worktree", gogit.Unmodified, gogit.Modified, StatusModified},
		{"modified in index", gogit.Modified, gogit.Unmodified, StatusModified},
		{"modified then deleted", gogit.Modified, gogit.Deleted, StatusModified},
		{"deleted", gogit.Unmodified, gogit.Deleted, StatusDeleted},
		{"staged delete", gogit.Deleted, gogit.Unmodified, StatusDeleted},
		{"renamed", gogit.Renamed, gogit.Unmodified, StatusRenamed},
		{"conflicted", gogit.UpdatedButUnmerged, gogit.UpdatedButUnmerged, StatusConflicted},
		{"copied falls back", gogit.Copied, gogit.Unmodified, StatusModified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(&gogit.FileStatus{Staging: tt.staging, Worktree: tt.worktree})
			require.Equal(t, tt.want, got)
		})
	}
}

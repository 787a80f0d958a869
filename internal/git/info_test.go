package git

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/pathsafe"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/testutil"
)

func TestInfo_DirtyWithoutUpstream(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.CommitFile("tracked.txt", "v1\n", "first")
	repo.WriteFile("tracked.txt", "v2\n")
	repo.WriteFile("new.txt", "new\n")

	info, err := open(t, repo.Path()).Info()
	require.NoError(t, err)

	require.Equal(t, repo.Path(), info.Path)
	require.Equal(t, pathsafe.RepoName(repo.Path()), info.Name)
	require.Equal(t, testutil.DefaultBranch, info.CurrentBranch)
	require.True(t, info.IsDirty)
	require.Len(t, info.Files, 2)
	require.Equal(t, 1, info.UncommittedChanges)
	require.Equal(t, 1, info.UntrackedFiles)
	require.Zero(t, info.Ahead)
	require.Zero(t, info.Behind)
	require.Zero(t, info.UnpushedCommits)
	require.NotNil(t, info.LastCommit)
	require.Equal(t, sha, info.LastCommit.Hash)
}

func TestInfo_Unborn(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.WriteFile("a.txt", "a")

	info, err := open(t, repo.Path()).Info()
	require.NoError(t, err)
	require.Empty(t, info.CurrentBranch)
	require.Nil(t, info.LastCommit)
	require.Equal(t, 1, info.UntrackedFiles)
}

func TestInfo_Detached(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	sha := repo.CommitFile("a.txt", "a", "first")
	repo.Detach(sha)

	info, err := open(t, repo.Path()).Info()
	require.NoError(t, err)
	require.Empty(t, info.CurrentBranch)
	require.False(t, info.IsDirty)
	require.Equal(t, sha, info.LastCommit.Hash)
}

func TestInfo_Unpushed(t *testing.T) {
	local := testutil.Clone(t, withRemote(t))
	local.CommitFile("a.txt", "a", "one")
	local.CommitFile("b.txt", "b", "two")

	info, err := open(t, local.Path()).Info()
	require.NoError(t, err)
	require.Equal(t, int32(2), info.Ahead)
	require.Equal(t, int32(2), info.UnpushedCommits)
	require.Zero(t, info.Behind)
	require.False(t, info.IsDirty)
}

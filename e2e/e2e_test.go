// Package e2e contains end-to-end tests that exercise a whole fleet
// workflow against real (temporary) git repositories and remotes.
//
// Each test builds a directory of repositories, discovers them with the
// scanner and drives them through the batch executor and the repository
// operations together: scanner → batch → git.
package e2e

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/batch"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/git"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/scanner"
	"github.com/MyCarrier-DevOps/go-gitfleet/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.InstallFileTransport()
	os.Exit(m.Run())
}

type anonymous struct{}

func (anonymous) ForURL(context.Context, string) transport.AuthMethod { return nil }

// fleet is a workspace directory with cloned repositories, each backed by
// its own bare remote.
type fleet struct {
	root   string
	repos  map[string]*testutil.TestRepo
	remote map[string]string
}

func newFleet(t *testing.T, names ...string) *fleet {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	f := &fleet{root: root, repos: map[string]*testutil.TestRepo{}, remote: map[string]string{}}
	for _, name := range names {
		remote := testutil.NewBareRemote(t)
		seed := testutil.NewTestRepo(t)
		seed.CommitFile("README.md", name+"\n", "initial")
		seed.AddRemote(remote)
		seed.PushBranch(testutil.DefaultBranch)

		f.repos[name] = testutil.CloneTo(t, remote, filepath.Join(root, name))
		f.remote[name] = remote
	}
	return f
}

func (f *fleet) path(name string) string {
	return filepath.Join(f.root, name)
}

// ---------------------------------------------------------------------------
// Discovery
// ---------------------------------------------------------------------------

func TestE2E_ScanFindsFleet(t *testing.T) {
	f := newFleet(t, "api", "web", "infra/terraform")
	require.NoError(t, os.MkdirAll(filepath.Join(f.root, "node_modules", "pkg", ".git"), 0o755))

	found, err := scanner.New().ScanParallel(f.root)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{f.path("api"), f.path("web"), f.path("infra/terraform")}, found)

	sequential, err := scanner.New().Scan(f.root)
	require.NoError(t, err)
	require.ElementsMatch(t, found, sequential)
}

// ---------------------------------------------------------------------------
// Read path
// ---------------------------------------------------------------------------

func TestE2E_InfoAcrossFleet(t *testing.T) {
	f := newFleet(t, "api", "web")
	f.repos["api"].WriteFile("README.md", "changed\n")
	f.repos["api"].WriteFile("todo.txt", "x")
	f.repos["web"].CommitFile("page.html", "<p/>", "add page")

	found, err := scanner.New().Scan(f.root)
	require.NoError(t, err)

	infos := batch.Collect(context.Background(), batch.New(), "info", found,
		func(_ context.Context, r *git.Repository) (git.RepositoryInfo, error) {
			return r.Info()
		})
	require.Len(t, infos, 2)

	byName := map[string]git.RepositoryInfo{}
	for _, info := range infos {
		byName[info.Name] = info
	}

	api := byName["api"]
	require.True(t, api.IsDirty)
	require.Equal(t, 1, api.UncommittedChanges)
	require.Equal(t, 1, api.UntrackedFiles)
	require.Zero(t, api.Ahead)

	web := byName["web"]
	require.False(t, web.IsDirty)
	require.Equal(t, int32(1), web.Ahead)
	require.Equal(t, int32(1), web.UnpushedCommits)
	require.Equal(t, "add page", web.LastCommit.Message)
}

// ---------------------------------------------------------------------------
// Write path
// ---------------------------------------------------------------------------

func TestE2E_CommitPushPullRoundTrip(t *testing.T) {
	f := newFleet(t, "api", "web")
	for _, r := range f.repos {
		r.WriteFile("CHANGELOG.md", "v2\n")
	}
	paths := []string{f.path("api"), f.path("web")}
	ex := batch.New(batch.WithConcurrency(2))

	committed := ex.Run(context.Background(), "commit", paths, func(_ context.Context, r *git.Repository) error {
		_, err := r.Commit("release v2")
		return err
	})
	require.Equal(t, paths, committed)

	pushed := ex.Run(context.Background(), "push", paths, func(ctx context.Context, r *git.Repository) error {
		return r.Push(ctx, anonymous{})
	})
	require.Equal(t, paths, pushed)

	// A second clone of api catches up with a fast-forward pull.
	other := testutil.Clone(t, f.remote["api"])
	pulled := ex.Run(context.Background(), "pull", []string{other.Path()}, func(ctx context.Context, r *git.Repository) error {
		return r.Pull(ctx, anonymous{})
	})
	require.Equal(t, []string{other.Path()}, pulled)
	require.Equal(t, "v2\n", other.ReadFile("CHANGELOG.md"))
	require.Equal(t, f.repos["api"].HeadSha(), other.HeadSha())
}

func TestE2E_FailuresAreLoggedNotFatal(t *testing.T) {
	f := newFleet(t, "api", "web")
	core, logs := observer.New(zapcore.InfoLevel)
	ex := batch.New(batch.WithLogger(zap.New(core)))

	// web diverges from its remote; api stays a strict ancestor.
	upstream := testutil.Clone(t, f.remote["web"])
	upstream.CommitFile("remote.txt", "r", "remote side")
	upstream.PushBranch(testutil.DefaultBranch)
	f.repos["web"].CommitFile("local.txt", "l", "local side")
	before := f.repos["web"].HeadSha()

	paths := []string{f.path("api"), f.path("web"), filepath.Join(f.root, "missing")}
	pulled := ex.Run(context.Background(), "pull", paths, func(ctx context.Context, r *git.Repository) error {
		return r.Pull(ctx, anonymous{})
	})

	require.Equal(t, []string{f.path("api")}, pulled)
	require.Equal(t, before, f.repos["web"].HeadSha())
	require.False(t, f.repos["web"].Exists("remote.txt"))

	failures := logs.FilterMessage("repository operation failed").All()
	require.Len(t, failures, 2)
}

func TestE2E_DiscardAcrossFleet(t *testing.T) {
	f := newFleet(t, "api", "web")
	for _, r := range f.repos {
		r.WriteFile("README.md", "scribble\n")
		r.WriteFile("scratch/notes.txt", "tmp")
		r.WriteFile("debug.log", "x")
	}
	paths := []string{f.path("api"), f.path("web")}

	discarded := batch.New().Run(context.Background(), "discard", paths, func(_ context.Context, r *git.Repository) error {
		return r.DiscardAllChanges()
	})
	require.Equal(t, paths, discarded)

	for name, r := range f.repos {
		require.Equal(t, name+"\n", r.ReadFile("README.md"))
		require.False(t, r.Exists("scratch/notes.txt"))
		require.False(t, r.Exists("debug.log"))
	}
}

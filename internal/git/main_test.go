package git

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/testutil"
)

func TestMain(m *testing.M) {
	testutil.InstallFileTransport()
	os.Exit(m.Run())
}

// recordingAuth hands out anonymous credentials and remembers every URL it
// was asked about.
type recordingAuth struct {
	mu   sync.Mutex
	urls []string
}

func (a *recordingAuth) ForURL(_ context.Context, rawURL string) transport.AuthMethod {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.urls = append(a.urls, rawURL)
	return nil
}

// withRemote returns a bare remote seeded with one commit on the default
// branch, including a .gitignore that ignores *.log.
func withRemote(t *testing.T) string {
	t.Helper()
	remote := testutil.NewBareRemote(t)
	seed := testutil.NewTestRepo(t)
	seed.CommitFile(".gitignore", "*.log\n", "ignore logs")
	seed.CommitFile("README.md", "hello\n", "initial")
	seed.AddRemote(remote)
	seed.PushBranch(testutil.DefaultBranch)
	return remote
}

func open(t *testing.T, path string) *Repository {
	t.Helper()
	r, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

// nestRepository initialises a separate repository at dir inside repo and
// leaves an uncommitted work.txt in it.
func nestRepository(t *testing.T, repo *testutil.TestRepo, dir string) {
	t.Helper()
	_, err := gogit.PlainInit(filepath.Join(repo.Path(), dir), false)
	require.NoError(t, err)
	repo.WriteFile(dir+"/work.txt", "nested work")
}

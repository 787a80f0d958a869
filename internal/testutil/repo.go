// Package testutil provides helpers for creating temporary git repositories,
// bare remotes and clones for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gogitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
)

const (
	// DefaultBranch is the initial branch of every repository created here.
	DefaultBranch = "main"

	userName  = "Test"
	userEmail = "test@example.com"
)

// InstallFileTransport serves file:// and plain-path remotes in process so
// tests do not need a git binary. Call it from TestMain.
func InstallFileTransport() {
	client.InstallProtocol("file", server.NewClient(server.DefaultLoader))
}

// TestRepo is a builder for temporary working trees with controlled history.
type TestRepo struct {
	t    testing.TB
	path string
	repo *gogit.Repository
	time time.Time
}

// NewTestRepo initializes an empty repository on DefaultBranch in a
// temporary directory. The repository has a local user identity.
func NewTestRepo(t testing.TB) *TestRepo {
	t.Helper()
	dir := canonicalTempDir(t)

	repo, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
		},
	})
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}

	r := newTestRepo(t, dir, repo)
	r.setIdentity()
	return r
}

// NewBareRemote initializes an empty bare repository and returns its path.
func NewBareRemote(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(canonicalTempDir(t), "remote.git")

	_, err := gogit.PlainInitWithOptions(dir, &gogit.PlainInitOptions{
		InitOptions: gogit.InitOptions{
			DefaultBranch: plumbing.NewBranchReferenceName(DefaultBranch),
		},
		Bare: true,
	})
	if err != nil {
		t.Fatalf("failed to init bare remote: %v", err)
	}
	return dir
}

// Clone clones remote into a temporary directory. The clone tracks
// origin/DefaultBranch and has a local user identity.
func Clone(t testing.TB, remote string) *TestRepo {
	t.Helper()
	return CloneTo(t, remote, canonicalTempDir(t))
}

// CloneTo clones remote into dir, creating missing parents.
func CloneTo(t testing.TB, remote, dir string) *TestRepo {
	t.Helper()
	repo, err := gogit.PlainClone(dir, false, &gogit.CloneOptions{URL: remote})
	if err != nil {
		t.Fatalf("failed to clone %s: %v", remote, err)
	}

	r := newTestRepo(t, dir, repo)
	r.setIdentity()
	return r
}

func newTestRepo(t testing.TB, dir string, repo *gogit.Repository) *TestRepo {
	return &TestRepo{
		t:    t,
		path: dir,
		repo: repo,
		time: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

// canonicalTempDir resolves symlinks so paths compare equal to what the
// code under test reports.
func canonicalTempDir(t testing.TB) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("resolving temp dir: %v", err)
	}
	return dir
}

func (r *TestRepo) setIdentity() {
	r.t.Helper()
	cfg, err := r.repo.Config()
	if err != nil {
		r.t.Fatalf("reading config: %v", err)
	}
	cfg.User.Name = userName
	cfg.User.Email = userEmail
	if err := r.repo.SetConfig(cfg); err != nil {
		r.t.Fatalf("saving config: %v", err)
	}
}

// Path returns the working tree root.
func (r *TestRepo) Path() string {
	return r.path
}

// Repository exposes the underlying go-git repository.
func (r *TestRepo) Repository() *gogit.Repository {
	return r.repo
}

// WriteFile writes content to name, relative to the working tree root,
// creating parent directories. Nothing is staged.
func (r *TestRepo) WriteFile(name, content string) {
	r.t.Helper()
	path := filepath.Join(r.path, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.t.Fatalf("creating directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		r.t.Fatalf("writing %s: %v", name, err)
	}
}

// ReadFile returns the content of name, relative to the working tree root.
func (r *TestRepo) ReadFile(name string) string {
	r.t.Helper()
	b, err := os.ReadFile(filepath.Join(r.path, filepath.FromSlash(name)))
	if err != nil {
		r.t.Fatalf("reading %s: %v", name, err)
	}
	return string(b)
}

// Exists reports whether name exists in the working tree.
func (r *TestRepo) Exists(name string) bool {
	_, err := os.Lstat(filepath.Join(r.path, filepath.FromSlash(name)))
	return err == nil
}

// CommitFile writes name, stages it and commits. Returns the commit SHA.
func (r *TestRepo) CommitFile(name, content, message string) string {
	r.t.Helper()
	r.WriteFile(name, content)
	r.Stage(name)
	return r.commit(message)
}

// Stage adds name to the index.
func (r *TestRepo) Stage(name string) {
	r.t.Helper()
	wt := r.worktree()
	if _, err := wt.Add(name); err != nil {
		r.t.Fatalf("staging %s: %v", name, err)
	}
}

func (r *TestRepo) commit(message string) string {
	r.t.Helper()
	r.time = r.time.Add(time.Minute)

	hash, err := r.worktree().Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  userName,
			Email: userEmail,
			When:  r.time,
		},
	})
	if err != nil {
		r.t.Fatalf("committing: %v", err)
	}
	return hash.String()
}

// AddRemote registers url as the origin remote.
func (r *TestRepo) AddRemote(url string) {
	r.t.Helper()
	_, err := r.repo.CreateRemote(&gogitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})
	if err != nil {
		r.t.Fatalf("adding remote: %v", err)
	}
}

// PushBranch pushes branch to origin and makes origin/branch its upstream.
func (r *TestRepo) PushBranch(branch string) {
	r.t.Helper()
	ref := plumbing.NewBranchReferenceName(branch)
	err := r.repo.Push(&gogit.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gogitconfig.RefSpec{gogitconfig.RefSpec(ref + ":" + ref)},
	})
	if err != nil && err != gogit.NoErrAlreadyUpToDate {
		r.t.Fatalf("pushing %s: %v", branch, err)
	}
	r.SetUpstream(branch, "origin", branch)
}

// SetUpstream configures branch to track remote/merge. A remote of "."
// tracks a local branch.
func (r *TestRepo) SetUpstream(branch, remote, merge string) {
	r.t.Helper()
	cfg, err := r.repo.Config()
	if err != nil {
		r.t.Fatalf("reading config: %v", err)
	}
	cfg.Branches[branch] = &gogitconfig.Branch{
		Name:   branch,
		Remote: remote,
		Merge:  plumbing.NewBranchReferenceName(merge),
	}
	if err := r.repo.SetConfig(cfg); err != nil {
		r.t.Fatalf("saving config: %v", err)
	}
}

// CreateBranch creates a branch pointing at sha without checking it out.
func (r *TestRepo) CreateBranch(name, sha string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.NewBranchReferenceName(name), plumbing.NewHash(sha))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("creating branch %s: %v", name, err)
	}
}

// DeleteReference removes a ref, e.g. "refs/remotes/origin/main".
func (r *TestRepo) DeleteReference(name string) {
	r.t.Helper()
	if err := r.repo.Storer.RemoveReference(plumbing.ReferenceName(name)); err != nil {
		r.t.Fatalf("removing %s: %v", name, err)
	}
}

// Checkout switches HEAD to an existing branch.
func (r *TestRepo) Checkout(branch string) {
	r.t.Helper()
	err := r.worktree().Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(branch),
	})
	if err != nil {
		r.t.Fatalf("checking out %s: %v", branch, err)
	}
}

// Detach points HEAD directly at sha.
func (r *TestRepo) Detach(sha string) {
	r.t.Helper()
	ref := plumbing.NewHashReference(plumbing.HEAD, plumbing.NewHash(sha))
	if err := r.repo.Storer.SetReference(ref); err != nil {
		r.t.Fatalf("detaching HEAD: %v", err)
	}
}

// HeadSha returns the current HEAD commit SHA.
func (r *TestRepo) HeadSha() string {
	r.t.Helper()
	head, err := r.repo.Head()
	if err != nil {
		r.t.Fatalf("getting HEAD: %v", err)
	}
	return head.Hash().String()
}

// RefSha returns the SHA a reference resolves to.
func (r *TestRepo) RefSha(name string) string {
	r.t.Helper()
	ref, err := r.repo.Reference(plumbing.ReferenceName(name), true)
	if err != nil {
		r.t.Fatalf("resolving %s: %v", name, err)
	}
	return ref.Hash().String()
}

func (r *TestRepo) worktree() *gogit.Worktree {
	r.t.Helper()
	wt, err := r.repo.Worktree()
	if err != nil {
		r.t.Fatalf("getting worktree: %v", err)
	}
	return wt
}

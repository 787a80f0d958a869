package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MyCarrier-DevOps/go-gitfleet/internal/testutil"
)

func TestRootCmd_HasExpectedFlags(t *testing.T) {
	flags := rootCmd.PersistentFlags()

	require.NotNil(t, flags.Lookup("config"))
	require.NotNil(t, flags.Lookup("log-level"))
	require.NotNil(t, flags.Lookup("log-format"))
	require.NotNil(t, flags.Lookup("output"))
	require.NotNil(t, flags.Lookup("concurrency"))
	require.NotNil(t, flags.Lookup("metrics-textfile"))
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	var names []string
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"scan", "status", "info", "branches", "commit", "push", "fetch", "pull", "discard", "version"} {
		require.Contains(t, names, want)
	}
}

func TestRootCmd_UnknownOutputFormat(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.CommitFile("a.txt", "a", "first")

	_, _, err := execute(t, "status", repo.Path(), "--output", "yaml")
	require.ErrorContains(t, err, "unknown output format")
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitfleet.yml")
	require.NoError(t, os.WriteFile(path, []byte("scan:\n  max-depth: 99\n"), 0o644))

	_, _, err := execute(t, "scan", t.TempDir(), "--config", path)
	require.ErrorContains(t, err, "scan.max-depth must be at most 50")
}

func TestRootCmd_ConfigFileSetsLogLevel(t *testing.T) {
	a := testutil.NewTestRepo(t)
	a.CommitFile("a.txt", "a", "first")
	b := testutil.NewTestRepo(t)
	b.CommitFile("b.txt", "b", "first")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitfleet.yml"), []byte("log:\n  level: debug\n  format: json\n"), 0o644))
	t.Chdir(dir)

	_, stderr, err := execute(t, "info", a.Path(), b.Path())
	require.NoError(t, err)
	require.Contains(t, stderr, `"msg":"starting batch"`)

	// An explicit flag beats the file.
	_, stderr, err = execute(t, "info", a.Path(), b.Path(), "--log-level", "error")
	require.NoError(t, err)
	require.Empty(t, stderr)
}

func TestRootCmd_EnvSetsLogLevel(t *testing.T) {
	t.Setenv("GITFLEET_LOG_LEVEL", "debug")
	resetFlags(rootCmd)
	cfg, err := loadConfig(infoCmd)
	require.NoError(t, err)
	require.Equal(t, "debug", *cfg.Log.Level)
}

func TestRootCmd_MetricsTextfile(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	repo.CommitFile("a.txt", "a", "first")
	path := filepath.Join(t.TempDir(), "gitfleet.prom")

	_, _, err := execute(t, "status", repo.Path(), "--metrics-textfile", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "gitfleet_repository_operations_total")
}

func TestRootCmd_MetricsWrittenOnFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gitfleet.prom")

	_, _, err := execute(t, "status", t.TempDir(), "--metrics-textfile", path)
	require.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `result="failure"`)
}

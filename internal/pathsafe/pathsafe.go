// Package pathsafe normalizes filesystem paths and refuses operating-system
// critical locations before anything walks them.
package pathsafe

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
)

// ErrPath is returned for paths that cannot be resolved or are not allowed.
var ErrPath = errors.New("path error")

// systemPrefixes are compared against the canonical path string.
// This is a plain prefix test, not a mount or permission check.
var systemPrefixes = []string{
	"/etc",
	"/sys",
	"/proc",
	"/dev",
	"/boot",
	"/System",
	"/private",
	"/var",
	"/usr/bin",
	"/usr/sbin",
	`C:\Windows`,
	`C:\Program Files`,
	`C:\Program Files (x86)`,
}

// Normalize returns path unchanged when it is absolute, otherwise joined
// with the current working directory.
func Normalize(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("%w: resolving working directory: %w", ErrPath, err)
	}
	return filepath.Join(cwd, path), nil
}

// Canonicalize resolves symlinks and relative components. The path must exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: invalid or inaccessible path", ErrPath)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: invalid or inaccessible path", ErrPath)
	}
	return resolved, nil
}

// AssertNotSystemRoot fails when path starts with a denylisted system prefix.
func AssertNotSystemRoot(path string) error {
	prefix, found := lo.Find(systemPrefixes, func(p string) bool {
		return strings.HasPrefix(path, p)
	})
	if found {
		return fmt.Errorf("%w: refusing to scan system directory %s", ErrPath, prefix)
	}
	return nil
}

// Resolve normalizes path, checks that it exists, canonicalizes it and
// rejects system locations.
func Resolve(path string) (string, error) {
	normalized, err := Normalize(path)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(normalized); err != nil {
		return "", fmt.Errorf("%w: path does not exist: %s", ErrPath, path)
	}
	canonical, err := Canonicalize(normalized)
	if err != nil {
		return "", err
	}
	if err := AssertNotSystemRoot(canonical); err != nil {
		return "", err
	}
	return canonical, nil
}

// RepoName returns the last segment of path, or "unknown" for a root.
func RepoName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if base == "" || base == "." || base == string(filepath.Separator) {
		return "unknown"
	}
	return base
}

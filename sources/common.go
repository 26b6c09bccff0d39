// Package sources discovers the documents `nudge check` evaluates rules
// against.
package sources

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/attunehq/nudge/logging"
)

// skipDirs are never descended into.
var skipDirs = []string{".git", ".hg", ".svn", "node_modules", ".venv", "__pycache__"}

// ShouldSkipDir reports whether a directory is tooling or dependency output
// that rules should not be applied to. The walk root itself is never
// skipped.
func ShouldSkipDir(root, path string) bool {
	if path == root {
		return false
	}
	name := filepath.Base(path)
	if slices.Contains(skipDirs, name) {
		logging.Trace().Str("path", path).Msg("skipping directory")
		return true
	}
	return false
}

// RelPath returns path relative to root with forward slashes, or the
// cleaned path when it is not under root.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(filepath.Clean(path))
	}
	return filepath.ToSlash(rel)
}

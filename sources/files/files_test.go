package files

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/fatih/semgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge/sources"
	"github.com/attunehq/nudge/sources/file"
)

func write(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func collect(t *testing.T, s *Files) map[string]string {
	t.Helper()
	var (
		mu   sync.Mutex
		docs = map[string]string{}
	)
	err := s.Documents(context.Background(), func(doc file.Document) error {
		mu.Lock()
		defer mu.Unlock()
		docs[sources.RelPath(s.Path, doc.Path)] = doc.Content
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, s.Sema.Wait())
	return docs
}

func TestFiles_Documents(t *testing.T) {
	root := t.TempDir()
	write(t, root, "main.go", "package main\n")
	write(t, root, "pkg/util.go", "package pkg\n")
	write(t, root, ".git/config", "[core]\n")
	write(t, root, "node_modules/x/index.js", "module.exports = 1\n")
	write(t, root, "logo.png", "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	write(t, root, "big.txt", "0123456789abcdef")

	s := &Files{Path: root, MaxFileSize: 15, Sema: semgroup.NewGroup(context.Background(), 4)}
	docs := collect(t, s)

	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	assert.Equal(t, []string{"main.go", "pkg/util.go"}, keys)
	assert.Equal(t, "package pkg\n", docs["pkg/util.go"])
}

func TestFiles_Symlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	write(t, outside, "target.txt", "linked\n")
	if err := os.Symlink(filepath.Join(outside, "target.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	s := &Files{Path: root, Sema: semgroup.NewGroup(context.Background(), 2)}
	assert.Empty(t, collect(t, s))

	s = &Files{Path: root, FollowSymlinks: true, Sema: semgroup.NewGroup(context.Background(), 2)}
	assert.Equal(t, map[string]string{"link.txt": "linked\n"}, collect(t, s))
}

func TestFiles_MissingRoot(t *testing.T) {
	s := &Files{Path: filepath.Join(t.TempDir(), "nope"), Sema: semgroup.NewGroup(context.Background(), 1)}
	assert.Empty(t, collect(t, s))
}

func TestFiles_SingleFile(t *testing.T) {
	root := t.TempDir()
	write(t, root, "only.rs", "fn main() {}\n")
	write(t, root, "other.rs", "fn other() {}\n")

	s := &Files{Path: filepath.Join(root, "only.rs"), Sema: semgroup.NewGroup(context.Background(), 1)}
	assert.Equal(t, map[string]string{".": "fn main() {}\n"}, collect(t, s))
}

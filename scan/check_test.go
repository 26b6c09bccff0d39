package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/semgroup"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/sources/file"
	"github.com/attunehq/nudge/sources/files"
)

const checkRules = `version: 1
rules:
  - name: no-unwrap
    description: Prefer ? over unwrap
    message: "avoid {{ $0 }}"
    on:
      - hook: PreToolUse
        tool: Write
        file: "**/*.rs"
        content:
          - kind: Regex
            pattern: "\\.unwrap\\(\\)"
  - name: prompt-rule
    message: never checked on files
    on:
      - hook: UserPromptSubmit
`

func writeTree(t *testing.T, root string, tree map[string]string) {
	t.Helper()
	for rel, content := range tree {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func TestChecker_Run(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/main.rs":    "fn main() {\n    a.unwrap();\n    b.unwrap(); // nudge:allow\n}\n",
		"src/lib.rs":     "pub fn f() { c.unwrap() }\n",
		"src/ignored.rs": "fn g() { d.unwrap() }\n",
		"README.md":      "call .unwrap() freely\n",
	})

	c := &Checker{
		Registry: NewRegistry(compileRules(t, checkRules), 2),
		Root:     root,
		Ignore:   Ignore{"src/ignored.rs:no-unwrap:1": {}},
	}
	src := &files.Files{Path: root, Sema: semgroup.NewGroup(context.Background(), 2)}

	issues, err := c.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, issues, 2)

	assert.Equal(t, "src/lib.rs", issues[0].Path)
	assert.Equal(t, 1, issues[0].StartLine)
	assert.Equal(t, "Prefer ? over unwrap", issues[0].Description)
	assert.Equal(t, "avoid .unwrap()", issues[0].Message)

	assert.Equal(t, "src/main.rs", issues[1].Path)
	assert.Equal(t, 2, issues[1].StartLine)
	assert.Equal(t, 6, issues[1].StartColumn)
	assert.Equal(t, "    a.unwrap();", issues[1].Line)
}

func TestChecker_AllowSignatureAndBaseline(t *testing.T) {
	root := t.TempDir()
	content := "fn main() { b.unwrap(); } // nudge:allow\n"
	c := &Checker{Registry: NewRegistry(compileRules(t, checkRules), 1), Root: root}

	doc := docAt(root, "a.rs", content)
	assert.Empty(t, c.CheckDocument(context.Background(), doc))

	c.IgnoreAllowSignature = true
	issues := c.CheckDocument(context.Background(), doc)
	require.Len(t, issues, 1)

	c.Baseline = []nudge.Issue{issues[0]}
	assert.Empty(t, c.CheckDocument(context.Background(), doc))
}

func docAt(root, rel, content string) file.Document {
	return file.Document{Path: filepath.Join(root, rel), Content: content}
}

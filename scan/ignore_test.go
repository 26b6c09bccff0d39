package scan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge"
)

func TestLoadIgnoreFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, IgnoreFileName)
	require.NoError(t, os.WriteFile(path, []byte(`# generated
src/main.rs:no-unwrap:12

src\win\path.rs:no-unwrap:3
C:/abs/path.rs:rule:7
not-an-entry
bad:rule:line
src/lib.rs!no-unwrap!deadbeef#L1-1#C2-10
`), 0o644))

	ignore, err := LoadIgnoreFile(path)
	require.NoError(t, err)
	assert.Equal(t, Ignore{
		"src/main.rs:no-unwrap:12":                 {},
		"src/win/path.rs:no-unwrap:3":              {},
		"C:/abs/path.rs:rule:7":                    {},
		"src/lib.rs!no-unwrap!deadbeef#L1-1#C2-10": {},
	}, ignore)
}

func TestIgnore_Contains(t *testing.T) {
	issue := nudge.NewIssue("no-unwrap", "", "src/main.rs", "fn main() {\n    x.unwrap();\n}", "m", nudge.Span{Start: 17, End: 26})
	require.Equal(t, 2, issue.StartLine)

	assert.True(t, Ignore{"src/main.rs:no-unwrap:2": {}}.Contains(issue))
	assert.True(t, Ignore{issue.Fingerprint: {}}.Contains(issue))
	assert.False(t, Ignore{"src/main.rs:no-unwrap:3": {}}.Contains(issue))
	assert.False(t, Ignore{}.Contains(issue))
}

func TestLoadIgnoreFiles(t *testing.T) {
	ignoreDir := t.TempDir()
	sourceDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ignoreDir, IgnoreFileName), []byte("a.go:r:1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(sourceDir, IgnoreFileName), []byte("b.go:r:2\n"), 0o644))

	ignore := LoadIgnoreFiles(ignoreDir, sourceDir)
	assert.Len(t, ignore, 2)

	explicit := filepath.Join(ignoreDir, "custom")
	require.NoError(t, os.WriteFile(explicit, []byte("c.go:r:3\n"), 0o644))
	ignore = LoadIgnoreFiles(explicit, sourceDir)
	assert.Equal(t, Ignore{"c.go:r:3": {}, "b.go:r:2": {}}, ignore)

	assert.Empty(t, LoadIgnoreFiles(t.TempDir(), t.TempDir()))
}

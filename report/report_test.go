package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge"
)

var simpleIssue = nudge.Issue{
	Rule:        "no-inline-imports",
	Description: "Imports belong at the top",
	Path:        "src/main.rs",
	StartLine:   2,
	EndLine:     2,
	StartColumn: 5,
	EndColumn:   16,
	Line:        "    use std::io;",
	Match:       "use std::io;",
	Message:     "Move it, \"now\"",
	Fingerprint: "src/main.rs!no-inline-imports!deadbeef#L2-2#C5-16",
}

func writeReport(t *testing.T, r Reporter, issues []nudge.Issue) string {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "report"))
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, r.Write(f, issues))
	got, err := os.ReadFile(f.Name())
	require.NoError(t, err)
	return string(got)
}

func TestNew(t *testing.T) {
	r, err := New("JSON")
	require.NoError(t, err)
	assert.IsType(t, &JsonReporter{}, r)

	r, err = New("csv")
	require.NoError(t, err)
	assert.IsType(t, &CsvReporter{}, r)

	_, err = New("sarif")
	assert.EqualError(t, err, `unknown report format "sarif" (expected json or csv)`)
}

func TestJsonReporter(t *testing.T) {
	got := writeReport(t, &JsonReporter{}, []nudge.Issue{simpleIssue})

	var decoded []nudge.Issue
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	require.Len(t, decoded, 1)
	want := simpleIssue
	want.Line = ""
	assert.Equal(t, want, decoded[0])
	assert.NotContains(t, got, `"Line"`)

	assert.Equal(t, "[]\n", writeReport(t, &JsonReporter{}, nil))
}

func TestCsvReporter(t *testing.T) {
	got := writeReport(t, &CsvReporter{}, []nudge.Issue{simpleIssue})
	assert.Equal(t,
		"Rule,Description,File,Match,StartLine,EndLine,StartColumn,EndColumn,Message,Fingerprint\n"+
			"no-inline-imports,Imports belong at the top,src/main.rs,use std::io;,2,2,5,16,\"Move it, \"\"now\"\"\",src/main.rs!no-inline-imports!deadbeef#L2-2#C5-16\n",
		got)

	assert.Empty(t, writeReport(t, &CsvReporter{}, nil))
}

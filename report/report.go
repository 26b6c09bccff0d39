// Package report renders evaluation results: the Claude Code hook envelope,
// compiler-style annotated snippets, and issue reports for the check
// command.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/attunehq/nudge"
)

// Reporter writes the issues found by a check run.
type Reporter interface {
	Write(w io.WriteCloser, issues []nudge.Issue) error
}

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// New returns the reporter for format.
func New(format string) (Reporter, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return &JsonReporter{}, nil
	case FormatCSV:
		return &CsvReporter{}, nil
	default:
		return nil, fmt.Errorf("unknown report format %q (expected json or csv)", format)
	}
}

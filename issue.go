package nudge

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Issue is a rule violation found by scanning a file on disk rather than an
// intercepted agent action.
type Issue struct {
	// Rule is the name of the rule that fired
	Rule        string
	Description string
	Path        string

	// 1-based line and column numbers within the file
	StartLine   int
	EndLine     int
	StartColumn int
	EndColumn   int

	// Line is the full first line containing the violation.
	Line string `json:"-"`

	// Match is the violating text
	Match   string
	Message string

	// unique identifier
	Fingerprint string
}

// NewIssue locates a violation span inside content and fills in the
// position fields.
func NewIssue(rule, description, path, content, message string, span Span) Issue {
	issue := Issue{
		Rule:        rule,
		Description: description,
		Path:        path,
		Match:       span.Text(content),
		Message:     message,
	}
	AddLocationToIssue(&issue, content, span)
	AddFingerprintToIssue(&issue)
	return issue
}

// AddLocationToIssue computes line and column numbers for span.
func AddLocationToIssue(issue *Issue, content string, span Span) {
	before := content[:span.Start]
	issue.StartLine = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	issue.StartColumn = span.Start - lineStart + 1

	matched := content[span.Start:span.End]
	issue.EndLine = issue.StartLine + strings.Count(matched, "\n")
	endLineStart := lineStart
	if i := strings.LastIndexByte(content[:span.End], '\n'); i+1 > lineStart {
		endLineStart = i + 1
	}
	issue.EndColumn = span.End - endLineStart

	lineEnd := strings.IndexByte(content[lineStart:], '\n')
	if lineEnd < 0 {
		issue.Line = content[lineStart:]
	} else {
		issue.Line = content[lineStart : lineStart+lineEnd]
	}
}

var (
	issueMatchStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f05c07"))
	issueRuleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f5d445"))
)

// Print writes a one-line summary, `file:line [rule] message`, followed by
// the offending line.
func (i Issue) Print(w io.Writer, noColor bool) {
	rule := "[" + i.Rule + "]"
	line := strings.TrimRight(i.Line, "\r")
	if !noColor {
		rule = issueRuleStyle.Render(rule)
		if first, _, _ := strings.Cut(i.Match, "\n"); first != "" {
			line = strings.Replace(line, first, issueMatchStyle.Render(first), 1)
		}
	}

	message, _, _ := strings.Cut(i.Message, "\n")
	_, _ = fmt.Fprintf(w, "%s:%d %s %s\n", i.Path, i.StartLine, rule, message)
	if strings.TrimSpace(line) != "" {
		_, _ = fmt.Fprintf(w, "    %s\n", strings.TrimSpace(line))
	}
}

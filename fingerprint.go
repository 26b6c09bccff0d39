package nudge

import (
	"fmt"
	"path/filepath"

	"github.com/zeebo/xxh3"
)

// AddFingerprintToIssue computes and sets the fingerprint on an issue.
//
// The fingerprint is deterministic for the same file, rule and matched text:
//
//	{path}!{rule}!{match_hash}#L{startLine}-{endLine}#C{startCol}-{endCol}
//
// match_hash is the first 8 hex chars of the XXH3 hash of the matched text.
// Paths always use forward slashes so fingerprints are stable across
// platforms.
func AddFingerprintToIssue(issue *Issue) {
	issue.Fingerprint = fmt.Sprintf("%s!%s!%s#L%d-%d#C%d-%d",
		filepath.ToSlash(issue.Path),
		issue.Rule,
		matchHash(issue.Match),
		issue.StartLine, issue.EndLine,
		issue.StartColumn, issue.EndColumn,
	)
}

// IgnoreKey is the `file:rule:line` form listed in .nudgeignore files.
func (i Issue) IgnoreKey() string {
	return fmt.Sprintf("%s:%s:%d", filepath.ToSlash(i.Path), i.Rule, i.StartLine)
}

func matchHash(s string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(s))[:8]
}

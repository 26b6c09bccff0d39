package scan

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/sources"
	"github.com/attunehq/nudge/sources/file"
	"github.com/attunehq/nudge/sources/files"
)

// AllowSignature on a line suppresses issues reported on it.
const AllowSignature = "nudge:allow"

// Checker applies a registry to files on disk by treating each file as if
// the agent were writing it.
type Checker struct {
	Registry *Registry

	// Root is the directory issue paths are reported relative to.
	Root string

	Ignore   Ignore
	Baseline []nudge.Issue

	// IgnoreAllowSignature reports issues even on lines marked nudge:allow.
	IgnoreAllowSignature bool
}

// CheckDocument evaluates one document and returns its unsuppressed issues.
func (c *Checker) CheckDocument(ctx context.Context, doc file.Document) []nudge.Issue {
	rel := sources.RelPath(c.Root, doc.Path)
	ev := nudge.ToolEvent(nudge.ToolWrite, rel, doc.Content, c.Root)
	resp := c.Registry.Evaluate(ctx, ev)

	var issues []nudge.Issue
	for _, o := range resp.Outcomes {
		var description string
		if rule, ok := c.Registry.Rule(o.Rule); ok {
			description = rule.Description
		}
		if len(o.Violations) == 0 {
			logging.Debug().Str("rule", o.Rule).Str("path", rel).Msg("rule fired without a location, not reported")
			continue
		}
		for _, v := range o.Violations {
			issue := nudge.NewIssue(o.Rule, description, rel, doc.Content, v.Message, v.Span)
			if c.suppressed(issue) {
				continue
			}
			issues = append(issues, issue)
		}
	}
	return issues
}

func (c *Checker) suppressed(issue nudge.Issue) bool {
	if !c.IgnoreAllowSignature && strings.Contains(issue.Line, AllowSignature) {
		logging.Trace().Str("fingerprint", issue.Fingerprint).Msg("skipping issue: allow signature")
		return true
	}
	if c.Ignore.Contains(issue) {
		logging.Debug().Str("fingerprint", issue.Fingerprint).Msg("skipping issue: ignore file")
		return true
	}
	if len(c.Baseline) > 0 && !IsNew(issue, c.Baseline) {
		logging.Debug().Str("fingerprint", issue.Fingerprint).Msg("skipping issue: in baseline")
		return true
	}
	return false
}

// Run checks every document from src and returns issues sorted by path
// and position.
func (c *Checker) Run(ctx context.Context, src *files.Files) ([]nudge.Issue, error) {
	var (
		mu     sync.Mutex
		issues []nudge.Issue
	)

	err := src.Documents(ctx, func(doc file.Document) error {
		found := c.CheckDocument(ctx, doc)
		if len(found) > 0 {
			mu.Lock()
			issues = append(issues, found...)
			mu.Unlock()
		}
		return nil
	})
	if werr := src.Sema.Wait(); err == nil {
		err = werr
	}

	slices.SortFunc(issues, func(a, b nudge.Issue) int {
		return cmp.Or(
			cmp.Compare(a.Path, b.Path),
			cmp.Compare(a.StartLine, b.StartLine),
			cmp.Compare(a.StartColumn, b.StartColumn),
			cmp.Compare(a.Rule, b.Rule),
		)
	})
	return issues, err
}

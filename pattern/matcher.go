// Package pattern locates spans of interest in text. A Matcher is one of a
// fixed set of kinds: a regex-or-literal text pattern, a tree-sitter
// structural query, or an external command.
package pattern

import (
	"context"
	"fmt"
	"time"

	"github.com/attunehq/nudge"
)

// Kind enumerates matcher kinds as spelled in rule files.
type Kind uint8

const (
	KindRegex Kind = iota
	KindSyntaxTree
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindRegex:
		return "Regex"
	case KindSyntaxTree:
		return "SyntaxTree"
	case KindExternal:
		return "External"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind accepts the rule-file spelling of a matcher kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "Regex":
		return KindRegex, nil
	case "SyntaxTree":
		return KindSyntaxTree, nil
	case "External":
		return KindExternal, nil
	default:
		return 0, fmt.Errorf("unknown matcher kind %q (expected Regex, SyntaxTree or External)", s)
	}
}

// Matcher is a compiled content matcher. Exactly one of Text, SyntaxTree
// or External is set, according to Kind.
type Matcher struct {
	Kind       Kind
	Text       *Text
	SyntaxTree *SyntaxTree
	External   *External

	// Suggestion is a template rendered from a match's captures and exposed
	// to the rule message as {{ $suggestion }}.
	Suggestion string
}

// Regex builds a text matcher.
func Regex(s string) Matcher {
	return Matcher{Kind: KindRegex, Text: NewText(s)}
}

// Query builds a structural matcher.
func Query(language Language, query string) (Matcher, error) {
	st, err := NewSyntaxTree(language, query)
	if err != nil {
		return Matcher{}, err
	}
	return Matcher{Kind: KindSyntaxTree, SyntaxTree: st}, nil
}

// Command builds an external matcher.
func Command(argv []string, timeout time.Duration) (Matcher, error) {
	ext, err := NewExternal(argv, timeout)
	if err != nil {
		return Matcher{}, err
	}
	return Matcher{Kind: KindExternal, External: ext}, nil
}

// Result is one matcher evaluation.
type Result struct {
	Matches nudge.Matches

	// Extra holds values the matcher contributes to message templates,
	// such as the command line of an external matcher.
	Extra map[string]string
}

// Evaluate runs the matcher against target. cache may be nil.
func (m Matcher) Evaluate(ctx context.Context, target string, cache *ResultCache) (Result, error) {
	switch m.Kind {
	case KindRegex:
		return Result{Matches: m.Text.FindAll(target)}, nil
	case KindSyntaxTree:
		matches, err := m.SyntaxTree.FindAll(ctx, target)
		return Result{Matches: matches}, err
	case KindExternal:
		matches, out, err := m.External.FindAll(ctx, target, cache)
		extra := map[string]string{
			"command": m.External.Command(),
			"stdout":  out.Stdout,
			"stderr":  out.Stderr,
		}
		return Result{Matches: matches, Extra: extra}, err
	default:
		return Result{}, fmt.Errorf("unknown matcher kind %s", m.Kind)
	}
}

// Labels lists the capture labels the matcher can produce.
func (m Matcher) Labels() []string {
	switch m.Kind {
	case KindRegex:
		return m.Text.Labels()
	case KindSyntaxTree:
		return m.SyntaxTree.Labels()
	default:
		return nil
	}
}

func (m Matcher) String() string {
	switch m.Kind {
	case KindRegex:
		return fmt.Sprintf("Regex(%s)", m.Text)
	case KindSyntaxTree:
		return fmt.Sprintf("SyntaxTree[%s](%s)", m.SyntaxTree.Language(), m.SyntaxTree)
	case KindExternal:
		return fmt.Sprintf("External(%s)", m.External)
	default:
		return m.Kind.String()
	}
}

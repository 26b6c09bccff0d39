package pattern

import (
	"context"
	"errors"
	"fmt"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/logging"
	sitter "github.com/smacker/go-tree-sitter"
)

// ErrCaptureIndex is returned when the query engine reports a capture index
// outside the query's declared capture names.
var ErrCaptureIndex = errors.New("capture index out of range")

// SyntaxTree matches a tree-sitter query against parsed source. The query
// is compiled once and shared by every evaluation.
type SyntaxTree struct {
	language Language
	source   string
	query    *sitter.Query
	names    []string
}

// NewSyntaxTree compiles query for language. Queries that do not compile
// against the grammar are rejected here, never at evaluation time.
func NewSyntaxTree(language Language, query string) (*SyntaxTree, error) {
	grammar := language.Grammar()
	if grammar == nil {
		return nil, fmt.Errorf("unsupported language %q", language)
	}

	q, err := sitter.NewQuery([]byte(query), grammar)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", language, err)
	}

	names := make([]string, q.CaptureCount())
	for i := range names {
		names[i] = q.CaptureNameForId(uint32(i))
	}

	return &SyntaxTree{
		language: language,
		source:   query,
		query:    q,
		names:    names,
	}, nil
}

func (s *SyntaxTree) Language() Language {
	return s.language
}

func (s *SyntaxTree) String() string {
	return s.source
}

// Labels returns the capture names declared by the query.
func (s *SyntaxTree) Labels() []string {
	return s.names
}

// FindAll runs the query over target. Source that fails to parse cleanly,
// such as a half-written edit, yields no matches rather than an error.
func (s *SyntaxTree) FindAll(ctx context.Context, target string) (nudge.Matches, error) {
	tree, err := Parse(ctx, s.language, target)
	if err != nil {
		if ctx.Err() != nil {
			return nudge.NoMatches(), ctx.Err()
		}
		logging.Debug().Err(err).Str("language", s.language.String()).Msg("parse failed, treating as no match")
		return nudge.NoMatches(), nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		logging.Trace().Str("language", s.language.String()).Msg("source has syntax errors, treating as no match")
		return nudge.NoMatches(), nil
	}

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(s.query, root)

	input := []byte(target)
	var matches []nudge.Match
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, input)

		captures := make([]nudge.LabeledSpan, 0, len(m.Captures))
		for _, c := range m.Captures {
			idx := int(c.Index)
			if idx >= len(s.names) {
				return nudge.NoMatches(), fmt.Errorf("%w: %d (query declares %d captures)", ErrCaptureIndex, idx, len(s.names))
			}
			captures = append(captures, nudge.LabeledSpan{
				Label: s.names[idx],
				Span:  nudge.Span{Start: int(c.Node.StartByte()), End: int(c.Node.EndByte())},
			})
		}

		if match, ok := nudge.MatchFromCaptures(captures); ok {
			matches = append(matches, match)
		}
	}

	return nudge.LabeledMatches(matches), nil
}

// Parse parses source with the grammar for language. The caller must Close
// the returned tree.
func Parse(ctx context.Context, language Language, source string) (*sitter.Tree, error) {
	grammar := language.Grammar()
	if grammar == nil {
		return nil, fmt.Errorf("unsupported language %q", language)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, []byte(source))
	if err != nil {
		return nil, fmt.Errorf("parse %s source: %w", language, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("parse %s source: no tree produced", language)
	}
	return tree, nil
}

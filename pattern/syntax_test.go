package pattern

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge"
)

func TestSyntaxTree_InlineUse(t *testing.T) {
	st, err := NewSyntaxTree(Rust, "(function_item body: (block (use_declaration) @use))")
	require.NoError(t, err)
	assert.Equal(t, []string{"use"}, st.Labels())

	source := "fn main() {\n    use std::io;\n}"
	got, err := st.FindAll(context.Background(), source)
	require.NoError(t, err)
	require.Equal(t, nudge.MatchesLabeled, got.Kind())

	matches := got.Matches()
	require.Len(t, matches, 1)
	require.Len(t, matches[0].Captures, 1)
	capture := matches[0].Captures[0]
	assert.Equal(t, "use", capture.Label)
	assert.True(t, strings.Contains(capture.Span.Text(source), "std::io"))
	assert.Equal(t, capture.Span, matches[0].Span)

	got, err = st.FindAll(context.Background(), "use std::io;\n\nfn main() {}")
	require.NoError(t, err)
	assert.True(t, got.IsEmpty())
}

func TestSyntaxTree_IncompleteSource(t *testing.T) {
	queries := map[Language]string{
		Rust:       "(function_item) @f",
		Go:         "(function_declaration) @f",
		Python:     "(function_definition) @f",
		JavaScript: "(function_declaration) @f",
		TypeScript: "(function_declaration) @f",
	}
	for lang, q := range queries {
		t.Run(lang.String(), func(t *testing.T) {
			st, err := NewSyntaxTree(lang, q)
			require.NoError(t, err)
			for _, src := range []string{"fn main(", "func main(", "def f(:", "function f( {", "}}}"} {
				got, err := st.FindAll(context.Background(), src)
				require.NoError(t, err)
				assert.Equal(t, nudge.MatchesNone, got.Kind(), "source %q", src)
			}
		})
	}
}

func TestSyntaxTree_MultipleCapturesAndOrder(t *testing.T) {
	st, err := NewSyntaxTree(Go, `(function_declaration name: (identifier) @name parameters: (parameter_list) @params)`)
	require.NoError(t, err)

	source := "package p\n\nfunc b(x int) {}\n\nfunc a() {}\n"
	got, err := st.FindAll(context.Background(), source)
	require.NoError(t, err)

	matches := got.Matches()
	require.Len(t, matches, 2)
	assert.Less(t, matches[0].Span.Start, matches[1].Span.Start)

	name, ok := matches[0].Capture("name")
	require.True(t, ok)
	assert.Equal(t, "b", name.Span.Text(source))
	params, ok := matches[0].Capture("params")
	require.True(t, ok)
	assert.Equal(t, "(x int)", params.Span.Text(source))
	assert.Equal(t, nudge.Span{Start: name.Span.Start, End: params.Span.End}, matches[0].Span)
}

func TestSyntaxTree_Predicates(t *testing.T) {
	st, err := NewSyntaxTree(Python, `((call function: (identifier) @fn) (#eq? @fn "print"))`)
	require.NoError(t, err)

	got, err := st.FindAll(context.Background(), "print(1)\nlen(x)\nprint(2)\n")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
}

func TestNewSyntaxTree_Errors(t *testing.T) {
	_, err := NewSyntaxTree(Rust, "(function_item")
	assert.Error(t, err)

	_, err = NewSyntaxTree(Rust, "(not_a_rust_node) @x")
	assert.Error(t, err)

	_, err = NewSyntaxTree(Language("haskell"), "(x) @x")
	assert.ErrorContains(t, err, "unsupported language")
}

func TestParseLanguage(t *testing.T) {
	tests := map[string]Language{
		"rust":   Rust,
		"RS":     Rust,
		"golang": Go,
		"ts":     TypeScript,
		"tsx":    TSX,
		"c++":    Cpp,
	}
	for in, want := range tests {
		got, err := ParseLanguage(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseLanguage("haskell")
	assert.ErrorContains(t, err, "unsupported language")
	assert.Contains(t, SupportedLanguages(), "rust")
	assert.NotNil(t, Rust.Grammar())
}

package pattern

import (
	"testing"
	"unicode/utf8"

	"github.com/lucasjones/reggen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge"
)

func TestText_RegexOrLiteral(t *testing.T) {
	anything := NewText(".*")
	assert.False(t, anything.IsLiteral())
	assert.True(t, anything.IsMatch(""))
	assert.True(t, anything.IsMatch("whatever"))

	literal := NewText("a(")
	assert.True(t, literal.IsLiteral())
	assert.True(t, literal.IsMatch("call a( now"))
	assert.False(t, literal.IsMatch("call a now"))
	assert.False(t, literal.IsMatch("A("))
	assert.Equal(t, "a(", literal.String())
}

func TestText_FindAll(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		target  string
		kind    nudge.MatchesKind
		spans   []nudge.Span
	}{
		{
			name:    "no groups",
			pattern: `\d+`,
			target:  "a1 b22 c333",
			kind:    nudge.MatchesUnlabeled,
			spans:   []nudge.Span{{Start: 1, End: 2}, {Start: 4, End: 6}, {Start: 8, End: 11}},
		},
		{
			name:    "named groups",
			pattern: `(?P<key>\w+)=(?P<value>\w+)`,
			target:  "a=1 b=2",
			kind:    nudge.MatchesLabeled,
			spans:   []nudge.Span{{Start: 0, End: 3}, {Start: 4, End: 7}},
		},
		{
			name:    "literal fallback",
			pattern: "f(",
			target:  "f(f(x)",
			kind:    nudge.MatchesUnlabeled,
			spans:   []nudge.Span{{Start: 0, End: 2}, {Start: 2, End: 4}},
		},
		{
			name:    "literal overlaps are dropped",
			pattern: "aa(",
			target:  "aa(aa(",
			kind:    nudge.MatchesUnlabeled,
			spans:   []nudge.Span{{Start: 0, End: 3}, {Start: 3, End: 6}},
		},
		{
			name:    "inline flags",
			pattern: `(?i)todo`,
			target:  "TODO and todo",
			kind:    nudge.MatchesUnlabeled,
			spans:   []nudge.Span{{Start: 0, End: 4}, {Start: 9, End: 13}},
		},
		{
			name:    "none",
			pattern: `xyz`,
			target:  "abc",
			kind:    nudge.MatchesNone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewText(tt.pattern).FindAll(tt.target)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, tt.spans, got.Spans())
		})
	}
}

func TestText_Captures(t *testing.T) {
	text := NewText(`(?P<key>\w+)=(\w+)`)
	assert.Equal(t, []string{"key", "$0", "$1", "$2"}, text.Labels())

	matches := text.FindAll("x=1").Matches()
	require.Len(t, matches, 1)
	assert.Equal(t, []nudge.LabeledSpan{
		{Label: "key", Span: nudge.Span{Start: 0, End: 1}},
		{Label: "$0", Span: nudge.Span{Start: 0, End: 3}},
		{Label: "$1", Span: nudge.Span{Start: 0, End: 1}},
		{Label: "$2", Span: nudge.Span{Start: 2, End: 3}},
	}, matches[0].Captures)

	assert.Nil(t, NewText(`\w+`).Labels())
	assert.Nil(t, NewText(`(`).Labels())
}

func TestText_IsExactMatch(t *testing.T) {
	tests := []struct {
		pattern string
		target  string
		want    bool
	}{
		{`\s*`, "   ", true},
		{`b`, "abc", false},
		{`a|b`, "abab", true},
		{`a`, "", false},
		{`Write|Edit`, "Edit", true},
		{`Write|Edit`, "EditNotebook", false},
		{"(x", "(x", true},
		{"(x", "(x(x", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.target, func(t *testing.T) {
			assert.Equal(t, tt.want, NewText(tt.pattern).IsExactMatch(tt.target))
		})
	}
}

func TestNewAnchoredText(t *testing.T) {
	tests := []struct {
		pattern string
		target  string
		want    bool
	}{
		{`Bash`, "Bash", true},
		{`Bash`, "BashBash", false},
		{`a|b`, "abab", false},
		{`Write|Edit`, "Edit", true},
		{`Write|Edit`, "EditNotebook", false},
		{`mcp__.*`, "mcp__github__search", true},
		{"(x", "(x", true},
		{"(x", "(x(x", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"/"+tt.target, func(t *testing.T) {
			text := NewAnchoredText(tt.pattern)
			assert.Equal(t, tt.pattern, text.String())
			assert.Equal(t, tt.want, text.IsExactMatch(tt.target))
		})
	}
}

func TestText_SpansAreValid(t *testing.T) {
	patterns := []string{`[a-zé]{1,4}`, `(?P<w>\w+)\s`, `ü+`, `[^x]`}
	for _, p := range patterns {
		text := NewText(p)
		gen, err := reggen.NewGenerator(p)
		require.NoError(t, err)

		for i := 0; i < 50; i++ {
			target := gen.Generate(8) + " ✓ " + gen.Generate(8)
			for _, m := range text.FindAll(target).Matches() {
				assertValidSpan(t, target, m.Span)
				for _, c := range m.Captures {
					assertValidSpan(t, target, c.Span)
				}
			}
		}
	}
}

func assertValidSpan(t *testing.T, source string, s nudge.Span) {
	t.Helper()
	require.LessOrEqual(t, 0, s.Start)
	require.LessOrEqual(t, s.Start, s.End)
	require.LessOrEqual(t, s.End, len(source))
	if s.Start < len(source) {
		assert.True(t, utf8.RuneStart(source[s.Start]), "start %d splits a rune in %q", s.Start, source)
	}
	if s.End < len(source) {
		assert.True(t, utf8.RuneStart(source[s.End]), "end %d splits a rune in %q", s.End, source)
	}
}

func TestText_GeneratedStringsMatch(t *testing.T) {
	for _, p := range []string{`fn [a-z_]+\(\)`, `TODO\([a-z]{2,8}\)`, `\d{3}-\d{4}`} {
		text := NewText(p)
		for i := 0; i < 20; i++ {
			s, err := reggen.Generate(p, 10)
			require.NoError(t, err)
			assert.True(t, text.IsMatch(s), "%s should match %q", p, s)
			assert.True(t, text.IsExactMatch(s), "%s should exactly match %q", p, s)
		}
	}
}

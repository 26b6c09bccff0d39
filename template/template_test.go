package template

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attunehq/nudge"
)

func TestPlaceholderIDs(t *testing.T) {
	tmpl := "move {{ $use }} up; {{$suggestion}} / {{ $1 }} and again {{ $use }}"
	assert.Equal(t, []string{"use", "suggestion", "1"}, PlaceholderIDs(tmpl))
	assert.Equal(t, []string{"function.name"}, PlaceholderIDs("{{ $function.name }}"))
}

func TestPlaceholderIDs_None(t *testing.T) {
	assert.Empty(t, PlaceholderIDs("no placeholders here, not even {{ this }}"))
}

func TestInterpolate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		captures Captures
		want     string
	}{
		{
			name:     "named and positional",
			tmpl:     "{{ $name }} at {{ $0 }}",
			captures: Captures{"name": "f", "0": "fn f()"},
			want:     "f at fn f()",
		},
		{
			name:     "whitespace inside braces is optional",
			tmpl:     "{{$a}}{{   $a   }}",
			captures: Captures{"a": "x"},
			want:     "xx",
		},
		{
			name:     "unknown placeholder stays verbatim",
			tmpl:     "id={{ $id }}&other={{ $unknown }}",
			captures: Captures{"id": "abc"},
			want:     "id=abc&other={{ $unknown }}",
		},
		{
			name:     "values are not rescanned",
			tmpl:     "{{ $a }} {{ $b }}",
			captures: Captures{"a": "{{ $b }}", "b": "B"},
			want:     "{{ $b }} B",
		},
		{
			name:     "no placeholders",
			tmpl:     "plain text",
			captures: Captures{"a": "x"},
			want:     "plain text",
		},
		{
			name:     "dotted and hyphenated capture names",
			tmpl:     "rename {{ $function.name }} ({{ $arg-list }})",
			captures: Captures{"function.name": "doIt", "arg-list": "a, b"},
			want:     "rename doIt (a, b)",
		},
		{
			name:     "not a placeholder without dollar",
			tmpl:     "{{ a }}",
			captures: Captures{"a": "x"},
			want:     "{{ a }}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpolate(tt.tmpl, tt.captures))
		})
	}
}

func TestFromMatch(t *testing.T) {
	source := "let x = foo(bar);"
	m := nudge.Match{
		Span: nudge.Span{Start: 8, End: 16},
		Captures: []nudge.LabeledSpan{
			{Label: "call", Span: nudge.Span{Start: 8, End: 11}},
			{Label: "call", Span: nudge.Span{Start: 12, End: 15}},
			{Label: "$1", Span: nudge.Span{Start: 12, End: 15}},
		},
	}

	assert.Equal(t, Captures{
		"call": "foo",
		"1":    "bar",
		"0":    "foo(bar)",
	}, FromMatch(source, m))
}

func TestFromMatch_Unlabeled(t *testing.T) {
	assert.Equal(t, Captures{"0": "abc"}, FromMatch("xabcx", nudge.Match{Span: nudge.Span{Start: 1, End: 4}}))
}

func TestCaptures_Merge(t *testing.T) {
	base := Captures{"a": "1", "b": "2"}
	merged := base.Merge(Captures{"b": "3", "c": "4"})

	assert.Equal(t, Captures{"a": "1", "b": "3", "c": "4"}, merged)
	assert.Equal(t, Captures{"a": "1", "b": "2"}, base)
}

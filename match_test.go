package nudge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/attunehq/nudge"
)

func TestMatches_Order(t *testing.T) {
	m := nudge.UnlabeledMatches([]nudge.Span{{Start: 5, End: 6}, {Start: 1, End: 4}, {Start: 1, End: 2}})
	assert.Equal(t, nudge.MatchesUnlabeled, m.Kind())
	assert.Equal(t, []nudge.Span{{Start: 1, End: 2}, {Start: 1, End: 4}, {Start: 5, End: 6}}, m.Spans())
	assert.Equal(t, []nudge.Match{
		{Span: nudge.Span{Start: 1, End: 2}},
		{Span: nudge.Span{Start: 1, End: 4}},
		{Span: nudge.Span{Start: 5, End: 6}},
	}, m.Matches())

	cover, ok := m.Cover()
	assert.True(t, ok)
	assert.Equal(t, nudge.Span{Start: 1, End: 6}, cover)
}

func TestMatches_Empty(t *testing.T) {
	for name, m := range map[string]nudge.Matches{
		"none":      nudge.NoMatches(),
		"unlabeled": nudge.UnlabeledMatches(nil),
		"labeled":   nudge.LabeledMatches([]nudge.Match{}),
	} {
		t.Run(name, func(t *testing.T) {
			assert.True(t, m.IsEmpty())
			assert.Equal(t, nudge.MatchesNone, m.Kind())
			assert.Zero(t, m.Len())
			assert.Nil(t, m.Spans())
			_, ok := m.Cover()
			assert.False(t, ok)
		})
	}
}

func TestMatchFromCaptures(t *testing.T) {
	_, ok := nudge.MatchFromCaptures(nil)
	assert.False(t, ok)

	m, ok := nudge.MatchFromCaptures([]nudge.LabeledSpan{
		{Label: "b", Span: nudge.Span{Start: 10, End: 12}},
		{Label: "a", Span: nudge.Span{Start: 3, End: 5}},
	})
	assert.True(t, ok)
	assert.Equal(t, nudge.Span{Start: 3, End: 12}, m.Span)

	a, ok := m.Capture("a")
	assert.True(t, ok)
	assert.Equal(t, nudge.Span{Start: 3, End: 5}, a.Span)
	_, ok = m.Capture("c")
	assert.False(t, ok)
}

func TestSpan(t *testing.T) {
	s := nudge.Span{Start: 2, End: 5}
	assert.Equal(t, "llo", s.Text("hello"))
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, "2..5", s.String())
	assert.Equal(t, nudge.Span{Start: 0, End: 5}, s.Union(nudge.Span{Start: 0, End: 1}))
}

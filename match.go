package nudge

import (
	"fmt"
	"slices"
)

// Span is a half-open byte range [Start, End) into one specific source
// string. Offsets always fall on UTF-8 boundaries of that source.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Text slices the span out of source.
func (s Span) Text(source string) string {
	return source[s.Start:s.End]
}

// Union returns the smallest span covering both s and o.
func (s Span) Union(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// LabeledSpan is a single named capture.
type LabeledSpan struct {
	Label string
	Span  Span
}

// Match is one matcher hit. Span is the union of all capture spans for
// structural matches and the overall regex match for text patterns.
type Match struct {
	Span     Span
	Captures []LabeledSpan
}

// MatchFromCaptures derives a Match whose span is the union of captures.
// It reports false when captures is empty.
func MatchFromCaptures(captures []LabeledSpan) (Match, bool) {
	if len(captures) == 0 {
		return Match{}, false
	}
	span := captures[0].Span
	for _, c := range captures[1:] {
		span = span.Union(c.Span)
	}
	return Match{Span: span, Captures: captures}, true
}

// Capture returns the first capture carrying label.
func (m Match) Capture(label string) (LabeledSpan, bool) {
	for _, c := range m.Captures {
		if c.Label == label {
			return c, true
		}
	}
	return LabeledSpan{}, false
}

// MatchesKind tells consumers whether a matcher found nothing, found spans
// without capture support, or found labeled matches.
type MatchesKind uint8

const (
	MatchesNone MatchesKind = iota
	MatchesUnlabeled
	MatchesLabeled
)

func (k MatchesKind) String() string {
	switch k {
	case MatchesNone:
		return "none"
	case MatchesUnlabeled:
		return "unlabeled"
	case MatchesLabeled:
		return "labeled"
	default:
		return fmt.Sprintf("MatchesKind(%d)", uint8(k))
	}
}

// Matches is the full result of one matcher invocation, sorted by start
// offset.
type Matches struct {
	kind    MatchesKind
	spans   []Span
	matches []Match
}

// NoMatches is the empty result.
func NoMatches() Matches {
	return Matches{}
}

// UnlabeledMatches wraps spans from a matcher without capture support. An
// empty slice yields NoMatches.
func UnlabeledMatches(spans []Span) Matches {
	if len(spans) == 0 {
		return NoMatches()
	}
	sorted := slices.Clone(spans)
	slices.SortStableFunc(sorted, compareSpans)
	return Matches{kind: MatchesUnlabeled, spans: sorted}
}

// LabeledMatches wraps matches carrying captures. An empty slice yields
// NoMatches.
func LabeledMatches(matches []Match) Matches {
	if len(matches) == 0 {
		return NoMatches()
	}
	sorted := slices.Clone(matches)
	slices.SortStableFunc(sorted, func(a, b Match) int {
		return compareSpans(a.Span, b.Span)
	})
	return Matches{kind: MatchesLabeled, matches: sorted}
}

func compareSpans(a, b Span) int {
	if a.Start != b.Start {
		return a.Start - b.Start
	}
	return a.End - b.End
}

func (m Matches) Kind() MatchesKind {
	return m.kind
}

func (m Matches) IsEmpty() bool {
	return m.kind == MatchesNone
}

func (m Matches) Len() int {
	switch m.kind {
	case MatchesUnlabeled:
		return len(m.spans)
	case MatchesLabeled:
		return len(m.matches)
	default:
		return 0
	}
}

// Spans returns the overall span of every match.
func (m Matches) Spans() []Span {
	switch m.kind {
	case MatchesUnlabeled:
		return slices.Clone(m.spans)
	case MatchesLabeled:
		spans := make([]Span, len(m.matches))
		for i, match := range m.matches {
			spans[i] = match.Span
		}
		return spans
	default:
		return nil
	}
}

// Matches returns every match. Unlabeled spans come back as matches with no
// captures.
func (m Matches) Matches() []Match {
	switch m.kind {
	case MatchesUnlabeled:
		matches := make([]Match, len(m.spans))
		for i, span := range m.spans {
			matches[i] = Match{Span: span}
		}
		return matches
	case MatchesLabeled:
		return slices.Clone(m.matches)
	default:
		return nil
	}
}

// Cover returns the union of every match span.
func (m Matches) Cover() (Span, bool) {
	spans := m.Spans()
	if len(spans) == 0 {
		return Span{}, false
	}
	cover := spans[0]
	for _, s := range spans[1:] {
		cover = cover.Union(s)
	}
	return cover, true
}

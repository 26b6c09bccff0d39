package pattern

import (
	"strconv"

	ahocorasick "github.com/BobuSumisu/aho-corasick"
	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/regexp"
)

// Text is a user-supplied string pattern. It is compiled as a regular
// expression when possible, otherwise it falls back to matching the string
// literally.
type Text struct {
	source string

	// re is nil when the pattern fell back to a literal.
	re *regexp.Regexp

	// literal finds occurrences of source when re is nil.
	literal *ahocorasick.Trie
}

// NewText compiles s. It never fails: text that is not a valid regular
// expression is matched literally.
func NewText(s string) *Text {
	re, err := regexp.Compile(s)
	if err == nil {
		return &Text{source: s, re: re}
	}

	logging.Debug().
		Str("pattern", s).
		Err(err).
		Msg("pattern is not a valid regex, matching literally")
	return &Text{
		source:  s,
		literal: ahocorasick.NewTrieBuilder().AddString(s).Build(),
	}
}

// NewAnchoredText compiles s so that a regex only matches a whole target
// in one piece. Names such as tools are matched this way, so `Bash` does
// not accept `BashBash`.
func NewAnchoredText(s string) *Text {
	if _, err := regexp.Compile(s); err != nil {
		return NewText(s)
	}
	re, err := regexp.Compile(`^(?:` + s + `)$`)
	if err != nil {
		return NewText(s)
	}
	return &Text{source: s, re: re}
}

func (t *Text) String() string {
	return t.source
}

// IsLiteral reports whether the pattern fell back to literal matching.
func (t *Text) IsLiteral() bool {
	return t.re == nil
}

// Labels lists the capture labels a match can carry: every named group,
// plus `$i` for each group including the implicit group 0.
func (t *Text) Labels() []string {
	if t.re == nil || t.re.NumSubexp() == 0 {
		return nil
	}
	var labels []string
	for _, name := range t.re.SubexpNames() {
		if name != "" {
			labels = append(labels, name)
		}
	}
	for i := 0; i <= t.re.NumSubexp(); i++ {
		labels = append(labels, "$"+strconv.Itoa(i))
	}
	return labels
}

// FindAll returns every non-overlapping occurrence in target. Regexes
// without groups and literals produce unlabeled spans.
func (t *Text) FindAll(target string) nudge.Matches {
	if t.re == nil {
		return nudge.UnlabeledMatches(t.findLiteral(target))
	}

	if t.re.NumSubexp() == 0 {
		idx := t.re.FindAllStringIndex(target, -1)
		spans := make([]nudge.Span, len(idx))
		for i, m := range idx {
			spans[i] = nudge.Span{Start: m[0], End: m[1]}
		}
		return nudge.UnlabeledMatches(spans)
	}

	names := t.re.SubexpNames()
	var matches []nudge.Match
	for _, sub := range t.re.FindAllStringSubmatchIndex(target, -1) {
		var captures []nudge.LabeledSpan
		for i, name := range names {
			if name == "" || sub[2*i] < 0 {
				continue
			}
			captures = append(captures, nudge.LabeledSpan{
				Label: name,
				Span:  nudge.Span{Start: sub[2*i], End: sub[2*i+1]},
			})
		}
		for i := range names {
			if sub[2*i] < 0 {
				continue
			}
			captures = append(captures, nudge.LabeledSpan{
				Label: "$" + strconv.Itoa(i),
				Span:  nudge.Span{Start: sub[2*i], End: sub[2*i+1]},
			})
		}
		matches = append(matches, nudge.Match{
			Span:     nudge.Span{Start: sub[0], End: sub[1]},
			Captures: captures,
		})
	}
	return nudge.LabeledMatches(matches)
}

// findLiteral reports occurrences left to right, dropping any that overlap
// an earlier one.
func (t *Text) findLiteral(target string) []nudge.Span {
	var (
		spans []nudge.Span
		next  int
	)
	for _, m := range t.literal.MatchString(target) {
		start := int(m.Pos())
		if start < next {
			continue
		}
		end := start + len(m.Match())
		spans = append(spans, nudge.Span{Start: start, End: end})
		next = end
	}
	return spans
}

// IsMatch reports whether the pattern occurs anywhere in target.
func (t *Text) IsMatch(target string) bool {
	if t.re == nil {
		return len(t.findLiteral(target)) > 0
	}
	return t.re.MatchString(target)
}

// IsExactMatch reports whether the pattern accounts for all of target. For
// regexes the matches must cover [0, len(target)) without gaps; literals
// require string equality.
func (t *Text) IsExactMatch(target string) bool {
	if t.re == nil {
		return target == t.source
	}
	return covers(t.FindAll(target).Spans(), len(target))
}

// covers reports whether sorted spans cover [0, n) with no gaps.
func covers(spans []nudge.Span, n int) bool {
	if len(spans) == 0 {
		return false
	}
	reach := 0
	for _, s := range spans {
		if s.Start > reach {
			return false
		}
		reach = max(reach, s.End)
	}
	return reach == n && spans[0].Start == 0
}

package report

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/attunehq/nudge"
)

// DefaultLabel annotates a span whose violation carries no label.
const DefaultLabel = "matched pattern"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e5484d"))
	gutterStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3e63dd"))
	caretStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#e5484d"))
)

// Annotation marks a span of the source with a label.
type Annotation struct {
	Span  nudge.Span
	Label string
}

// Annotations converts violations into annotations, filling in
// DefaultLabel where a violation has none.
func Annotations(violations []nudge.Violation) []Annotation {
	out := make([]Annotation, 0, len(violations))
	for _, v := range violations {
		label := v.Label
		if label == "" {
			label = DefaultLabel
		}
		out = append(out, Annotation{Span: v.Span, Label: label})
	}
	return out
}

// Title is the headline for n violations.
func Title(n int) string {
	if n == 1 {
		return "Rule violation. Fix this error and immediately retry."
	}
	return "Rule violations. Fix these errors and immediately retry."
}

// segment is the part of one annotation that falls on one line.
type segment struct {
	start, end int // byte offsets within the line
	label      string
}

// Snippet renders source the way a compiler reports diagnostics: the title,
// then every annotated line with carets under the annotated bytes.
//
//	error: Rule violation. Fix this error and immediately retry.
//	   |
//	 5 |     let foo = bar.unwrap();
//	   |               ^^^^^^^^^^^^ Do not use `.unwrap()`.
//	   |
func Snippet(source string, annotations []Annotation, color bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !color {
			return text
		}
		return s.Render(text)
	}

	lines := strings.Split(source, "\n")
	starts := make([]int, len(lines))
	for i, offset := 1, 0; i < len(lines); i++ {
		offset += len(lines[i-1]) + 1
		starts[i] = offset
	}
	lineOf := func(offset int) int {
		i, found := slices.BinarySearch(starts, offset)
		if !found {
			i--
		}
		return i
	}

	sorted := slices.Clone(annotations)
	slices.SortStableFunc(sorted, func(a, b Annotation) int {
		return a.Span.Start - b.Span.Start
	})

	segments := make(map[int][]segment)
	for _, a := range sorted {
		start := min(max(a.Span.Start, 0), len(source))
		end := min(max(a.Span.End, start), len(source))
		first := lineOf(start)
		last := first
		if end > start {
			last = lineOf(end - 1)
		}
		for l := first; l <= last; l++ {
			seg := segment{start: 0, end: len(lines[l])}
			if l == first {
				seg.start = start - starts[l]
			}
			if l == last {
				seg.end = end - starts[l]
				seg.label = a.Label
			}
			segments[l] = append(segments[l], seg)
		}
	}

	numbers := make([]int, 0, len(segments))
	for l := range segments {
		numbers = append(numbers, l)
	}
	slices.Sort(numbers)

	width := 1
	if len(numbers) > 0 {
		width = len(strconv.Itoa(numbers[len(numbers)-1] + 1))
	}
	gutter := func(label string) string {
		return style(gutterStyle, fmt.Sprintf("%*s |", width+1, label))
	}

	var b strings.Builder
	b.WriteString(style(titleStyle, "error") + ": " + Title(len(annotations)) + "\n")
	b.WriteString(gutter("") + "\n")
	for i, l := range numbers {
		if i > 0 && l > numbers[i-1]+1 {
			b.WriteString(style(gutterStyle, "...") + "\n")
		}
		line := lines[l]
		b.WriteString(gutter(strconv.Itoa(l+1)) + " " + expandTabs(line) + "\n")
		for _, seg := range segments[l] {
			pad := lipgloss.Width(expandTabs(line[:seg.start]))
			carets := max(lipgloss.Width(expandTabs(line[seg.start:seg.end])), 1)
			row := gutter("") + " " + strings.Repeat(" ", pad) + style(caretStyle, strings.Repeat("^", carets))
			if seg.label != "" {
				row += " " + style(caretStyle, seg.label)
			}
			b.WriteString(row + "\n")
		}
	}
	b.WriteString(gutter("") + "\n")
	return b.String()
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}

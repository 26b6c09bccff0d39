// Package template renders rule messages. Placeholders have the form
// `{{ $name }}` where name is a capture label, a positional group index, or
// one of the reserved names filled in by the evaluator (suggestion, command,
// expected, actual, tool_name, file_path).
package template

import (
	"strings"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/regexp"
)

// Reserved capture names.
const (
	KeySuggestion = "suggestion"
	KeyCommand    = "command"
	KeyExpected   = "expected"
	KeyActual     = "actual"
	KeyToolName   = "tool_name"
	KeyFilePath   = "file_path"
)

// Names may contain dots and hyphens, as tree-sitter capture names do.
var placeholderRe = regexp.MustCompile(`\{\{\s*\$([A-Za-z0-9_.\-]+)\s*\}\}`)

// Captures maps placeholder names to their values.
type Captures map[string]string

// Interpolate replaces every placeholder with its capture in a single pass.
// Values are never rescanned, so a value that itself looks like a
// placeholder is emitted as is. Placeholders without a capture are left
// verbatim.
func Interpolate(tmpl string, captures Captures) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(ph string) string {
		name := placeholderName(ph)
		if v, ok := captures[name]; ok {
			return v
		}
		return ph
	})
}

// PlaceholderIDs returns all unique placeholder names referenced in tmpl, in
// order of first use.
func PlaceholderIDs(tmpl string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, span := range placeholderRe.FindAllStringIndex(tmpl, -1) {
		id := placeholderName(tmpl[span[0]:span[1]])
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func placeholderName(ph string) string {
	inner := strings.TrimSpace(ph[2 : len(ph)-2])
	return strings.TrimPrefix(inner, "$")
}

// FromMatch builds captures for one match. Labels lose their leading `$`
// so regex group `$1` is addressed as `{{ $1 }}`. When a label repeats, the
// first occurrence wins. Group 0 defaults to the whole match.
func FromMatch(source string, m nudge.Match) Captures {
	captures := make(Captures, len(m.Captures)+1)
	for _, c := range m.Captures {
		key := strings.TrimPrefix(c.Label, "$")
		if _, ok := captures[key]; ok {
			continue
		}
		captures[key] = c.Span.Text(source)
	}
	if _, ok := captures["0"]; !ok {
		captures["0"] = m.Span.Text(source)
	}
	return captures
}

// Merge returns a copy of c with extra layered on top.
func (c Captures) Merge(extra Captures) Captures {
	out := make(Captures, len(c)+len(extra))
	for k, v := range c {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

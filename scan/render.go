package scan

import (
	"slices"
	"strings"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/config"
	"github.com/attunehq/nudge/pattern"
	"github.com/attunehq/nudge/template"
)

// render turns a fired entry into the rule's outcome. Each match renders
// the message from its own captures; identical messages collapse.
func render(rule *config.CompiledRule, h *hit) *nudge.Outcome {
	out := &nudge.Outcome{Rule: rule.Name, Action: h.entry.Action}

	if h.failure != nil {
		matcher := h.entry.Matchers[h.failureFrom]
		caps := captures(h, h.failure.Match, matcher, h.results[h.failureFrom])
		caps[template.KeyExpected] = h.failure.Failure.Expected
		caps[template.KeyActual] = h.failure.Failure.Actual

		out.Message = template.Interpolate(rule.Message, caps)
		out.Failures = h.failureCount
		out.Violations = []nudge.Violation{{
			Rule:    rule.Name,
			Span:    h.failure.Failure.Span,
			Label:   h.failure.Failure.Expected,
			Message: out.Message,
		}}
		return out
	}

	var messages []string
	for i, res := range h.results {
		matcher := h.entry.Matchers[i]
		for _, m := range res.Matches.Matches() {
			caps := captures(h, m, matcher, res)
			msg := template.Interpolate(rule.Message, caps)
			if !slices.Contains(messages, msg) {
				messages = append(messages, msg)
			}
			out.Violations = append(out.Violations, nudge.Violation{
				Rule:    rule.Name,
				Span:    m.Span,
				Label:   caps[template.KeySuggestion],
				Message: msg,
			})
		}
	}
	if len(messages) == 0 {
		// activation alone fired the rule
		messages = append(messages, template.Interpolate(rule.Message, eventCaptures(h.event)))
	}
	out.Message = strings.Join(messages, "\n")
	return out
}

// captures builds the template values for one match: the event's tool and
// file, its captures, the matcher's extras, then the suggestion rendered
// from those.
func captures(h *hit, m nudge.Match, matcher pattern.Matcher, res pattern.Result) template.Captures {
	caps := eventCaptures(h.event).Merge(template.FromMatch(h.text, m)).Merge(res.Extra)
	if matcher.Suggestion != "" {
		caps[template.KeySuggestion] = template.Interpolate(matcher.Suggestion, caps)
	}
	return caps
}

// eventCaptures exposes the event fields messages may reference. Missing
// fields are left out so their placeholders stay verbatim.
func eventCaptures(ev nudge.Event) template.Captures {
	caps := template.Captures{}
	if ev.Tool != "" {
		caps[template.KeyToolName] = ev.Tool
	}
	if ev.FilePath != "" {
		caps[template.KeyFilePath] = ev.FilePath
	}
	return caps
}

package scan

import (
	"context"
	"fmt"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/config"
	"github.com/attunehq/nudge/pattern"
	"github.com/attunehq/nudge/validate"
)

// hit is a fired entry: the matcher results in entry order and, when the
// entry has validators, the representative failure.
type hit struct {
	entry   *config.CompiledEntry
	event   nudge.Event
	text    string
	results []pattern.Result

	failure      *validate.MatchFailure
	failureFrom  int
	failureCount int
}

// evaluateRule tries each entry in order and stops at the first that fires.
func evaluateRule(ctx context.Context, env *env, cache *pattern.ResultCache, rule *config.CompiledRule, ev nudge.Event) (*nudge.Outcome, error) {
	for i := range rule.Entries {
		entry := &rule.Entries[i]
		h, err := evaluateEntry(ctx, env, cache, entry, ev)
		if err != nil {
			return nil, fmt.Errorf("on[%d]: %w", i, err)
		}
		if h != nil {
			return render(rule, h), nil
		}
	}
	return nil, nil
}

func evaluateEntry(ctx context.Context, env *env, cache *pattern.ResultCache, entry *config.CompiledEntry, ev nudge.Event) (*hit, error) {
	active, err := activated(ctx, entry, ev)
	if err != nil || !active {
		return nil, err
	}

	for _, ps := range entry.ProjectState {
		ok, err := projectStateHolds(ctx, env, cache, ps)
		if err != nil || !ok {
			return nil, err
		}
	}

	h := &hit{entry: entry, event: ev, text: ev.Text}
	for _, m := range entry.Matchers {
		res, err := m.Evaluate(ctx, ev.Text, cache)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", m, err)
		}
		if res.Matches.IsEmpty() {
			return nil, nil
		}
		h.results = append(h.results, res)
	}

	if len(entry.Validators) == 0 {
		return h, nil
	}
	for i, res := range h.results {
		validators := entry.ValidatorsFor(i)
		if len(validators) == 0 {
			continue
		}
		report, err := validate.Check(validators, ev.Text, res.Matches.Matches())
		if err != nil {
			return nil, err
		}
		if report.Failed() && h.failure == nil {
			h.failure = report.First
			h.failureFrom = i
		}
		h.failureCount += report.Count
	}
	if h.failure == nil {
		return nil, nil
	}
	return h, nil
}

// activated checks hook, tool, file, payload field and the CEL condition.
// An event lacking something the entry requires does not activate it.
func activated(ctx context.Context, entry *config.CompiledEntry, ev nudge.Event) (bool, error) {
	if entry.Hook != ev.Hook {
		return false, nil
	}
	if entry.Tool != nil && !entry.Tool.IsExactMatch(ev.Tool) {
		return false, nil
	}
	if ev.FilePath != "" {
		if !entry.MatchesFile(ev.FilePath, ev.Cwd) {
			return false, nil
		}
	} else if entry.File != "" {
		return false, nil
	}
	if !fieldApplies(entry.Field, ev.Field) {
		return false, nil
	}
	if entry.When != nil {
		return entry.When.Eval(ctx, ev)
	}
	return true, nil
}

// fieldApplies reports whether an entry keyed on want can inspect an event
// whose text came from have. `content` accepts any tool's text.
func fieldApplies(want, have nudge.TextField) bool {
	switch want {
	case "":
		return true
	case nudge.FieldContent:
		return have != "" && have != nudge.FieldPrompt
	default:
		return want == have
	}
}

// projectStateHolds requires every branch matcher to match the current
// branch. An unknown branch is a non-match, not an error.
func projectStateHolds(ctx context.Context, env *env, cache *pattern.ResultCache, ps config.ProjectState) (bool, error) {
	switch ps.Kind {
	case config.ProjectStateGit:
		branch, ok := env.Branch(ctx)
		if !ok {
			return false, nil
		}
		for _, m := range ps.Branch {
			res, err := m.Evaluate(ctx, branch, cache)
			if err != nil {
				return false, fmt.Errorf("project_state %s: %w", m, err)
			}
			if res.Matches.IsEmpty() {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("unknown project state kind %s", ps.Kind)
	}
}

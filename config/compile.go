package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/pattern"
	"github.com/attunehq/nudge/validate"
)

// DefaultFileGlob matches every file.
const DefaultFileGlob = "**/*"

// Options tune rule compilation.
type Options struct {
	// ExternalTimeout bounds every external matcher. Zero means
	// pattern.DefaultExternalTimeout.
	ExternalTimeout time.Duration
}

// CompiledRule is a rule with every pattern compiled and every reference
// checked. It is immutable once built.
type CompiledRule struct {
	Name        string
	Description string
	Message     string

	// Source is the file the rule was loaded from, if any.
	Source string

	Entries []CompiledEntry
}

// CompiledEntry is one activation and content condition of a rule.
type CompiledEntry struct {
	Hook   nudge.HookKind
	Action nudge.Action

	// Tool must match the whole tool name; nil matches any tool.
	Tool *pattern.Text

	// File is a doublestar glob; only consulted for events with a file path.
	File string

	// When is an optional CEL condition; nil always holds.
	When *Condition

	// Field is the payload field the matchers inspect. FieldContent means
	// whatever text the tool carries. Empty when the entry has no matchers.
	Field nudge.TextField

	Matchers     []pattern.Matcher
	Validators   []validate.Validator
	ProjectState []ProjectState
}

// ProjectStateKind enumerates kinds of ambient project state.
type ProjectStateKind uint8

const (
	ProjectStateGit ProjectStateKind = iota
)

func (k ProjectStateKind) String() string {
	if k == ProjectStateGit {
		return "Git"
	}
	return fmt.Sprintf("ProjectStateKind(%d)", uint8(k))
}

// ProjectState is a condition on ambient state. For Git, every branch
// matcher must match the current branch name.
type ProjectState struct {
	Kind   ProjectStateKind
	Branch []pattern.Matcher
}

// Labels returns every capture label the entry's matchers can produce.
func (e CompiledEntry) Labels() []string {
	var labels []string
	for _, m := range e.Matchers {
		for _, l := range m.Labels() {
			if !slices.Contains(labels, l) {
				labels = append(labels, l)
			}
		}
	}
	return labels
}

// ValidatorsFor returns the validators that apply to the matches of the
// matcher at index i: those whose every capture label that matcher produces.
func (e CompiledEntry) ValidatorsFor(i int) []validate.Validator {
	labels := e.Matchers[i].Labels()
	var bound []validate.Validator
	for _, v := range e.Validators {
		if containsAll(labels, v.Labels()) {
			bound = append(bound, v)
		}
	}
	return bound
}

func containsAll(labels, want []string) bool {
	for _, l := range want {
		if !slices.Contains(labels, l) {
			return false
		}
	}
	return true
}

// MatchesFile reports whether path satisfies the entry's file glob. Paths
// are tried both as given (without a leading slash) and relative to cwd.
func (e CompiledEntry) MatchesFile(path, cwd string) bool {
	glob := e.File
	if glob == "" {
		glob = DefaultFileGlob
	}

	var candidates []string
	if cwd != "" && filepath.IsAbs(path) {
		if rel, err := filepath.Rel(cwd, path); err == nil && !strings.HasPrefix(rel, "..") {
			candidates = append(candidates, filepath.ToSlash(rel))
		}
	}
	candidates = append(candidates, strings.TrimPrefix(filepath.ToSlash(path), "/"))

	for _, c := range candidates {
		if ok, _ := doublestar.Match(glob, c); ok {
			return true
		}
	}
	return false
}

// Compile checks a raw rule and compiles its patterns. Errors name the
// rule and the offending entry.
func Compile(rule Rule, opts Options) (CompiledRule, error) {
	if strings.TrimSpace(rule.Name) == "" {
		return CompiledRule{}, fmt.Errorf("rule is missing a name")
	}
	if len(rule.On) == 0 {
		return CompiledRule{}, fmt.Errorf("rule %q: no `on` entries", rule.Name)
	}

	var action nudge.Action
	if rule.Action != "" {
		a, err := nudge.ParseAction(rule.Action)
		if err != nil {
			return CompiledRule{}, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		action = a
	}

	compiled := CompiledRule{
		Name:        rule.Name,
		Description: rule.Description,
		Message:     rule.Message,
		Entries:     make([]CompiledEntry, 0, len(rule.On)),
	}
	for i, raw := range rule.On {
		entry, err := compileEntry(raw, action, opts)
		if err != nil {
			return CompiledRule{}, fmt.Errorf("rule %q: on[%d]%w", rule.Name, i, err)
		}
		compiled.Entries = append(compiled.Entries, entry)
	}
	return compiled, nil
}

// fieldError prefixes an error with the path of the field inside an entry.
type fieldError struct {
	path string
	err  error
}

func (e *fieldError) Error() string { return e.path + ": " + e.err.Error() }
func (e *fieldError) Unwrap() error { return e.err }

func at(path string, err error) error {
	if fe, ok := err.(*fieldError); ok {
		return &fieldError{path: "." + path + fe.path, err: fe.err}
	}
	return &fieldError{path: "." + path, err: err}
}

func compileEntry(raw Entry, action nudge.Action, opts Options) (CompiledEntry, error) {
	hook, err := nudge.ParseHookKind(raw.Hook)
	if err != nil {
		return CompiledEntry{}, at("hook", err)
	}
	if action == "" {
		action = nudge.DefaultAction(hook)
	}

	entry := CompiledEntry{Hook: hook, Action: action, File: raw.File}

	if raw.Tool != "" {
		if hook == nudge.HookUserPromptSubmit {
			return CompiledEntry{}, at("tool", fmt.Errorf("not allowed for %s", hook))
		}
		entry.Tool = pattern.NewAnchoredText(raw.Tool)
	}
	if raw.File != "" {
		if !doublestar.ValidatePattern(raw.File) {
			return CompiledEntry{}, at("file", fmt.Errorf("invalid glob %q", raw.File))
		}
	}
	if raw.When != "" {
		cond, err := CompileCondition(raw.When)
		if err != nil {
			return CompiledEntry{}, at("when", err)
		}
		entry.When = cond
	}

	field, specs, err := contentField(raw, hook)
	if err != nil {
		return CompiledEntry{}, err
	}
	entry.Field = field
	for j, spec := range specs {
		m, err := compileMatcher(spec, opts)
		if err != nil {
			return CompiledEntry{}, at(fmt.Sprintf("%s[%d]", field, j), err)
		}
		entry.Matchers = append(entry.Matchers, m)
	}

	if len(raw.Validate) > 0 && len(entry.Matchers) == 0 {
		return CompiledEntry{}, at("validate", fmt.Errorf("validators need at least one content matcher"))
	}
	for j, spec := range raw.Validate {
		v, err := compileValidator(spec, entry)
		if err != nil {
			return CompiledEntry{}, at(fmt.Sprintf("validate[%d]", j), err)
		}
		entry.Validators = append(entry.Validators, v)
	}

	for j, spec := range raw.ProjectState {
		ps, err := compileProjectState(spec, opts)
		if err != nil {
			return CompiledEntry{}, at(fmt.Sprintf("project_state[%d]", j), err)
		}
		entry.ProjectState = append(entry.ProjectState, ps)
	}

	return entry, nil
}

// contentField picks the single text key set on an entry.
func contentField(raw Entry, hook nudge.HookKind) (nudge.TextField, []MatcherSpec, error) {
	keyed := []struct {
		field nudge.TextField
		specs []MatcherSpec
	}{
		{nudge.FieldContent, raw.Content},
		{nudge.FieldNewContent, raw.NewContent},
		{nudge.FieldURL, raw.URL},
		{nudge.FieldCommand, raw.Command},
		{nudge.FieldPrompt, raw.Prompt},
	}

	var (
		field nudge.TextField
		specs []MatcherSpec
		set   []string
	)
	for _, k := range keyed {
		if len(k.specs) == 0 {
			continue
		}
		field, specs = k.field, k.specs
		set = append(set, string(k.field))
	}
	if len(set) > 1 {
		return "", nil, at(set[1], fmt.Errorf("only one content key is allowed per entry, found %s", strings.Join(set, ", ")))
	}
	if field == "" {
		return "", nil, nil
	}

	switch {
	case field == nudge.FieldPrompt && hook != nudge.HookUserPromptSubmit:
		return "", nil, at(string(field), fmt.Errorf("only allowed for %s", nudge.HookUserPromptSubmit))
	case field != nudge.FieldPrompt && hook == nudge.HookUserPromptSubmit:
		return "", nil, at(string(field), fmt.Errorf("%s entries inspect `prompt`", nudge.HookUserPromptSubmit))
	}

	if field != nudge.FieldContent && field != nudge.FieldPrompt && raw.Tool != "" {
		if expected, ok := nudge.FieldForTool(raw.Tool); ok && expected != field {
			return "", nil, at(string(field), fmt.Errorf("tool %s carries `%s`", raw.Tool, expected))
		}
	}
	return field, specs, nil
}

func compileMatcher(spec MatcherSpec, opts Options) (pattern.Matcher, error) {
	var (
		m   pattern.Matcher
		err error
	)
	switch {
	case spec.Regex != nil:
		m = pattern.Regex(spec.Regex.Pattern)
		m.Suggestion = spec.Regex.Suggestion
	case spec.SyntaxTree != nil:
		lang, lerr := pattern.ParseLanguage(spec.SyntaxTree.Language)
		if lerr != nil {
			return pattern.Matcher{}, at("language", lerr)
		}
		m, err = pattern.Query(lang, spec.SyntaxTree.Query)
		if err != nil {
			return pattern.Matcher{}, at("query", err)
		}
		m.Suggestion = spec.SyntaxTree.Suggestion
	case spec.External != nil:
		m, err = pattern.Command(spec.External.Command, opts.ExternalTimeout)
		if err != nil {
			return pattern.Matcher{}, at("command", err)
		}
		m.Suggestion = spec.External.Suggestion
	default:
		return pattern.Matcher{}, fmt.Errorf("matcher has no kind")
	}

	return m, nil
}

func compileValidator(spec ValidatorSpec, entry CompiledEntry) (validate.Validator, error) {
	kind, err := validate.ParseKind(spec.Kind)
	if err != nil {
		return validate.Validator{}, at("kind", err)
	}

	v := validate.Validator{Kind: kind}
	if !kind.Between() {
		return v, nil
	}

	labels := entry.Labels()
	for _, ref := range []struct{ key, label string }{{"from", spec.From}, {"to", spec.To}} {
		if ref.label == "" {
			return validate.Validator{}, at(ref.key, fmt.Errorf("required for %s", kind))
		}
		if !slices.Contains(labels, ref.label) {
			return validate.Validator{}, at(ref.key, fmt.Errorf("capture %q is not produced by any matcher in this entry", ref.label))
		}
	}
	// Captures are only comparable within one match, so a single matcher
	// has to produce both.
	if !slices.ContainsFunc(entry.Matchers, func(m pattern.Matcher) bool {
		return containsAll(m.Labels(), []string{spec.From, spec.To})
	}) {
		return validate.Validator{}, fmt.Errorf("captures %q and %q are not produced by the same matcher", spec.From, spec.To)
	}
	v.Between = validate.BetweenCaptures{
		From:    spec.From,
		To:      spec.To,
		Pattern: pattern.NewText(spec.Pattern),
	}
	return v, nil
}

func compileProjectState(spec ProjectStateSpec, opts Options) (ProjectState, error) {
	if spec.Kind != "Git" {
		return ProjectState{}, at("kind", fmt.Errorf("unknown project state kind %q (expected Git)", spec.Kind))
	}
	if len(spec.Branch) == 0 {
		return ProjectState{}, at("branch", fmt.Errorf("at least one matcher is required"))
	}
	ps := ProjectState{Kind: ProjectStateGit}
	for j, b := range spec.Branch {
		m, err := compileMatcher(b, opts)
		if err != nil {
			return ProjectState{}, at(fmt.Sprintf("branch[%d]", j), err)
		}
		ps.Branch = append(ps.Branch, m)
	}
	return ps, nil
}

package nudge

import (
	"fmt"
	"slices"
	"strings"
)

// MessageSeparator joins the messages of every rule that fired.
const MessageSeparator = "\n\n---\n\n"

// Action is what a rule asks for when it fires.
type Action string

const (
	ActionInterrupt Action = "interrupt"
	ActionContinue  Action = "continue"
)

// ParseAction accepts the rule-file spelling of an action.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(s)) {
	case ActionInterrupt:
		return ActionInterrupt, nil
	case ActionContinue:
		return ActionContinue, nil
	default:
		return "", fmt.Errorf("unknown action %q (expected interrupt or continue)", s)
	}
}

// DefaultAction is used when a rule does not set one.
func DefaultAction(hook HookKind) Action {
	if hook == HookUserPromptSubmit {
		return ActionContinue
	}
	return ActionInterrupt
}

// Decision is the terminal outcome for one event.
type Decision uint8

const (
	Passthrough Decision = iota
	Continue
	Interrupt
)

func (d Decision) String() string {
	switch d {
	case Passthrough:
		return "passthrough"
	case Continue:
		return "continue"
	case Interrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("Decision(%d)", uint8(d))
	}
}

// Violation points at the text that made a rule fire.
type Violation struct {
	Rule string
	Span Span

	// Label annotates the span in snippets: the rendered suggestion, or the
	// validator expectation for relational failures. May be empty.
	Label string

	// Message is the rule message rendered for this match alone.
	Message string
}

// Outcome is the contribution of one fired rule.
type Outcome struct {
	Rule       string
	Action     Action
	Message    string
	Violations []Violation

	// Failures counts every failing match when validators were involved,
	// not only the one reported in Violations.
	Failures int
}

// Response is the aggregate decision for one event.
type Response struct {
	Decision Decision
	Message  string
	Outcomes []Outcome

	// Reason is set when the evaluation itself was abandoned, explaining
	// why the decision fell back to Passthrough.
	Reason string
}

// PassthroughResponse is returned when nothing fired or the evaluation
// could not complete.
func PassthroughResponse(reason string) Response {
	return Response{Decision: Passthrough, Reason: reason}
}

// Aggregate folds fired rules, given in declaration order, into one
// response. Any interrupt wins; otherwise one contribution is enough to
// continue.
func Aggregate(outcomes []Outcome) Response {
	if len(outcomes) == 0 {
		return PassthroughResponse("")
	}

	decision := Continue
	messages := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Action == ActionInterrupt {
			decision = Interrupt
		}
		messages = append(messages, o.Message)
	}

	return Response{
		Decision: decision,
		Message:  strings.Join(messages, MessageSeparator),
		Outcomes: slices.Clone(outcomes),
	}
}

// Violations flattens every outcome's violations in rule order.
func (r Response) Violations() []Violation {
	var out []Violation
	for _, o := range r.Outcomes {
		out = append(out, o.Violations...)
	}
	return out
}

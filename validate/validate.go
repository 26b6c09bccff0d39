// Package validate checks relational conditions over the captures of a
// single match. Validators state what SHOULD hold; a match for which a
// validator fails is a violation.
package validate

import (
	"errors"
	"fmt"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/pattern"
)

var (
	// ErrCaptureNotFound means a validator names a label the match lacks.
	ErrCaptureNotFound = errors.New("capture not found")

	// ErrCaptureOrder means the 'from' capture ends after the 'to' capture
	// starts, so there is no text between them.
	ErrCaptureOrder = errors.New("capture order")
)

// Kind enumerates validator kinds.
type Kind uint8

const (
	Exists Kind = iota
	NotExists
	Contains
	NotContains
	Equals
)

func (k Kind) String() string {
	switch k {
	case Exists:
		return "Exists"
	case NotExists:
		return "NotExists"
	case Contains:
		return "Contains"
	case NotContains:
		return "NotContains"
	case Equals:
		return "Equals"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ParseKind accepts the rule-file spelling of a validator kind.
func ParseKind(s string) (Kind, error) {
	for k := Exists; k <= Equals; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown validator kind %q (expected Exists, NotExists, Contains, NotContains or Equals)", s)
}

// Between reports whether the kind inspects the text between two captures.
func (k Kind) Between() bool {
	return k == Contains || k == NotContains || k == Equals
}

// BetweenCaptures selects source[from.End:to.Start] and the pattern it is
// checked against.
type BetweenCaptures struct {
	From    string
	To      string
	Pattern *pattern.Text
}

// Validator is a compiled relational check.
type Validator struct {
	Kind Kind

	// Between is only used by Contains, NotContains and Equals.
	Between BetweenCaptures
}

// Failure describes a failed validation.
type Failure struct {
	// Expected describes the condition that should have held.
	Expected string

	// Actual is the text that was checked.
	Actual string

	// Span is the location of the checked text.
	Span nudge.Span
}

// Labels lists the capture labels the validator reads.
func (v Validator) Labels() []string {
	if !v.Kind.Between() {
		return nil
	}
	return []string{v.Between.From, v.Between.To}
}

// Validate checks one match's captures. It returns a nil Failure when the
// condition holds and an error when the captures cannot be checked at all.
func (v Validator) Validate(source string, captures []nudge.LabeledSpan) (*Failure, error) {
	switch v.Kind {
	case Exists:
		return nil, nil

	case NotExists:
		if len(captures) == 0 {
			return nil, nil
		}
		return &Failure{
			Expected: "pattern should not exist",
			Actual:   "pattern found",
			Span:     captures[0].Span,
		}, nil

	case Contains:
		between, span, err := extract(source, captures, v.Between.From, v.Between.To)
		if err != nil {
			return nil, err
		}
		if v.Between.Pattern.IsMatch(between) {
			return nil, nil
		}
		return &Failure{
			Expected: fmt.Sprintf("contains %q", v.Between.Pattern.String()),
			Actual:   between,
			Span:     span,
		}, nil

	case NotContains:
		between, span, err := extract(source, captures, v.Between.From, v.Between.To)
		if err != nil {
			return nil, err
		}
		if !v.Between.Pattern.IsMatch(between) {
			return nil, nil
		}
		return &Failure{
			Expected: fmt.Sprintf("does not contain %q", v.Between.Pattern.String()),
			Actual:   between,
			Span:     span,
		}, nil

	case Equals:
		between, span, err := extract(source, captures, v.Between.From, v.Between.To)
		if err != nil {
			return nil, err
		}
		if v.Between.Pattern.IsExactMatch(between) {
			return nil, nil
		}
		return &Failure{
			Expected: fmt.Sprintf("equals %q", v.Between.Pattern.String()),
			Actual:   between,
			Span:     span,
		}, nil

	default:
		return nil, fmt.Errorf("unknown validator kind %s", v.Kind)
	}
}

// extract returns the text between the end of the first capture labeled
// from and the start of the first capture labeled to.
func extract(source string, captures []nudge.LabeledSpan, from, to string) (string, nudge.Span, error) {
	fromCapture, ok := find(captures, from)
	if !ok {
		return "", nudge.Span{}, fmt.Errorf("%w: %q", ErrCaptureNotFound, from)
	}
	toCapture, ok := find(captures, to)
	if !ok {
		return "", nudge.Span{}, fmt.Errorf("%w: %q", ErrCaptureNotFound, to)
	}

	span := nudge.Span{Start: fromCapture.Span.End, End: toCapture.Span.Start}
	if span.Start > span.End {
		return "", nudge.Span{}, fmt.Errorf("%w: 'from' capture %q ends after 'to' capture %q starts", ErrCaptureOrder, from, to)
	}
	return span.Text(source), span, nil
}

func find(captures []nudge.LabeledSpan, label string) (nudge.LabeledSpan, bool) {
	for _, c := range captures {
		if c.Label == label {
			return c, true
		}
	}
	return nudge.LabeledSpan{}, false
}

// MatchFailure ties a failure to the match that produced it.
type MatchFailure struct {
	Match   nudge.Match
	Failure Failure
}

// Report summarizes validation over many matches.
type Report struct {
	// First is the representative violation; nil when every match passed.
	First *MatchFailure

	// Count is the number of failing matches.
	Count int
}

// Failed reports whether any match failed.
func (r Report) Failed() bool {
	return r.First != nil
}

// Check runs every validator over every match, in match order. A match
// counts once no matter how many of its validators fail; the first failing
// validator describes it. Errors stop the check immediately.
func Check(validators []Validator, source string, matches []nudge.Match) (Report, error) {
	var report Report
	for _, m := range matches {
		for _, v := range validators {
			failure, err := v.Validate(source, m.Captures)
			if err != nil {
				return Report{}, fmt.Errorf("validate %s at %s: %w", v.Kind, m.Span, err)
			}
			if failure == nil {
				continue
			}
			if report.First == nil {
				report.First = &MatchFailure{Match: m, Failure: *failure}
			}
			report.Count++
			break
		}
	}
	return report, nil
}

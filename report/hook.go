package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/attunehq/nudge"
)

// UserMessage is shown to the user when an operation is blocked.
const UserMessage = "Nudge blocked operation due to rule violation"

// HookOutput is the top level of a Claude Code hook response.
type HookOutput struct {
	// Continue stays true so the agent can react to the feedback instead
	// of halting until the next prompt.
	Continue       bool   `json:"continue"`
	StopReason     string `json:"stopReason"`
	SuppressOutput bool   `json:"suppressOutput"`
	SystemMessage  string `json:"systemMessage"`

	HookSpecificOutput *PreToolUseOutput `json:"hookSpecificOutput,omitempty"`
}

// PreToolUseOutput is the PreToolUse specific part of a hook response.
type PreToolUseOutput struct {
	HookEventName            string `json:"hookEventName"`
	PermissionDecision       string `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string `json:"additionalContext,omitempty"`
}

// Feedback is the text the agent receives: an annotated snippet of the
// inspected text followed by the aggregated rule messages.
func Feedback(ev nudge.Event, resp nudge.Response) string {
	var b strings.Builder
	if annotations := Annotations(resp.Violations()); len(annotations) > 0 {
		b.WriteString(Snippet(ev.Text, annotations, false))
	} else {
		b.WriteString("error: " + Title(len(resp.Outcomes)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(resp.Message)
	return b.String()
}

// NewHookOutput builds the PreToolUse envelope for resp. It returns nil for
// a passthrough, which must produce no output at all.
func NewHookOutput(ev nudge.Event, resp nudge.Response) *HookOutput {
	if resp.Decision == nudge.Passthrough {
		return nil
	}

	feedback := Feedback(ev, resp)
	specific := &PreToolUseOutput{HookEventName: string(nudge.HookPreToolUse)}
	switch resp.Decision {
	case nudge.Interrupt:
		specific.PermissionDecision = "deny"
		specific.PermissionDecisionReason = feedback
	case nudge.Continue:
		// Leaving the permission decision unset keeps the host's own
		// approval flow in charge.
		specific.AdditionalContext = feedback
	}
	return &HookOutput{
		Continue:           true,
		StopReason:         UserMessage,
		SystemMessage:      feedback,
		HookSpecificOutput: specific,
	}
}

// WriteHookResponse writes what the hook prints on stdout for resp.
// UserPromptSubmit responses are plain text, which the host adds to the
// prompt context.
func WriteHookResponse(w io.Writer, ev nudge.Event, resp nudge.Response) error {
	if resp.Decision == nudge.Passthrough {
		return nil
	}

	if ev.Hook == nudge.HookUserPromptSubmit {
		_, err := fmt.Fprintln(w, Feedback(ev, resp))
		return err
	}

	data, err := json.Marshal(NewHookOutput(ev, resp))
	if err != nil {
		return fmt.Errorf("encode hook response: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

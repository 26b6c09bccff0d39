package nudge

import (
	"encoding/json"
	"fmt"
)

// HookPayload is the JSON object Claude Code writes to a hook's stdin.
// Only the fields rules can look at are decoded.
type HookPayload struct {
	HookEventName  string    `json:"hook_event_name"`
	SessionID      string    `json:"session_id"`
	TranscriptPath string    `json:"transcript_path"`
	Cwd            string    `json:"cwd"`
	ToolName       string    `json:"tool_name"`
	ToolInput      ToolInput `json:"tool_input"`
	Prompt         string    `json:"prompt"`
}

// ToolInput is the union of the tool_input shapes of the tools rules inspect.
type ToolInput struct {
	FilePath  string `json:"file_path"`
	Content   string `json:"content"`
	OldString string `json:"old_string"`
	NewString string `json:"new_string"`
	URL       string `json:"url"`
	Command   string `json:"command"`
}

// DecodeHookPayload parses a hook payload into an Event. It reports false
// for hooks and tools that rules cannot target; those pass through
// untouched.
func DecodeHookPayload(data []byte) (Event, bool, error) {
	var p HookPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, false, fmt.Errorf("decode hook payload: %w", err)
	}
	return p.Event()
}

// Event converts the payload. See DecodeHookPayload.
func (p HookPayload) Event() (Event, bool, error) {
	hook, err := ParseHookKind(p.HookEventName)
	if err != nil {
		return Event{}, false, nil
	}

	var ev Event
	switch hook {
	case HookUserPromptSubmit:
		ev = PromptEvent(p.Prompt, p.Cwd)
	case HookPreToolUse:
		var text string
		switch p.ToolName {
		case ToolWrite:
			text = p.ToolInput.Content
		case ToolEdit:
			text = p.ToolInput.NewString
		case ToolWebFetch:
			text = p.ToolInput.URL
		case ToolBash:
			text = p.ToolInput.Command
		default:
			return Event{}, false, nil
		}
		ev = ToolEvent(p.ToolName, p.ToolInput.FilePath, text, p.Cwd)
	}
	ev.SessionID = p.SessionID
	return ev, true, nil
}

package nudge

import "fmt"

// HookKind is the agent lifecycle point that produced an event.
type HookKind string

const (
	HookPreToolUse       HookKind = "PreToolUse"
	HookUserPromptSubmit HookKind = "UserPromptSubmit"
)

// ParseHookKind validates a hook name as written in rule files and hook
// payloads.
func ParseHookKind(s string) (HookKind, error) {
	switch HookKind(s) {
	case HookPreToolUse, HookUserPromptSubmit:
		return HookKind(s), nil
	default:
		return "", fmt.Errorf("unknown hook %q (expected %s or %s)", s, HookPreToolUse, HookUserPromptSubmit)
	}
}

// Tool names whose payloads carry a text field rules can inspect.
const (
	ToolWrite    = "Write"
	ToolEdit     = "Edit"
	ToolWebFetch = "WebFetch"
	ToolBash     = "Bash"
)

// TextField names the payload field an event's Text was taken from. Rule
// entries use the same names as keys for their content matchers.
type TextField string

const (
	FieldContent    TextField = "content"
	FieldNewContent TextField = "new_content"
	FieldURL        TextField = "url"
	FieldCommand    TextField = "command"
	FieldPrompt     TextField = "prompt"
)

// FieldForTool returns the text field inspected for a tool, or false when
// the tool has no inspectable text.
func FieldForTool(tool string) (TextField, bool) {
	switch tool {
	case ToolWrite:
		return FieldContent, true
	case ToolEdit:
		return FieldNewContent, true
	case ToolWebFetch:
		return FieldURL, true
	case ToolBash:
		return FieldCommand, true
	default:
		return "", false
	}
}

// Event is one intercepted agent action reduced to what rules look at.
type Event struct {
	Hook HookKind
	Tool string

	// FilePath is empty for tools that do not touch files.
	FilePath string

	// Field names where Text came from.
	Field TextField
	Text  string

	// Cwd is the agent's working directory, used for project state.
	Cwd       string
	SessionID string
}

// PromptEvent builds a UserPromptSubmit event.
func PromptEvent(prompt, cwd string) Event {
	return Event{Hook: HookUserPromptSubmit, Field: FieldPrompt, Text: prompt, Cwd: cwd}
}

// ToolEvent builds a PreToolUse event, choosing the text field from the tool
// name. Tools without text still produce an event so activation can run.
func ToolEvent(tool, filePath, text, cwd string) Event {
	field, _ := FieldForTool(tool)
	return Event{
		Hook:     HookPreToolUse,
		Tool:     tool,
		FilePath: filePath,
		Field:    field,
		Text:     text,
		Cwd:      cwd,
	}
}

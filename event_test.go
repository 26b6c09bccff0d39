package nudge_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge"
)

func TestToolEvent(t *testing.T) {
	tests := []struct {
		tool  string
		field nudge.TextField
	}{
		{nudge.ToolWrite, nudge.FieldContent},
		{nudge.ToolEdit, nudge.FieldNewContent},
		{nudge.ToolWebFetch, nudge.FieldURL},
		{nudge.ToolBash, nudge.FieldCommand},
		{"Read", ""},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			ev := nudge.ToolEvent(tt.tool, "src/main.rs", "text", "/repo")
			assert.Equal(t, nudge.HookPreToolUse, ev.Hook)
			assert.Equal(t, tt.field, ev.Field)
			assert.Equal(t, "src/main.rs", ev.FilePath)
		})
	}
}

func TestPromptEvent(t *testing.T) {
	ev := nudge.PromptEvent("hello", "/repo")
	assert.Equal(t, nudge.Event{
		Hook:  nudge.HookUserPromptSubmit,
		Field: nudge.FieldPrompt,
		Text:  "hello",
		Cwd:   "/repo",
	}, ev)
}

func TestParseHookKind(t *testing.T) {
	h, err := nudge.ParseHookKind("UserPromptSubmit")
	require.NoError(t, err)
	assert.Equal(t, nudge.HookUserPromptSubmit, h)

	_, err = nudge.ParseHookKind("PostToolUse")
	assert.ErrorContains(t, err, `unknown hook "PostToolUse"`)
}

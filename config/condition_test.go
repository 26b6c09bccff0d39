package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attunehq/nudge"
)

func TestCondition_Eval(t *testing.T) {
	ev := nudge.ToolEvent("Bash", "", "rm -rf build", "/repo")

	tests := []struct {
		expr string
		want bool
	}{
		{`tool == "Bash"`, true},
		{`tool == "Write"`, false},
		{`hook == "PreToolUse" && text.contains("rm -rf")`, true},
		{`cwd.startsWith("/repo")`, true},
		{`file == ""`, true},
		{`text.lowerAscii().matches("^rm ")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := CompileCondition(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.expr, cond.String())

			got, err := cond.Eval(context.Background(), ev)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCondition_Glob(t *testing.T) {
	cond, err := CompileCondition(`glob("**/*_test.go", file)`)
	require.NoError(t, err)

	ok, err := cond.Eval(context.Background(), nudge.ToolEvent("Write", "pkg/a/a_test.go", "", ""))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cond.Eval(context.Background(), nudge.ToolEvent("Write", "pkg/a/a.go", "", ""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCompileCondition_Errors(t *testing.T) {
	_, err := CompileCondition(`tool`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must evaluate to bool")

	_, err = CompileCondition(`tool ==`)
	require.Error(t, err)

	_, err = CompileCondition(`branch == "main"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "branch")
}

package config

import (
	"context"
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/ext"

	"github.com/attunehq/nudge"
)

// Condition is a compiled CEL expression gating a rule entry. The
// expression sees the event as the string variables hook, tool, file,
// text and cwd, plus a glob(pattern, path) function.
type Condition struct {
	source  string
	program cel.Program
}

var (
	conditionEnvOnce sync.Once
	conditionEnv     *cel.Env
	conditionEnvErr  error
)

func newConditionEnv() (*cel.Env, error) {
	conditionEnvOnce.Do(func() {
		conditionEnv, conditionEnvErr = cel.NewEnv(
			ext.Strings(),
			cel.Variable("hook", cel.StringType),
			cel.Variable("tool", cel.StringType),
			cel.Variable("file", cel.StringType),
			cel.Variable("text", cel.StringType),
			cel.Variable("cwd", cel.StringType),
			cel.Function("glob",
				cel.Overload("glob_string_string",
					[]*cel.Type{cel.StringType, cel.StringType},
					cel.BoolType,
					cel.BinaryBinding(func(pattern, path ref.Val) ref.Val {
						p, _ := pattern.Value().(string)
						s, _ := path.Value().(string)
						ok, _ := doublestar.Match(p, s)
						return types.Bool(ok)
					}),
				),
			),
		)
	})
	return conditionEnv, conditionEnvErr
}

// CompileCondition type-checks expr and requires it to produce a bool.
func CompileCondition(expr string) (*Condition, error) {
	env, err := newConditionEnv()
	if err != nil {
		return nil, fmt.Errorf("cel environment: %w", err)
	}

	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return nil, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression must evaluate to bool, got %s", ast.OutputType())
	}

	prg, err := env.Program(ast, cel.InterruptCheckFrequency(100))
	if err != nil {
		return nil, err
	}
	return &Condition{source: expr, program: prg}, nil
}

func (c *Condition) String() string {
	return c.source
}

// Eval reports whether the condition holds for ev.
func (c *Condition) Eval(ctx context.Context, ev nudge.Event) (bool, error) {
	out, _, err := c.program.ContextEval(ctx, map[string]any{
		"hook": string(ev.Hook),
		"tool": ev.Tool,
		"file": ev.FilePath,
		"text": ev.Text,
		"cwd":  ev.Cwd,
	})
	if err != nil {
		return false, fmt.Errorf("when %q: %w", c.source, err)
	}
	b, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("when %q: result is %T, not bool", c.source, out.Value())
	}
	return b, nil
}

package pattern

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/logging"
)

// DefaultExternalTimeout bounds a single external command run.
const DefaultExternalTimeout = 10 * time.Second

// ErrExternalTimeout is returned when an external command outlives its
// timeout. The command's rule is excluded from the aggregate.
var ErrExternalTimeout = errors.New("external command timed out")

// External pipes the target to a command on stdin. A nonzero exit status
// means the target matched.
type External struct {
	argv    []string
	timeout time.Duration
}

// NewExternal validates argv. A zero timeout selects DefaultExternalTimeout.
func NewExternal(argv []string, timeout time.Duration) (*External, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, errors.New("external command must name a program")
	}
	if timeout <= 0 {
		timeout = DefaultExternalTimeout
	}
	return &External{argv: append([]string(nil), argv...), timeout: timeout}, nil
}

// Command reconstructs the command line for messages.
func (e *External) Command() string {
	return strings.Join(e.argv, " ")
}

func (e *External) String() string {
	return e.Command()
}

// Timeout returns the per-run bound.
func (e *External) Timeout() time.Duration {
	return e.timeout
}

// Output is the observable result of one external command run.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Matched reports whether the run counts as a match.
func (o Output) Matched() bool {
	return o.ExitCode != 0
}

// FindAll runs the command against target. A match covers the whole target
// since the command reports no location. Results are shared through cache
// when it is not nil.
func (e *External) FindAll(ctx context.Context, target string, cache *ResultCache) (nudge.Matches, Output, error) {
	var (
		out Output
		err error
	)
	if cache != nil {
		out, err = cache.Do(e.argv, target, func() (Output, error) {
			return e.run(ctx, target)
		})
	} else {
		out, err = e.run(ctx, target)
	}
	if err != nil {
		return nudge.NoMatches(), out, err
	}

	if !out.Matched() {
		return nudge.NoMatches(), out, nil
	}
	return nudge.UnlabeledMatches([]nudge.Span{{Start: 0, End: len(target)}}), out, nil
}

func (e *External) run(ctx context.Context, target string) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.argv[0], e.argv[1:]...)
	cmd.Stdin = strings.NewReader(target)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Children that inherit the pipes must not keep Wait blocked past the
	// deadline.
	cmd.WaitDelay = time.Second

	logger := logging.With().Str("command", e.Command()).Logger()
	logger.Trace().Int("bytes", len(target)).Msg("running external matcher")

	start := time.Now()
	err := cmd.Run()
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Output{}, fmt.Errorf("%w after %s: %s", ErrExternalTimeout, e.timeout, e.Command())
		}
		return Output{}, ctx.Err()
	}

	out := Output{}
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		out.ExitCode = exitErr.ExitCode()
	default:
		return Output{}, fmt.Errorf("run external command %q: %w", e.Command(), err)
	}

	if !utf8.Valid(stdout.Bytes()) || !utf8.Valid(stderr.Bytes()) {
		return Output{}, fmt.Errorf("external command %q produced non-UTF-8 output", e.Command())
	}
	out.Stdout = stdout.String()
	out.Stderr = stderr.String()

	logger.Debug().
		Int("exit_code", out.ExitCode).
		Dur("elapsed", time.Since(start)).
		Msg("external matcher finished")
	return out, nil
}

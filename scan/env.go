package scan

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// env is the ambient project state for one evaluation. The branch is looked
// up at most once and shared by every rule.
type env struct {
	lookup BranchFunc
	cwd    string
	logger zerolog.Logger

	once   sync.Once
	branch string
	ok     bool
}

func newEnv(lookup BranchFunc, cwd string, logger zerolog.Logger) *env {
	return &env{lookup: lookup, cwd: cwd, logger: logger}
}

// Branch returns the current branch, or false when it cannot be determined.
// Failures are logged once and treated as "no match" by callers.
func (e *env) Branch(ctx context.Context) (string, bool) {
	e.once.Do(func() {
		if e.lookup == nil || e.cwd == "" {
			e.logger.Warn().Msg("no working directory to read git branch from")
			return
		}
		branch, err := e.lookup(ctx, e.cwd)
		if err != nil {
			e.logger.Warn().Err(err).Str("cwd", e.cwd).Msg("could not determine git branch")
			return
		}
		e.branch, e.ok = branch, true
	})
	return e.branch, e.ok
}

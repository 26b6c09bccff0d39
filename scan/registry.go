// Package scan evaluates compiled rules against agent events and files.
package scan

import (
	"context"
	"fmt"
	"runtime/debug"
	"slices"

	"github.com/fatih/semgroup"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/attunehq/nudge"
	"github.com/attunehq/nudge/config"
	"github.com/attunehq/nudge/logging"
	"github.com/attunehq/nudge/pattern"
	"github.com/attunehq/nudge/sources/git"
)

// DefaultConcurrency bounds concurrent rule evaluation when none is set.
const DefaultConcurrency = 8

// BranchFunc reports the current VCS branch for a working directory.
type BranchFunc func(ctx context.Context, dir string) (string, error)

// Registry is the ordered set of rules for one invocation. It is read-only
// once built and safe for concurrent use.
type Registry struct {
	Rules []config.CompiledRule

	// Concurrency caps how many rules are evaluated at once.
	Concurrency int

	// Branch resolves project state for Git gated entries. Nil means
	// git.CurrentBranch.
	Branch BranchFunc

	// Cache shares external command results across rules and files. May be
	// nil.
	Cache *pattern.ResultCache
}

// NewRegistry builds a registry with the default branch lookup and a fresh
// external result cache.
func NewRegistry(rules []config.CompiledRule, concurrency int) *Registry {
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}
	return &Registry{
		Rules:       rules,
		Concurrency: concurrency,
		Branch:      git.CurrentBranch,
		Cache:       pattern.NewResultCache(),
	}
}

// Rule returns the first rule with the given name.
func (r *Registry) Rule(name string) (config.CompiledRule, bool) {
	for _, rule := range r.Rules {
		if rule.Name == name {
			return rule, true
		}
	}
	return config.CompiledRule{}, false
}

// Only returns a registry restricted to the named rules, keeping
// declaration order.
func (r *Registry) Only(names ...string) (*Registry, error) {
	out := *r
	out.Rules = nil
	for _, rule := range r.Rules {
		if slices.Contains(names, rule.Name) {
			out.Rules = append(out.Rules, rule)
		}
	}
	for _, name := range names {
		if _, ok := out.Rule(name); !ok {
			return nil, fmt.Errorf("no rule named %q", name)
		}
	}
	return &out, nil
}

// Evaluate runs every rule against ev and aggregates the ones that fired.
// Rules run concurrently but outcomes keep declaration order. A rule that
// fails to evaluate is logged and left out. A cancelled context yields
// Passthrough.
func (r *Registry) Evaluate(ctx context.Context, ev nudge.Event) nudge.Response {
	logger := logging.With().
		Str("eval_id", uuid.NewString()).
		Str("hook", string(ev.Hook)).
		Str("tool", ev.Tool).
		Logger()
	logger.Debug().Int("rules", len(r.Rules)).Msg("evaluating event")

	concurrency := r.Concurrency
	if concurrency < 1 {
		concurrency = DefaultConcurrency
	}

	env := newEnv(r.Branch, ev.Cwd, logger)
	outcomes := make([]*nudge.Outcome, len(r.Rules))
	sg := semgroup.NewGroup(ctx, int64(concurrency))
	for i := range r.Rules {
		rule := &r.Rules[i]
		sg.Go(func() error {
			outcomes[i] = r.evaluateSafely(ctx, env, rule, ev, logger)
			return nil
		})
	}
	_ = sg.Wait()

	if err := ctx.Err(); err != nil {
		logger.Warn().Err(err).Msg("evaluation aborted, passing through")
		return nudge.PassthroughResponse(fmt.Sprintf("evaluation aborted: %s", err))
	}

	fired := make([]nudge.Outcome, 0, len(outcomes))
	for _, o := range outcomes {
		if o != nil {
			fired = append(fired, *o)
		}
	}
	resp := nudge.Aggregate(fired)
	logger.Debug().Stringer("decision", resp.Decision).Int("fired", len(fired)).Msg("evaluated event")
	return resp
}

// evaluateSafely isolates one rule so that its errors and panics exclude
// only that rule.
func (r *Registry) evaluateSafely(ctx context.Context, env *env, rule *config.CompiledRule, ev nudge.Event, logger zerolog.Logger) (out *nudge.Outcome) {
	logger = logger.With().Str("rule", rule.Name).Logger()
	defer func() {
		if p := recover(); p != nil {
			logger.Error().
				Interface("panic", p).
				Bytes("stack", debug.Stack()).
				Msg("rule panicked, excluding it")
			out = nil
		}
	}()

	out, err := evaluateRule(ctx, env, r.Cache, rule, ev)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn().Err(err).Msg("rule failed to evaluate, excluding it")
		}
		return nil
	}
	if out != nil {
		logger.Debug().Str("action", string(out.Action)).Msg("rule fired")
	}
	return out
}

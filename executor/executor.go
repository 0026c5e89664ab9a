// Package executor runs one action end-to-end against a browser adapter,
// producing an ActionResult (§4.6). It is the only subsystem that
// suspends on I/O (inside a browser-adapter call) and the only one aware
// of the other four subsystems together.
package executor

import (
	"context"
	"log/slog"
	"time"

	"actiond"
	"actiond/adapter"
	"actiond/expr"
	"actiond/schema"
	"actiond/selector"
	"actiond/version"
)

// Registry is the subset of loader.Registry the executor depends on,
// declared locally so this package doesn't import loader (loader depends
// on schema, not on executor; keeping the dependency one-directional
// avoids a cycle and keeps the executor testable against a fake index).
type Registry interface {
	GetAction(fullName string) (actiond.Action, bool)
	GetNamespace(name string) (*actiond.Namespace, bool)
}

// Limits holds the process-wide defaults of §5 "Limits", overridable per
// namespace (never loosened) by that namespace's compatibility block.
type Limits struct {
	MaxDepth      int
	MaxSteps      int
	StepTimeout   time.Duration
	ActionTimeout time.Duration
}

// DefaultLimits returns §5's documented defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxDepth:      10,
		MaxSteps:      100,
		StepTimeout:   30 * time.Second,
		ActionTimeout: 300 * time.Second,
	}
}

// Executor runs actions looked up from a Registry against a
// BrowserAdapter. One Executor is shared across concurrent top-level
// invocations (§5 "share only the immutable Registry"); all per-
// invocation state lives in actiond.Context, not here.
type Executor struct {
	log      *slog.Logger
	registry Registry
	adapter  adapter.BrowserAdapter
	limits   Limits
	selStats *selector.Stats
}

// New builds an Executor. adapter may be an adapter.Fake for dry-run-only
// or test use.
func New(log *slog.Logger, registry Registry, ba adapter.BrowserAdapter, limits Limits) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{log: log, registry: registry, adapter: ba, limits: limits, selStats: selector.NewStats()}
}

// SelectorStats exposes the resolver health counters accumulated across
// every invocation this Executor has run (§ SUPPLEMENTED FEATURES).
func (e *Executor) SelectorStats() map[string]selector.EntryStats {
	return e.selStats.Snapshot()
}

// RunOptions configures one top-level invocation.
type RunOptions struct {
	Env       map[string]any
	DebugMode bool
	DryRun    bool
}

// Run resolves fullName, validates params, and executes the action
// top-level (depth 0). See execute for the recursive form `run` steps use.
// The trace is returned only when opts.DebugMode or opts.DryRun is set.
func (e *Executor) Run(ctx context.Context, fullName string, params map[string]any, opts RunOptions) *actiond.ActionResult {
	dispatched := 0
	result := e.execute(ctx, fullName, params, opts, 0, &dispatched)
	if !opts.DebugMode && !opts.DryRun {
		result.Trace = nil
	}
	return result
}

// execute is §4.6's full lifecycle, steps 1-7.
func (e *Executor) execute(ctx context.Context, fullName string, params map[string]any, opts RunOptions, depth int, dispatched *int) *actiond.ActionResult {
	// 1. Resolve action, transparently retargeting deprecated aliases.
	action, ns, actionErr := e.resolveAction(fullName)
	if actionErr != nil {
		return &actiond.ActionResult{Success: false, Error: actionErr}
	}

	limits := e.limitsFor(ns)

	if depth > limits.MaxDepth {
		return &actiond.ActionResult{Success: false, Error: actiond.NewActionErrorf(actiond.ErrMaxDepthExceeded,
			"recursion depth %d exceeds maxDepth %d", depth, limits.MaxDepth).WithAction(action.FullName)}
	}

	// 2. Validate params.
	resolvedParams, paramErrs, warnings := schema.ValidateParams(action.Params, params)
	for _, w := range warnings {
		e.log.Warn("action.run: parameter warning", "action", action.FullName, "warning", w)
	}
	if len(paramErrs) > 0 {
		err := paramErrs[0]
		err.Action = action.FullName
		return &actiond.ActionResult{Success: false, Error: err}
	}

	// 3. Build context.
	env := make(map[string]actiond.Value, len(opts.Env))
	for k, v := range opts.Env {
		env[k] = v
	}
	paramValues := make(map[string]actiond.Value, len(resolvedParams))
	for k, v := range resolvedParams {
		paramValues[k] = v
	}

	baseSelectors := mergeSelectors(ns, action)

	execCtx := actiond.NewContext(ctx, paramValues, env, baseSelectors, depth, dispatched)
	execCtx.MaxDepth = limits.MaxDepth
	execCtx.MaxSteps = limits.MaxSteps
	execCtx.StepTimeout = limits.StepTimeout
	execCtx.ActionTimeout = limits.ActionTimeout
	execCtx.DebugMode = opts.DebugMode
	execCtx.DryRun = opts.DryRun

	actionCtx, cancel := execCtx.WithTimeout(limits.ActionTimeout)
	defer cancel()

	// 4. Apply version overrides.
	if ns.Compatibility != nil {
		if err := e.applyVersionCompat(ctx, ns, actionCtx); err != nil {
			err.Action = action.FullName
			return &actiond.ActionResult{Success: false, Error: err}
		}
	}

	// 5. Iterate steps.
	var trace []actiond.TraceEntry
	var planned []PlannedStep
	for i, step := range action.Steps {
		if *dispatched >= limits.MaxSteps {
			return &actiond.ActionResult{Success: false, Error: actiond.NewActionErrorf(actiond.ErrMaxStepsExceeded,
				"total dispatched steps exceeds maxSteps %d", limits.MaxSteps).WithAction(action.FullName), Trace: trace}
		}
		if err := actionCtx.Err(); err != nil {
			return &actiond.ActionResult{Success: false, Error: actiond.NewActionErrorf(actiond.ErrTimeout,
				"action timed out before step %d", i).WithAction(action.FullName), Trace: trace}
		}

		outcome, stepErr := e.runStep(actionCtx, action, step, i, depth)
		trace = append(trace, outcome.traces...)
		if outcome.planned != nil {
			planned = append(planned, *outcome.planned)
		}
		if stepErr != nil {
			stepErr.Action = action.FullName
			return &actiond.ActionResult{Success: false, Error: stepErr, Trace: trace}
		}
		if outcome.skipped {
			continue
		}
		if step.Output != "" {
			actionCtx.Steps[step.Output] = outcome.value
		}
	}

	if opts.DryRun {
		return &actiond.ActionResult{Success: true, Data: map[string]any{"planned": plannedToAny(planned)}, Trace: trace}
	}

	// 6. Run verify list.
	scopes := scopesFromContext(actionCtx)
	for _, v := range action.Verify {
		ok, err := expr.EvaluateConditionWithScopes(v.Condition, scopes)
		if err != nil {
			return &actiond.ActionResult{Success: false, Error: actiond.NewActionErrorf(actiond.ErrExpressionError,
				"verify condition %q: %v", v.Condition, err).WithAction(action.FullName), Trace: trace}
		}
		if !ok {
			return &actiond.ActionResult{Success: false, Error: actiond.NewActionErrorf(actiond.ErrVerifyFailed, "%s", v.Message).WithAction(action.FullName), Trace: trace}
		}
	}

	// 7. Assemble returns.
	data := map[string]any{}
	for name, tmpl := range action.Returns {
		val, err := expr.Resolve(tmpl, scopes)
		if err != nil {
			return &actiond.ActionResult{Success: false, Error: actiond.NewActionErrorf(actiond.ErrExpressionError,
				"returns.%s: %v", name, err).WithAction(action.FullName), Trace: trace}
		}
		data[name] = val
	}

	return &actiond.ActionResult{Success: true, Data: data, Trace: trace}
}

const maxAliasHops = 10

// resolveAction looks up fullName, transparently following a chain of
// deprecated aliasOf retargets (§4.6 step 1). A chain longer than
// maxAliasHops is treated as misconfiguration, not an infinite loop.
func (e *Executor) resolveAction(fullName string) (actiond.Action, *actiond.Namespace, *actiond.ActionError) {
	name := fullName
	for hop := 0; hop < maxAliasHops; hop++ {
		action, ok := e.registry.GetAction(name)
		if !ok {
			return actiond.Action{}, nil, actiond.NewActionErrorf(actiond.ErrActionNotFound, "action %q not found", name)
		}
		if action.Deprecated && action.AliasOf != "" {
			name = action.AliasOf
			continue
		}
		ns, ok := e.registry.GetNamespace(action.Namespace)
		if !ok {
			return actiond.Action{}, nil, actiond.NewActionErrorf(actiond.ErrActionNotFound, "namespace %q not found for action %q", action.Namespace, action.FullName)
		}
		return action, ns, nil
	}
	return actiond.Action{}, nil, actiond.NewActionErrorf(actiond.ErrActionNotFound, "aliasOf chain from %q exceeds %d hops", fullName, maxAliasHops)
}

func (e *Executor) limitsFor(ns *actiond.Namespace) Limits {
	limits := e.limits
	if ns.Compatibility == nil {
		return limits
	}
	// Namespace overrides may only tighten, never loosen (§ SUPPLEMENTED
	// FEATURES maxSteps/maxDepth rule).
	if d := ns.Compatibility.MaxDepth; d > 0 && d < limits.MaxDepth {
		limits.MaxDepth = d
	}
	if s := ns.Compatibility.MaxSteps; s > 0 && s < limits.MaxSteps {
		limits.MaxSteps = s
	}
	return limits
}

func (e *Executor) applyVersionCompat(ctx context.Context, ns *actiond.Namespace, execCtx *actiond.Context) *actiond.ActionError {
	compat := ns.Compatibility
	detected, ok := version.Detect(ctx, e.adapter, compat.Detect)
	if !ok {
		return nil
	}
	if compat.MinVersion != "" || compat.MaxVersion != "" {
		if rangeErr := version.CheckRange(detected, compat.MinVersion, compat.MaxVersion); rangeErr != nil {
			return rangeErr
		}
	}
	merged, err := version.ApplyOverrides(execCtx.Selectors, detected, compat.VersionOverrides)
	if err != nil {
		return actiond.NewActionErrorf(actiond.ErrVersionIncompatible, "%v", err)
	}
	execCtx.Selectors = merged
	return nil
}

func mergeSelectors(ns *actiond.Namespace, a actiond.Action) map[string]actiond.SelectorDef {
	out := make(map[string]actiond.SelectorDef, len(ns.Selectors)+len(a.Selectors))
	for k, v := range ns.Selectors {
		out[k] = v
	}
	for k, v := range a.Selectors {
		out[k] = v
	}
	return out
}

// scopesFromContext builds the four-scope struct expr evaluation needs from
// Context.Root — the fallback chain of a selector only matters to the
// resolver itself, which reads actiond.Context.Selectors directly, so
// templates only ever see each alias's primary locator.
func scopesFromContext(c *actiond.Context) expr.Scopes {
	params, _ := c.Root(actiond.ScopeParams)
	env, _ := c.Root(actiond.ScopeEnv)
	selectors, _ := c.Root(actiond.ScopeSelectors)
	steps, _ := c.Root(actiond.ScopeSteps)
	return expr.Scopes{Params: params, Env: env, Selectors: selectors, Steps: steps}
}

func plannedToAny(planned []PlannedStep) []map[string]any {
	out := make([]map[string]any, len(planned))
	for i, p := range planned {
		m := map[string]any{"index": p.Index, "stepAction": p.StepAction, "resolvedArgs": p.ResolvedArgs}
		if p.Skipped {
			m["skipped"] = true
		}
		out[i] = m
	}
	return out
}

package executor

import (
	"errors"
	"fmt"
	"time"

	"actiond"
	"actiond/adapter"
	"actiond/expr"
	"actiond/selector"
)

// stepOutcome is what running one step (successfully, skipped, or planned
// for dry-run) contributes back to the action's overall trace/state.
type stepOutcome struct {
	traces  []actiond.TraceEntry
	planned *PlannedStep
	skipped bool
	value   any
}

// PlannedStep is one entry of a dry-run's plan: what would have been
// dispatched, with args fully interpolated, and nothing sent to the
// browser adapter.
type PlannedStep struct {
	Index        int
	StepAction   string
	ResolvedArgs map[string]any
	Skipped      bool
}

// runStep evaluates `when`, interpolates args, and — unless the
// invocation is a dry run — dispatches the step through the retry/
// fallback/onError state machine (§4.6).
func (e *Executor) runStep(actionCtx *actiond.Context, action actiond.Action, step actiond.Step, index, depth int) (stepOutcome, *actiond.ActionError) {
	scopes := scopesFromContext(actionCtx)

	if step.When != "" {
		ok, err := expr.EvaluateConditionWithScopes(step.When, scopes)
		if err != nil {
			return stepOutcome{}, actiond.NewActionErrorf(actiond.ErrExpressionError, "when: %v", err).WithStep(step.Output, step.Action)
		}
		if !ok {
			if actionCtx.DryRun {
				return stepOutcome{skipped: true, planned: &PlannedStep{Index: index, StepAction: step.Action, Skipped: true}}, nil
			}
			return stepOutcome{skipped: true, traces: []actiond.TraceEntry{{Index: index, StepAction: step.Action, Skipped: true}}}, nil
		}
	}

	resolved, err := expr.ResolveObject(step.Args, scopes)
	if err != nil {
		return stepOutcome{}, actiond.NewActionErrorf(actiond.ErrExpressionError, "args: %v", err).WithStep(step.Output, step.Action)
	}
	resolvedArgs, _ := resolved.(map[string]any)

	if actionCtx.DryRun {
		return stepOutcome{planned: &PlannedStep{Index: index, StepAction: step.Action, ResolvedArgs: resolvedArgs}}, nil
	}

	*actionCtx.StepsDispatched++

	start := time.Now()
	value, usedSelector, lastErr, abort := e.attemptStep(actionCtx, action, step, resolvedArgs, depth)
	entry := actiond.TraceEntry{
		Index:        index,
		StepAction:   step.Action,
		DurationMS:   time.Since(start).Milliseconds(),
		Success:      lastErr == nil,
		SelectorUsed: usedSelector,
		Args:         redactArgs(action, step, resolvedArgs),
	}
	if lastErr != nil {
		entry.Error = lastErr.Error()
	}

	if abort {
		lastErr.WithStep(step.Output, step.Action)
		return stepOutcome{traces: []actiond.TraceEntry{entry}}, lastErr
	}
	return stepOutcome{traces: []actiond.TraceEntry{entry}, value: value}, nil
}

// dispatchStep performs the single browser-adapter call (or recursion, or
// raise) named by step.Action, over the closed §6 vocabulary. The switch
// covers the whole vocabulary (§9 "Polymorphism of steps"); structural
// validation rejects any other action, and the default branch reports one
// that still gets here as STEP_FAILED.
func (e *Executor) dispatchStep(actionCtx *actiond.Context, action actiond.Action, step actiond.Step, args map[string]any, depth int) (any, string, *actiond.ActionError) {
	switch step.Action {
	case "open":
		url, _ := argString(args, "url")
		if err := e.adapter.Open(actionCtx, url); err != nil {
			return nil, "", translateErr(err)
		}
		return nil, "", nil

	case "click":
		res, locErr := e.resolveSelector(actionCtx, args)
		if locErr != nil {
			return nil, "", locErr
		}
		if err := e.adapter.Click(actionCtx, res.Locator); err != nil {
			return nil, res.Locator, translateErr(err)
		}
		return nil, res.Locator, nil

	case "fill":
		res, locErr := e.resolveSelector(actionCtx, args)
		if locErr != nil {
			return nil, "", locErr
		}
		value, _ := argString(args, "value")
		if err := e.adapter.Fill(actionCtx, res.Locator, value); err != nil {
			return nil, res.Locator, translateErr(err)
		}
		return nil, res.Locator, nil

	case "type":
		res, locErr := e.resolveSelector(actionCtx, args)
		if locErr != nil {
			return nil, "", locErr
		}
		text, _ := argString(args, "text")
		if err := e.adapter.Type(actionCtx, res.Locator, text); err != nil {
			return nil, res.Locator, translateErr(err)
		}
		return nil, res.Locator, nil

	case "press":
		key, _ := argString(args, "key")
		if err := e.adapter.Press(actionCtx, key); err != nil {
			return nil, "", translateErr(err)
		}
		return nil, "", nil

	case "wait":
		cond := adapter.WaitCondition{}
		cond.Selector, _ = argString(args, "selector")
		cond.URL, _ = argString(args, "url")
		cond.State, _ = argString(args, "state")
		cond.Hidden, _ = argBool(args, "hidden")
		if ms, ok := argFloat(args, "time"); ok {
			cond.Time = time.Duration(ms) * time.Millisecond
		}
		if ms, ok := argFloat(args, "timeout"); ok {
			cond.Timeout = time.Duration(ms) * time.Millisecond
		}
		if err := e.adapter.Wait(actionCtx, cond); err != nil {
			return nil, cond.Selector, translateErr(err)
		}
		return nil, cond.Selector, nil

	case "snapshot":
		opts := adapter.SnapshotOptions{}
		opts.Selector, _ = argString(args, "selector")
		opts.Interactive, _ = argBool(args, "interactive")
		result, err := e.adapter.Snapshot(actionCtx, opts)
		if err != nil {
			return nil, opts.Selector, translateErr(err)
		}
		return result, opts.Selector, nil

	case "find":
		return e.dispatchFind(actionCtx, args)

	case "eval":
		expression, _ := argString(args, "expression")
		result, err := e.adapter.Eval(actionCtx, expression)
		if err != nil {
			return nil, "", translateErr(err)
		}
		return result, "", nil

	case "run":
		target, _ := argString(args, "action")
		runParams, _ := args["params"].(map[string]any)
		result := e.execute(actionCtx, target, runParams, RunOptions{DebugMode: actionCtx.DebugMode}, depth+1, actionCtx.StepsDispatched)
		if !result.Success {
			return nil, "", result.Error.WithCause(fmt.Errorf("nested run %q failed", target))
		}
		return result.Data, "", nil

	case "fail":
		message, _ := argString(args, "message")
		if message == "" {
			message = "explicit fail step"
		}
		return nil, "", actiond.NewActionError(actiond.ErrStepFailed, message)

	default:
		return nil, "", actiond.NewActionErrorf(actiond.ErrStepFailed, "unrecognized step action %q", step.Action)
	}
}

// dispatchFind decomposes a find+subAction step into its two logical
// effects — the locate and the follow-on interaction — as two adapter
// calls under one step entry (§9 Open Question: "find with an attached
// subAction"; this implementation decomposes rather than staying atomic,
// since a subAction failure needs to be attributable to the interaction,
// not the lookup). The caller still sees one trace entry per dispatch;
// runStep's single TraceEntry records only the final dispatched op's
// selector, since that's what actually determined success or failure.
func (e *Executor) dispatchFind(actionCtx *actiond.Context, args map[string]any) (any, string, *actiond.ActionError) {
	query := adapter.FindQuery{}
	query.Type, _ = argString(args, "type")
	query.Value, _ = argString(args, "value")
	query.SubAction, _ = argString(args, "subAction")
	if attrs, ok := args["attributes"].(map[string]any); ok {
		converted := make(map[string]string, len(attrs))
		for k, v := range attrs {
			if s, ok := v.(string); ok {
				converted[k] = s
			} else {
				converted[k] = fmt.Sprint(v)
			}
		}
		query.Attributes = converted
	}

	result, err := e.adapter.Find(actionCtx, query)
	if err != nil {
		return nil, "", translateErr(err)
	}
	if query.SubAction == "" {
		return result, "", nil
	}

	locator := query.Value
	switch query.SubAction {
	case "click":
		if err := e.adapter.Click(actionCtx, locator); err != nil {
			return nil, locator, translateErr(err)
		}
	case "fill":
		value, _ := argString(args, "value2")
		if err := e.adapter.Fill(actionCtx, locator, value); err != nil {
			return nil, locator, translateErr(err)
		}
	case "type":
		text, _ := argString(args, "text")
		if err := e.adapter.Type(actionCtx, locator, text); err != nil {
			return nil, locator, translateErr(err)
		}
	default:
		return nil, locator, actiond.NewActionErrorf(actiond.ErrStepFailed, "find: unsupported subAction %q", query.SubAction)
	}
	return result, locator, nil
}

// resolveSelector accepts either of §4.5's two selector-reference forms: an
// alias declared under the action/namespace's selectors block, or (when name
// isn't a declared alias) name itself treated as a bare literal selector
// string. A definition with no fallback entries is used as-is, without a
// TryLocate probe: the action call itself reports a missing element. Only
// a fallback chain is walked through selector.Resolve.
func (e *Executor) resolveSelector(actionCtx *actiond.Context, args map[string]any) (selector.Resolution, *actiond.ActionError) {
	name, _ := argString(args, "selector")
	def, ok := actionCtx.Selectors[name]
	if !ok {
		def = actiond.SelectorDef{Primary: name}
	}
	if len(def.Fallback) == 0 {
		return selector.Resolution{Locator: selector.Normalize(def.Primary)}, nil
	}
	res, err := selector.Resolve(actionCtx, e.adapter, def, actionCtx.StepTimeout, e.selStats)
	if err != nil {
		return selector.Resolution{}, actiond.NewActionErrorf(actiond.ErrElementNotFound, "%v", err)
	}
	return res, nil
}

// translateErr wraps a raw adapter error as STEP_FAILED unless the
// adapter tagged it with a DispatchError carrying a more specific code.
func translateErr(err error) *actiond.ActionError {
	var de *DispatchError
	if errors.As(err, &de) {
		return actiond.NewActionErrorf(de.Code, "%v", de.Err).WithCause(de)
	}
	return actiond.NewActionErrorf(actiond.ErrStepFailed, "%v", err).WithCause(err)
}

func argString(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	default:
		return fmt.Sprint(s), true
	}
}

func argBool(args map[string]any, key string) (bool, bool) {
	v, ok := args[key]
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

func argFloat(args map[string]any, key string) (float64, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

package executor

import (
	"context"
	"errors"
	"time"

	"actiond"
	"actiond/expr"
)

const (
	defaultRetryDelay = time.Second
	maxDelayMultiple  = 8 // cap on the doubling schedule, in units of the base delay
)

// computeDelay returns the wait before retry attempt N (0-based, the
// attempt that just failed), using a doubling schedule starting at base,
// capped at maxDelayMultiple*base. Deliberately deterministic: no jitter
// term, unlike a schedule that randomizes the delay to avoid thundering-
// herd retries — reproducible test timing takes priority here (§9).
func computeDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = defaultRetryDelay
	}
	ceiling := base * maxDelayMultiple
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= ceiling {
			return ceiling
		}
	}
	return delay
}

// attemptStep runs step's retry loop, then its fallback chain, then
// applies its onError policy (§4.6's attempt/retry/fallback/onError
// state machine). abort reports whether the caller should stop the
// whole action; when false, lastErr (if any) is a soft failure the
// caller records but continues past.
func (e *Executor) attemptStep(actionCtx *actiond.Context, action actiond.Action, step actiond.Step, args map[string]any, depth int) (value any, usedSelector string, lastErr *actiond.ActionError, abort bool) {
	maxAttempts := step.Retry + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryBase := time.Duration(step.RetryWait) * time.Millisecond

	stepTimeout := actionCtx.StepTimeout
	if step.Timeout > 0 {
		stepTimeout = time.Duration(step.Timeout) * time.Millisecond
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		callCtx := actionCtx
		var cancel context.CancelFunc
		if stepTimeout > 0 {
			callCtx, cancel = actionCtx.WithTimeout(stepTimeout)
		}
		v, sel, err := e.dispatchStep(callCtx, action, step, args, depth)
		if cancel != nil {
			cancel()
		}
		if err == nil {
			return v, sel, nil, false
		}
		lastErr = err
		usedSelector = sel

		if attempt == maxAttempts-1 {
			break
		}
		if !shouldRetry(step, err) {
			break
		}

		delay := computeDelay(retryBase, attempt)
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-actionCtx.Done():
			timer.Stop()
			return nil, usedSelector, actiond.NewActionErrorf(actiond.ErrCancelled, "cancelled during retry backoff"), true
		}
	}

	if len(step.Fallback) > 0 {
		fbValue, fbSelector, fbErr := e.runFallbackChain(actionCtx, action, step.Fallback, depth)
		if fbErr == nil {
			return fbValue, fbSelector, nil, false
		}
		lastErr = fbErr
		usedSelector = fbSelector
	}

	switch step.OnError {
	case actiond.OnErrorContinue:
		return nil, usedSelector, lastErr, false
	default:
		return nil, usedSelector, lastErr, true
	}
}

// shouldRetry reports whether err is worth another attempt. An adapter
// that tagged its error with a DispatchError gets the final say via its
// Retryable flag; otherwise only the codes a flaky page load could
// plausibly produce (a bad selector declaration or expression error is
// never worth retrying) are retried.
func shouldRetry(step actiond.Step, err *actiond.ActionError) bool {
	var de *DispatchError
	if errors.As(err, &de) {
		return de.Retryable
	}
	switch err.Code {
	case actiond.ErrElementNotFound, actiond.ErrTimeout, actiond.ErrStepFailed:
		return true
	default:
		return false
	}
}

// runFallbackChain executes a fallback step list in order, stopping at
// the first step to fail — the fallback list is a remedy sequence, not an
// independent action, so a failure partway through aborts the remedy
// rather than skipping ahead.
func (e *Executor) runFallbackChain(actionCtx *actiond.Context, action actiond.Action, steps []actiond.Step, depth int) (any, string, *actiond.ActionError) {
	scopes := scopesFromContext(actionCtx)
	var lastValue any
	var lastSelector string
	for _, fb := range steps {
		if fb.When != "" {
			ok, err := expr.EvaluateConditionWithScopes(fb.When, scopes)
			if err != nil {
				return nil, "", actiond.NewActionErrorf(actiond.ErrExpressionError, "fallback when: %v", err)
			}
			if !ok {
				continue
			}
		}
		resolvedAny, err := expr.ResolveObject(fb.Args, scopes)
		if err != nil {
			return nil, "", actiond.NewActionErrorf(actiond.ErrExpressionError, "fallback args: %v", err)
		}
		resolved, _ := resolvedAny.(map[string]any)
		value, selector, fbErr, abort := e.attemptStep(actionCtx, action, fb, resolved, depth)
		if fbErr != nil && abort {
			return nil, selector, fbErr
		}
		lastValue, lastSelector = value, selector
	}
	return lastValue, lastSelector, nil
}

package actiond

import (
	"context"
	"time"
)

// Scope is one of the four variable roots a template path may begin with.
type Scope string

const (
	ScopeParams    Scope = "params"
	ScopeEnv       Scope = "env"
	ScopeSelectors Scope = "selectors"
	ScopeSteps     Scope = "steps"
)

// Value is the tagged-variant leaf/branch type threaded through template
// resolution: string | float64 | bool | nil | []any | map[string]any.
// Go's `any` already carries that tag at runtime; path traversal (expr
// package) never uses reflection on arbitrary structs, only type switches
// over these six shapes, so behavior stays identical across language
// targets per the design notes in spec.md §9.
type Value = any

// Context is the mutable state threaded through one action invocation
// (§3). It is created on entry to execute and discarded on return; it is
// mutated only by the executor and never escapes to step/browser code.
type Context struct {
	Params    map[string]Value
	Env       map[string]Value
	Selectors map[string]SelectorDef
	Steps     map[string]Value

	Depth int

	StartTime     time.Time
	ActionTimeout time.Duration
	StepTimeout   time.Duration

	DebugMode bool
	DryRun    bool

	// ExecutionID is a fresh ID minted for each invocation. It lives only
	// on the Context: it is not copied onto the ActionResult, trace
	// entries, or log lines.
	ExecutionID string

	// MaxDepth/MaxSteps are the namespace- or process-level limits in
	// force for this invocation (§5 Limits); StepsDispatched is the
	// running count checked against MaxSteps.
	MaxDepth        int
	MaxSteps        int
	StepsDispatched *int

	ctx context.Context
}

// NewContext builds a fresh execution context rooted on ctx. depth is the
// caller's depth + 1 when invoked via a `run` step, 0 for a top-level call.
func NewContext(ctx context.Context, params, env map[string]Value, selectors map[string]SelectorDef, depth int, stepsDispatched *int) *Context {
	if stepsDispatched == nil {
		n := 0
		stepsDispatched = &n
	}
	return &Context{
		Params:          params,
		Env:             env,
		Selectors:       selectors,
		Steps:           map[string]Value{},
		Depth:           depth,
		StartTime:       time.Now(),
		ExecutionID:     newExecutionID(),
		StepsDispatched: stepsDispatched,
		ctx:             ctx,
	}
}

// Deadline/Done/Err/Value implement context.Context so the Context can be
// passed directly to browser-adapter calls that expect a standard
// context.Context.
func (c *Context) Deadline() (time.Time, bool) { return c.ctx.Deadline() }
func (c *Context) Done() <-chan struct{}       { return c.ctx.Done() }
func (c *Context) Err() error                  { return c.ctx.Err() }
func (c *Context) Value(key any) any           { return c.ctx.Value(key) }

// WithTimeout returns a child Context sharing all state but scoped to a
// derived deadline; cancel must be called by the holder once done.
func (c *Context) WithTimeout(d time.Duration) (*Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.ctx, d)
	clone := *c
	clone.ctx = ctx
	return &clone, cancel
}

// Root returns the named scope's map, or nil if the scope is unknown.
// Only the four declared roots are ever valid (§4.1). The Selectors scope
// is flattened to each alias's primary selector string, since a template
// path through selectors only ever needs the resolved string, not the
// fallback list.
func (c *Context) Root(scope Scope) (map[string]Value, bool) {
	switch scope {
	case ScopeParams:
		return c.Params, true
	case ScopeEnv:
		return c.Env, true
	case ScopeSteps:
		return c.Steps, true
	case ScopeSelectors:
		out := make(map[string]Value, len(c.Selectors))
		for name, def := range c.Selectors {
			out[name] = def.Primary
		}
		return out, true
	default:
		return nil, false
	}
}

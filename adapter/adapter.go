// Package adapter defines the browser-adapter boundary: the external
// collaborator that actually clicks, types, and navigates (§1, out of
// scope for this module beyond its interface, §6). Everything else in
// this repo depends only on the BrowserAdapter interface.
package adapter

import (
	"context"
	"time"
)

// WaitCondition is the argument shape for a `wait` step (§6): exactly one
// of Selector, URL, State, Time should be set.
type WaitCondition struct {
	Selector string
	URL      string
	State    string
	Time     time.Duration
	Hidden   bool
	Timeout  time.Duration
}

// SnapshotOptions is the argument shape for a `snapshot` step (§6).
type SnapshotOptions struct {
	Selector    string
	Interactive bool
}

// FindQuery is the semantic-locator argument shape for a `find` step
// (§6): type is one of role|text|label|placeholder|testid.
type FindQuery struct {
	Type       string
	Value      string
	SubAction  string
	Attributes map[string]string
}

// BrowserAdapter is the full surface the executor and selector resolver
// drive the browser through. It is the single point where this module
// touches the outside world; a fake implementation backs tests. Dry-run
// makes no adapter calls.
type BrowserAdapter interface {
	// Open navigates the page to url (`open` step).
	Open(ctx context.Context, url string) error
	// Click clicks the element the resolved locator names (`click` step).
	Click(ctx context.Context, locator string) error
	// Fill sets a form field's value in one operation (`fill` step).
	Fill(ctx context.Context, locator, value string) error
	// Type enters text one character at a time (`type` step).
	Type(ctx context.Context, locator, text string) error
	// Press sends one named keyboard key (`press` step).
	Press(ctx context.Context, key string) error
	// Wait blocks until cond is satisfied or its timeout elapses
	// (`wait` step).
	Wait(ctx context.Context, cond WaitCondition) error
	// Snapshot captures page or element state (`snapshot` step).
	Snapshot(ctx context.Context, opts SnapshotOptions) (map[string]any, error)
	// Find locates (and optionally acts on) an element by semantic query
	// (`find` step).
	Find(ctx context.Context, query FindQuery) (map[string]any, error)
	// Eval runs a page-side expression and returns its result
	// (`eval` step).
	Eval(ctx context.Context, expression string) (any, error)

	// TryLocate probes whether locator resolves to an interactable
	// element within timeout, without performing any action — the
	// primitive the selector resolver uses to walk a fallback chain
	// (§4.5).
	TryLocate(ctx context.Context, locator string, timeout time.Duration) error

	// PageReader is embedded for version detection (§4.4); detection
	// never writes to the page.
	PageReader
}

// PageReader is the read-only subset of BrowserAdapter the version
// manager needs (kept as its own interface so the version package can
// depend on it directly without importing the whole adapter surface).
type PageReader interface {
	ReadGlobalVar(ctx context.Context, name string) (string, error)
	ReadMetaTag(ctx context.Context, name string) (string, error)
	EvalReadOnly(ctx context.Context, expression string) (string, error)
}

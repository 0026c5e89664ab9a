package adapter

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Call records one invocation made against a Fake, for assertions in
// executor tests (§8 end-to-end scenarios reference "browser records
// exactly one open, two fills, one click").
type Call struct {
	Op   string
	Args map[string]any
}

// Fake is an in-memory BrowserAdapter used by tests and as the standalone
// binary's stand-in adapter. Locators and global-var/meta values can be pre-seeded to
// succeed, fail, or return specific values; unseeded locators succeed by
// default so straightforward happy-path tests need no setup.
type Fake struct {
	mu sync.Mutex

	Calls []Call

	// FailLocators names locators TryLocate/Click/Fill/Type should fail
	// for element-not-found the first N times listed here are consumed,
	// then locator succeeds — modeling "retry succeeds on Nth attempt"
	// (§8 scenario 3).
	FailLocators map[string]int

	Globals map[string]string
	Metas   map[string]string
	Evals   map[string]string

	EvalResults map[string]any
}

func NewFake() *Fake {
	return &Fake{
		FailLocators: map[string]int{},
		Globals:      map[string]string{},
		Metas:        map[string]string{},
		Evals:        map[string]string{},
		EvalResults:  map[string]any{},
	}
}

func (f *Fake) record(op string, args map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Op: op, Args: args})
}

func (f *Fake) consumeFailure(locator string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if remaining, ok := f.FailLocators[locator]; ok && remaining > 0 {
		f.FailLocators[locator] = remaining - 1
		return fmt.Errorf("element not found: %s", locator)
	}
	return nil
}

func (f *Fake) Open(ctx context.Context, url string) error {
	f.record("open", map[string]any{"url": url})
	return nil
}

func (f *Fake) Click(ctx context.Context, locator string) error {
	f.record("click", map[string]any{"selector": locator})
	return f.consumeFailure(locator)
}

func (f *Fake) Fill(ctx context.Context, locator, value string) error {
	f.record("fill", map[string]any{"selector": locator, "value": value})
	return f.consumeFailure(locator)
}

func (f *Fake) Type(ctx context.Context, locator, text string) error {
	f.record("type", map[string]any{"selector": locator, "text": text})
	return f.consumeFailure(locator)
}

func (f *Fake) Press(ctx context.Context, key string) error {
	f.record("press", map[string]any{"key": key})
	return nil
}

func (f *Fake) Wait(ctx context.Context, cond WaitCondition) error {
	f.record("wait", map[string]any{"selector": cond.Selector, "url": cond.URL, "state": cond.State})
	return nil
}

func (f *Fake) Snapshot(ctx context.Context, opts SnapshotOptions) (map[string]any, error) {
	f.record("snapshot", map[string]any{"selector": opts.Selector})
	return map[string]any{"selector": opts.Selector}, nil
}

func (f *Fake) Find(ctx context.Context, query FindQuery) (map[string]any, error) {
	f.record("find", map[string]any{"type": query.Type, "value": query.Value})
	return map[string]any{"type": query.Type, "value": query.Value}, nil
}

func (f *Fake) Eval(ctx context.Context, expression string) (any, error) {
	f.record("eval", map[string]any{"expression": expression})
	if v, ok := f.EvalResults[expression]; ok {
		return v, nil
	}
	return nil, nil
}

func (f *Fake) TryLocate(ctx context.Context, locator string, timeout time.Duration) error {
	f.record("tryLocate", map[string]any{"selector": locator})
	return f.consumeFailure(locator)
}

func (f *Fake) ReadGlobalVar(ctx context.Context, name string) (string, error) {
	if v, ok := f.Globals[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("global var %q not set", name)
}

func (f *Fake) ReadMetaTag(ctx context.Context, name string) (string, error) {
	if v, ok := f.Metas[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("meta tag %q not set", name)
}

func (f *Fake) EvalReadOnly(ctx context.Context, expression string) (string, error) {
	if v, ok := f.Evals[expression]; ok {
		return v, nil
	}
	return "", fmt.Errorf("expression %q not seeded", expression)
}

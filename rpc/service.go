// Package rpc exposes the daemon's operations (§6) as plain Go methods on
// Service: action.list/describe/run/dryRun/debug/validate/search/reload.
// There is no wire transport here by design (§1 Non-goals) — a caller in
// this process (a CLI frontend, a test, an in-process adapter) calls
// these methods directly; wiring them onto an actual transport is left
// to whatever embeds this package.
package rpc

import (
	"context"
	"log/slog"

	"github.com/Jeffail/gabs/v2"

	"actiond"
	"actiond/executor"
	"actiond/loader"
)

// Service is the daemon's operation surface, holding only what its
// methods need: the live registry (for list/describe/search/reload) and
// the executor (for run/dryRun/debug).
type Service struct {
	log      *slog.Logger
	loader   *loader.Loader
	executor *executor.Executor
}

func New(log *slog.Logger, l *loader.Loader, e *executor.Executor) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{log: log, loader: l, executor: e}
}

// ActionSummary is one entry of action.list's result.
type ActionSummary struct {
	FullName    string `json:"fullName"`
	Description string `json:"description"`
	Deprecated  bool   `json:"deprecated,omitempty"`
}

// List returns every action in namespace (or every namespace's actions if
// namespace is empty), per §6 action.list.
func (s *Service) List(namespace string) []ActionSummary {
	reg := s.loader.Registry()
	var names []string
	if namespace != "" {
		names = reg.ListActionsIn(namespace)
	} else {
		for _, ns := range reg.ListNamespaces() {
			names = append(names, reg.ListActionsIn(ns)...)
		}
	}

	out := make([]ActionSummary, 0, len(names))
	for _, name := range names {
		a, ok := reg.GetAction(name)
		if !ok {
			continue
		}
		out = append(out, ActionSummary{FullName: a.FullName, Description: a.Description, Deprecated: a.Deprecated})
	}
	return out
}

// Describe returns fullName's complete definition as a JSON-shaped
// document mirroring the YAML action shape one-to-one (§ SUPPLEMENTED
// FEATURES "describe-then-edit-then-reload"), built with gabs rather than
// a fixed struct so the shape can grow without a matching Go type for
// every nested optional field.
func (s *Service) Describe(fullName string) (*gabs.Container, *actiond.ActionError) {
	reg := s.loader.Registry()
	a, ok := reg.GetAction(fullName)
	if !ok {
		return nil, actiond.NewActionErrorf(actiond.ErrActionNotFound, "action %q not found", fullName)
	}

	doc := gabs.New()
	doc.Set(a.FullName, "fullName")
	doc.Set(a.Description, "description")
	if a.Since != "" {
		doc.Set(a.Since, "since")
	}
	if a.Deprecated {
		doc.Set(true, "deprecated")
	}
	if a.AliasOf != "" {
		doc.Set(a.AliasOf, "aliasOf")
	}

	for name, p := range a.Params {
		doc.Set(string(p.Type), "params", name, "type")
		if p.Required {
			doc.Set(true, "params", name, "required")
		}
		if p.Default != nil {
			doc.Set(p.Default, "params", name, "default")
		}
		if len(p.Values) > 0 {
			doc.Set(p.Values, "params", name, "values")
		}
		if p.Secret {
			doc.Set(true, "params", name, "secret")
		}
		if p.Description != "" {
			doc.Set(p.Description, "params", name, "description")
		}
	}

	for name, sel := range a.Selectors {
		doc.Set(sel.Primary, "selectors", name, "primary")
		if len(sel.Fallback) > 0 {
			doc.Set(sel.Fallback, "selectors", name, "fallback")
		}
	}

	steps := make([]any, len(a.Steps))
	for i, step := range a.Steps {
		steps[i] = stepToJSON(step)
	}
	doc.Set(steps, "steps")

	if len(a.Returns) > 0 {
		doc.Set(a.Returns, "returns")
	}

	return doc, nil
}

func stepToJSON(step actiond.Step) map[string]any {
	m := map[string]any{"action": step.Action}
	if len(step.Args) > 0 {
		m["args"] = step.Args
	}
	if step.When != "" {
		m["when"] = step.When
	}
	if step.Output != "" {
		m["output"] = step.Output
	}
	if step.Timeout > 0 {
		m["timeout"] = step.Timeout
	}
	if step.Retry > 0 {
		m["retry"] = step.Retry
	}
	if step.RetryWait > 0 {
		m["retryDelay"] = step.RetryWait
	}
	if step.OnError != "" {
		m["onError"] = string(step.OnError)
	}
	if len(step.Fallback) > 0 {
		fb := make([]any, len(step.Fallback))
		for i, f := range step.Fallback {
			fb[i] = stepToJSON(f)
		}
		m["fallback"] = fb
	}
	return m
}

// Run executes fullName to completion, per §6 action.run.
func (s *Service) Run(ctx context.Context, fullName string, params map[string]any, env map[string]any, debug bool) *actiond.ActionResult {
	return s.executor.Run(ctx, fullName, params, executor.RunOptions{Env: env, DebugMode: debug})
}

// DryRun plans fullName without dispatching any browser call, per §6
// action.dryRun.
func (s *Service) DryRun(ctx context.Context, fullName string, params map[string]any, env map[string]any) *actiond.ActionResult {
	return s.executor.Run(ctx, fullName, params, executor.RunOptions{Env: env, DryRun: true})
}

// Debug runs fullName with tracing enabled, per §6 action.debug — a thin
// alias over Run with DebugMode forced on, since trace capture is always
// on internally and DebugMode only controls whether it is returned.
func (s *Service) Debug(ctx context.Context, fullName string, params map[string]any, env map[string]any) *actiond.ActionResult {
	return s.executor.Run(ctx, fullName, params, executor.RunOptions{Env: env, DebugMode: true})
}

// ValidateIssue is one file-scoped validation finding.
type ValidateIssue struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidateResult is action.validate's outcome for the one file it checked.
type ValidateResult struct {
	Success bool            `json:"success"`
	Errors  []ValidateIssue `json:"errors,omitempty"`
}

// Validate checks the single file at path in isolation — it touches
// neither the live registry nor this service's configured sources — per
// §6 action.validate's `{path}` signature.
func (s *Service) Validate(path string) (*ValidateResult, error) {
	fv, err := s.loader.ValidateFile(path)
	if err != nil {
		return nil, err
	}
	errs := make([]ValidateIssue, len(fv.Errors))
	for i, e := range fv.Errors {
		errs[i] = ValidateIssue{Path: fv.Path, Code: e.Code, Message: e.Message}
	}
	return &ValidateResult{Success: fv.Success, Errors: errs}, nil
}

// Search finds actions whose name, description, or parameter names
// contain query (case-insensitive), per §6 action.search.
func (s *Service) Search(query string) []loader.SearchResult {
	return s.loader.Registry().Search(query)
}

// ReloadResult is action.reload's outcome.
type ReloadResult struct {
	Success bool              `json:"success"`
	Loaded  int               `json:"loaded"`
	Failed  int               `json:"failed"`
	Issues  []loader.LoadIssue `json:"issues,omitempty"`
}

// Reload re-reads every source and atomically swaps the live registry,
// per §6 action.reload. An invocation already in progress keeps the action
// it resolved, but its nested `run` steps look their targets up in the
// new registry.
func (s *Service) Reload(ctx context.Context) (*ReloadResult, error) {
	report, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &ReloadResult{Success: report.Failed == 0, Loaded: report.Loaded, Failed: report.Failed, Issues: report.Issues}, nil
}

package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"actiond"
	"actiond/schema"
)

// Loader discovers, validates, merges, and indexes action definitions
// from the sources registered with it (§4.3). Sources are consulted in
// the order they were added; later sources win on namespace collision.
type Loader struct {
	log      *slog.Logger
	sources  []Source
	registry *Registry
}

// New builds a Loader over sources in increasing precedence order. The
// caller is expected to register them built-in-first, project/user/env
// paths next, named packages last, matching §4.3's five source tiers.
func New(log *slog.Logger, sources ...Source) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{log: log, sources: sources, registry: newRegistry()}
}

// Registry returns the live, atomically-swapped read side.
func (l *Loader) Registry() *Registry { return l.registry }

// Load runs one full discovery+validate+merge+index pass and installs the
// result. On structural/semantic failure of one file, that file is
// dropped and loading continues (§4.3 step 2); the previous registry
// snapshot remains in force if this call returns with Failed > 0 and zero
// successfully parsed namespaces overall would otherwise leave the index
// empty — in that edge case the last-good index is left untouched too.
func (l *Loader) Load(ctx context.Context) (*LoadReport, error) {
	idx, report, err := l.build(ctx)
	if err != nil {
		return nil, err
	}
	if report.Loaded == 0 && report.Failed > 0 {
		return report, nil
	}
	l.registry.swap(idx)
	return report, nil
}

// FileValidation is the outcome of validating one file in isolation, per
// §6 action.validate's path-scoped signature: {path} in, {success,
// errors: [{path, code, message}]} out.
type FileValidation struct {
	Path    string
	Success bool
	Errors  []schema.Error
}

// ValidateFile reads path directly off disk and runs it through the same
// structural+semantic validation pass a discovered file goes through
// during Load, touching neither the live registry nor this Loader's
// configured sources — action.validate (§6) validates one arbitrary
// file, not the currently configured source set.
func (l *Loader) ValidateFile(path string) (*FileValidation, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	ns, err := decodeNamespace(content, path)
	if err != nil {
		return &FileValidation{
			Path:   path,
			Errors: []schema.Error{{Path: path, Code: "PARSE_ERROR", Message: err.Error()}},
		}, nil
	}

	var errs []schema.Error
	errs = append(errs, schema.ValidateStructure(ns)...)
	if len(errs) == 0 {
		errs = append(errs, schema.ValidateSemantics(ns)...)
	}
	return &FileValidation{Path: path, Success: len(errs) == 0, Errors: errs}, nil
}

func (l *Loader) build(ctx context.Context) (*index, *LoadReport, error) {
	report := &LoadReport{}
	rawNamespaces := make(map[string]*actiond.Namespace)
	precedence := make(map[string]int)

	for srcIdx, src := range l.sources {
		docs, err := src.Read(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("source %s: %w", src.Name(), err)
		}
		for _, doc := range docs {
			ns, err := decodeNamespace(doc.content, doc.path)
			if err != nil {
				report.Failed++
				report.Issues = append(report.Issues, LoadIssue{SourcePath: doc.path, Message: err.Error()})
				l.log.Warn("dropping action file: parse error", "path", doc.path, "error", err)
				continue
			}

			var errs []schema.Error
			errs = append(errs, schema.ValidateStructure(ns)...)
			if len(errs) == 0 {
				errs = append(errs, schema.ValidateSemantics(ns)...)
			}
			if len(errs) > 0 {
				report.Failed++
				for _, e := range errs {
					report.Issues = append(report.Issues, LoadIssue{SourcePath: doc.path, Namespace: ns.Name, Message: e.Error()})
				}
				l.log.Warn("dropping action file: validation failed", "path", doc.path, "namespace", ns.Name, "errors", len(errs))
				continue
			}

			rawNamespaces[ns.Name] = ns
			precedence[ns.Name] = srcIdx
			report.Loaded++
		}
	}

	order, err := topoSortNamespaces(rawNamespaces)
	if err != nil {
		return nil, nil, fmt.Errorf("resolving extends: %w", err)
	}

	merged := make(map[string]*actiond.Namespace, len(rawNamespaces))
	for _, name := range order {
		ns := rawNamespaces[name]
		parents := make([]*actiond.Namespace, 0, len(ns.Extends))
		for _, parentName := range ns.Extends {
			if p, ok := merged[parentName]; ok {
				parents = append(parents, p)
			}
		}
		merged[name] = mergeNamespace(parents, ns)
	}

	idx := &index{
		namespaces: merged,
		actions:    map[string]actiond.Action{},
		precedence: map[string]int{},
	}
	for name, ns := range merged {
		for actionName, a := range ns.Actions {
			a.FullName = actiond.FullyQualifiedName(name, "", actionName)
			a.Namespace = name
			idx.actions[a.FullName] = a
			idx.precedence[a.FullName] = precedence[name]
		}
	}

	for _, issue := range crossNamespaceIssues(idx) {
		report.Failed++
		report.Issues = append(report.Issues, issue)
	}

	return idx, report, nil
}

// crossNamespaceIssues runs §4.2 semantic rules 4 (fallback cycle
// detection) and 5 (aliasOf target checks), which need the fully merged,
// cross-namespace action index to evaluate. Findings here are reported
// but do not drop the offending action — they describe structural risk in
// an otherwise well-formed, already-indexed definition.
func crossNamespaceIssues(idx *index) []LoadIssue {
	var issues []LoadIssue

	for fq, a := range idx.actions {
		if a.Deprecated && a.AliasOf != "" {
			target, ok := idx.actions[a.AliasOf]
			if !ok {
				issues = append(issues, LoadIssue{
					SourcePath: a.SourcePath, Namespace: a.Namespace,
					Message: fmt.Sprintf("action %s: aliasOf target %q does not exist", fq, a.AliasOf),
				})
			} else if target.Deprecated {
				issues = append(issues, LoadIssue{
					SourcePath: a.SourcePath, Namespace: a.Namespace,
					Message: fmt.Sprintf("action %s: aliasOf target %q is itself deprecated", fq, a.AliasOf),
				})
			}
		}

		if cyclePath, found := findFallbackCycle(idx, fq, fq, map[string]bool{}); found {
			issues = append(issues, LoadIssue{
				SourcePath: a.SourcePath, Namespace: a.Namespace,
				Message: fmt.Sprintf("action %s: static fallback/run cycle detected: %v", fq, cyclePath),
			})
		}
	}
	return issues
}

// findFallbackCycle walks the static run-target graph reachable from a
// fallback chain, reporting whether it ever reenters origin. This is a
// heuristic over the static call graph only — it cannot see dynamic
// branching via `when`, so real cycles are still caught at runtime by the
// depth limit (§4.2 semantic rule 4).
func findFallbackCycle(idx *index, origin, current string, visited map[string]bool) ([]string, bool) {
	if visited[current] {
		return nil, false
	}
	visited[current] = true

	a, ok := idx.actions[current]
	if !ok {
		return nil, false
	}
	for _, target := range schema.RunTargets(a) {
		if target == origin {
			return []string{current, target}, true
		}
		if path, found := findFallbackCycle(idx, origin, target, visited); found {
			return append([]string{current}, path...), true
		}
	}
	return nil, false
}

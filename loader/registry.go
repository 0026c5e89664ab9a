package loader

import (
	"sort"
	"strings"
	"sync/atomic"

	"actiond"
)

// LoadIssue is one file that failed validation during a load pass,
// supplementing the bare {loaded, failed} counts of §6's action.reload
// result with enough detail to act on (§ SUPPLEMENTED FEATURES).
type LoadIssue struct {
	SourcePath string
	Namespace  string
	Message    string
}

// LoadReport summarizes one discovery+merge pass.
type LoadReport struct {
	Loaded int
	Failed int
	Issues []LoadIssue
}

// index is the immutable snapshot a Registry atomically swaps in on
// reload (§4.3 step 5, §5 "Registry is read-only during execution").
type index struct {
	namespaces map[string]*actiond.Namespace
	actions    map[string]actiond.Action
	// precedence records each action's source index so Search's ranking (prefix,
	// then precedence, then FQN-ascending) can use it.
	precedence map[string]int
}

// Registry is the read side of the loaded action set: lookup, listing,
// and search. Loader.Load builds a fresh index and swaps it in atomically;
// an actiond.Action value already returned by GetAction is unaffected, but
// every lookup made after the swap, including one for a nested `run` step
// of an invocation already in progress, sees the new index.
type Registry struct {
	current atomic.Pointer[index]
}

func newRegistry() *Registry {
	r := &Registry{}
	r.current.Store(&index{
		namespaces: map[string]*actiond.Namespace{},
		actions:    map[string]actiond.Action{},
		precedence: map[string]int{},
	})
	return r
}

// GetNamespace returns the namespace by name, or (nil, false).
func (r *Registry) GetNamespace(name string) (*actiond.Namespace, bool) {
	idx := r.current.Load()
	ns, ok := idx.namespaces[name]
	return ns, ok
}

// GetAction returns the action by fully qualified name, or (_, false).
func (r *Registry) GetAction(fullName string) (actiond.Action, bool) {
	idx := r.current.Load()
	a, ok := idx.actions[fullName]
	return a, ok
}

// ListNamespaces returns every loaded namespace name, sorted.
func (r *Registry) ListNamespaces() []string {
	idx := r.current.Load()
	out := make([]string, 0, len(idx.namespaces))
	for name := range idx.namespaces {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ListActionsIn returns every action's fully qualified name within one
// namespace, sorted.
func (r *Registry) ListActionsIn(namespace string) []string {
	idx := r.current.Load()
	var out []string
	for fq, a := range idx.actions {
		if a.Namespace == namespace {
			out = append(out, fq)
		}
	}
	sort.Strings(out)
	return out
}

// SearchResult is one ranked match from Search.
type SearchResult struct {
	FullName    string
	Description string
	Score       int
}

// Search matches query as a substring of name, description, or any
// parameter name, ranked by prefix-match priority then by source
// precedence, with ties broken by fully-qualified name ascending for
// deterministic output (§4.3, tie-break supplemented per SPEC_FULL.md).
func (r *Registry) Search(query string) []SearchResult {
	idx := r.current.Load()
	q := strings.ToLower(query)
	var results []SearchResult

	for fq, a := range idx.actions {
		if !actionMatches(a, q) {
			continue
		}
		score := 0
		if strings.HasPrefix(strings.ToLower(a.Name), q) || strings.HasPrefix(strings.ToLower(fq), q) {
			score += 100
		}
		score += idx.precedence[fq]
		results = append(results, SearchResult{FullName: fq, Description: a.Description, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].FullName < results[j].FullName
	})
	return results
}

func actionMatches(a actiond.Action, q string) bool {
	if strings.Contains(strings.ToLower(a.Name), q) || strings.Contains(strings.ToLower(a.FullName), q) {
		return true
	}
	if strings.Contains(strings.ToLower(a.Description), q) {
		return true
	}
	for paramName := range a.Params {
		if strings.Contains(strings.ToLower(paramName), q) {
			return true
		}
	}
	return false
}

// swap installs a freshly built index, replacing the previous one
// atomically (§4.3 step 5, §5).
func (r *Registry) swap(idx *index) {
	r.current.Store(idx)
}

package expr

import (
	"strconv"
	"strings"
)

// Scopes holds the four variable roots a template path may read from
// (§3 execution context, §4.1 variable scopes). Values are the raw
// tagged-variant tree: string | float64 | bool | nil | []any |
// map[string]any.
type Scopes struct {
	Params    map[string]any
	Env       map[string]any
	Selectors map[string]any
	Steps     map[string]any
}

var forbiddenKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// resolvePath traverses a dot-separated path against scopes. The first
// segment selects the root; any other root is a safety violation. Missing
// intermediate keys resolve to (nil, false, nil) — "undefined" rather
// than an error. Forbidden property names anywhere in the path always
// raise an error, regardless of whether the key would otherwise exist
// (§8 invariant 4).
func resolvePath(path string, scopes Scopes) (any, bool, error) {
	segs := strings.Split(path, ".")
	if len(segs) == 0 || segs[0] == "" {
		return nil, false, newError(0, "empty variable path")
	}

	for _, s := range segs[1:] {
		if forbiddenKeys[s] {
			return nil, false, newError(0, "access to %q is forbidden", s)
		}
	}

	var root map[string]any
	switch segs[0] {
	case "params":
		root = scopes.Params
	case "env":
		root = scopes.Env
	case "selectors":
		root = scopes.Selectors
	case "steps":
		root = scopes.Steps
	default:
		return nil, false, newError(0, "unknown variable root %q; must be one of params, env, selectors, steps", segs[0])
	}

	if len(segs) == 1 {
		return root, true, nil
	}

	var cur any = root
	for _, s := range segs[1:] {
		next, ok := step(cur, s)
		if !ok {
			return nil, false, nil
		}
		cur = next
	}
	return cur, true, nil
}

// step descends one path segment into a map, slice, or indexable value.
func step(cur any, seg string) (any, bool) {
	switch v := cur.(type) {
	case map[string]any:
		val, ok := v[seg]
		return val, ok
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 || idx >= len(v) {
			return nil, false
		}
		return v[idx], true
	default:
		return nil, false
	}
}

// RootScope reports whether root names a valid variable scope (§4.1).
func RootScope(root string) bool {
	switch root {
	case "params", "env", "selectors", "steps":
		return true
	default:
		return false
	}
}

// HasForbiddenSegment reports whether any dot-separated segment of path
// (other than the root) is a blocked property name.
func HasForbiddenSegment(path string) bool {
	segs := strings.Split(path, ".")
	for _, s := range segs[1:] {
		if forbiddenKeys[s] {
			return true
		}
	}
	return false
}

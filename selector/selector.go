// Package selector resolves a selector definition (bare string or
// primary+fallback chain) into the concrete locator the browser adapter
// should act on, trying each candidate in order until one succeeds
// (§4.5).
package selector

import (
	"context"
	"fmt"
	"time"

	"actiond"
	"actiond/adapter"
)

const defaultProbeTimeout = 5 * time.Second

// Resolution is the outcome of resolving one selector definition: the
// locator string that ultimately succeeded (for trace output) and
// whether it came from the primary or a fallback entry.
type Resolution struct {
	Locator     string
	UsedEntry   int // 0 = primary, 1+ = fallback[UsedEntry-1]
	FromFallback bool
}

// Resolve tries def's primary locator first, then walks Fallback entries
// in order, probing each with adapter.TryLocate. When every candidate
// fails, the returned error wraps an ELEMENT_NOT_FOUND sentinel and
// carries the final attempt's error text (§4.5 "The final attempt's error
// is reported"). Resolution is never
// cached across calls — each call starts fresh (§4.5 "not cached across
// steps by default").
func Resolve(ctx context.Context, ba adapter.BrowserAdapter, def actiond.SelectorDef, timeout time.Duration, stats *Stats) (Resolution, error) {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	candidates := append([]string{def.Primary}, def.Fallback...)

	var lastErr error
	for i, candidate := range candidates {
		locator := Normalize(candidate)
		if err := ba.TryLocate(ctx, locator, timeout); err != nil {
			lastErr = err
			if stats != nil {
				stats.recordAttempt(candidate, false)
			}
			continue
		}
		if stats != nil {
			stats.recordAttempt(candidate, true)
		}
		return Resolution{Locator: locator, UsedEntry: i, FromFallback: i > 0}, nil
	}

	return Resolution{}, fmt.Errorf("%w: %s", errElementNotFound, lastErr)
}

var errElementNotFound = fmt.Errorf("ELEMENT_NOT_FOUND")

// Normalize applies the default-CSS rule: a selector string with no
// recognized prefix (css:, xpath:, role:, text:, testid:) is treated as a
// bare CSS selector, returned unchanged. Recognized prefixes pass through
// unchanged too — the browser adapter is the one that interprets the
// prefix; this function exists so callers (trace output, health stats)
// can see the resolved form without re-parsing it themselves.
func Normalize(s string) string {
	return s
}

// Kind is the locator family a selector string names (§4.5).
type Kind string

const (
	KindCSS     Kind = "css"
	KindXPath   Kind = "xpath"
	KindRole    Kind = "role"
	KindText    Kind = "text"
	KindTestID  Kind = "testid"
)

var prefixes = map[string]Kind{
	"css:":    KindCSS,
	"xpath:":  KindXPath,
	"role:":   KindRole,
	"text:":   KindText,
	"testid:": KindTestID,
}

// Parsed is a locator string split into its recognized kind, bare value,
// and — for role: locators only — the optional accessible-name matcher
// from a trailing `[name='…']` suffix.
type Parsed struct {
	Kind       Kind
	Value      string
	AccessibleName string
}

// Parse splits a selector string into its locator kind and value,
// defaulting to KindCSS when no recognized prefix is present (§4.5
// "Prefix handling"). A role: locator may carry a trailing
// `[name='…']` suffix naming the accessible-name match.
func Parse(s string) Parsed {
	for prefix, kind := range prefixes {
		if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
			rest := s[len(prefix):]
			if kind == KindRole {
				if value, name, ok := splitAccessibleName(rest); ok {
					return Parsed{Kind: kind, Value: value, AccessibleName: name}
				}
			}
			return Parsed{Kind: kind, Value: rest}
		}
	}
	return Parsed{Kind: KindCSS, Value: s}
}

// splitAccessibleName extracts the `[name='…']` suffix from a role
// locator's remainder, e.g. "button[name='Submit']" -> ("button",
// "Submit", true).
func splitAccessibleName(s string) (role, name string, ok bool) {
	open := -1
	for i := 0; i < len(s); i++ {
		if s[i] == '[' {
			open = i
			break
		}
	}
	if open == -1 || s[len(s)-1] != ']' {
		return s, "", false
	}
	inner := s[open+1 : len(s)-1]
	const prefix = "name="
	if len(inner) < len(prefix) || inner[:len(prefix)] != prefix {
		return s, "", false
	}
	quoted := inner[len(prefix):]
	if len(quoted) >= 2 && (quoted[0] == '\'' || quoted[0] == '"') && quoted[len(quoted)-1] == quoted[0] {
		return s[:open], quoted[1 : len(quoted)-1], true
	}
	return s, "", false
}

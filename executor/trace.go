package executor

import (
	"strings"

	"actiond"
	"actiond/expr"
)

const redactedPlaceholder = "***"

// redactArgs returns resolved for trace/debug output with any value that
// was interpolated from a secret-flagged param replaced by a placeholder
// (§4.6 tracing and redaction). The check runs against the
// step's original (unresolved) arg templates, not the resolved values, so
// a password embedded in a longer concatenated string is still caught.
func redactArgs(action actiond.Action, step actiond.Step, resolved map[string]any) map[string]any {
	if len(resolved) == 0 {
		return resolved
	}
	secret := secretParamNames(action)
	if len(secret) == 0 {
		return resolved
	}

	out := make(map[string]any, len(resolved))
	for k, v := range resolved {
		if raw, ok := step.Args[k]; ok && referencesSecret(raw, secret) {
			out[k] = redactedPlaceholder
			continue
		}
		out[k] = v
	}
	return out
}

func secretParamNames(action actiond.Action) map[string]bool {
	names := map[string]bool{}
	for name, spec := range action.Params {
		if spec.Secret {
			names[name] = true
		}
	}
	return names
}

// referencesSecret reports whether raw (an arg template, before
// interpolation) reads a secret param anywhere in its ${...} placeholders.
func referencesSecret(raw any, secret map[string]bool) bool {
	switch v := raw.(type) {
	case string:
		paths, err := expr.ExtractPaths(v)
		if err != nil {
			return false
		}
		for _, p := range paths {
			if strings.HasPrefix(p, "params.") && secret[strings.TrimPrefix(p, "params.")] {
				return true
			}
		}
		return false
	case map[string]any:
		for _, inner := range v {
			if referencesSecret(inner, secret) {
				return true
			}
		}
		return false
	case []any:
		for _, inner := range v {
			if referencesSecret(inner, secret) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

package expr

import (
	"strconv"
	"strings"
)

// placeholder is one ${...} span found in a template string.
type placeholder struct {
	start, end int // end is exclusive, spans the whole "${...}"
	inner      string
}

// scanPlaceholders finds every ${...} span in src. Nested {...} pairs
// inside the placeholder are counted, so the match ends at the '}' that
// balances the opening "${"; quotes get no special treatment, so a lone
// '}' inside quoted text still ends the match.
func scanPlaceholders(src string) ([]placeholder, error) {
	var out []placeholder
	i := 0
	for i < len(src) {
		if src[i] == '$' && i+1 < len(src) && src[i+1] == '{' {
			start := i
			depth := 1
			j := i + 2
			for j < len(src) && depth > 0 {
				switch src[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			if depth != 0 {
				return nil, newError(start, "unterminated ${...} placeholder")
			}
			out = append(out, placeholder{start: start, end: j + 1, inner: strings.TrimSpace(src[i+2 : j])})
			i = j + 1
			continue
		}
		i++
	}
	return out, nil
}

// Resolve replaces every ${...} placeholder in template with its resolved
// value (§4.1). When template is exactly one placeholder, the original
// typed value is returned unconverted; otherwise every placeholder is
// coerced to a display string and concatenated with the surrounding
// literal text.
func Resolve(template string, scopes Scopes) (any, error) {
	phs, err := scanPlaceholders(template)
	if err != nil {
		return nil, err
	}
	if len(phs) == 0 {
		return template, nil
	}

	if len(phs) == 1 && phs[0].start == 0 && phs[0].end == len(template) {
		val, _, err := resolvePath(phs[0].inner, scopes)
		if err != nil {
			return nil, err
		}
		return val, nil
	}

	var b strings.Builder
	last := 0
	for _, ph := range phs {
		b.WriteString(template[last:ph.start])
		val, _, err := resolvePath(ph.inner, scopes)
		if err != nil {
			return nil, err
		}
		b.WriteString(displayString(val))
		last = ph.end
	}
	b.WriteString(template[last:])
	return b.String(), nil
}

// ResolveObject walks maps and slices recursively, resolving every string
// leaf through Resolve; other value kinds pass through unchanged.
func ResolveObject(value any, scopes Scopes) (any, error) {
	switch v := value.(type) {
	case string:
		return Resolve(v, scopes)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			resolved, err := ResolveObject(val, scopes)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			resolved, err := ResolveObject(val, scopes)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return value, nil
	}
}

// ExtractPaths returns the dot-path inner text of every ${...} placeholder
// found in template, in order of appearance. Used by the schema validator
// to check root scope and referenced-name existence at load time (§4.2
// semantic rule 1) without resolving any value.
func ExtractPaths(template string) ([]string, error) {
	phs, err := scanPlaceholders(template)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(phs))
	for i, ph := range phs {
		paths[i] = ph.inner
	}
	return paths, nil
}

// EvaluateCondition parses and evaluates source directly (source must
// already be a pure literal expression, with no ${...} left in it). Most
// callers want EvaluateConditionWithScopes instead.

// EvaluateConditionWithScopes performs the two-pass evaluation of §4.1:
// first every ${var} sub-reference inside expr is substituted with its
// literal textual form (producing a pure literal expression), then the
// result is tokenized, parsed, and evaluated.
func EvaluateConditionWithScopes(source string, scopes Scopes) (bool, error) {
	literal, err := literalize(source, scopes)
	if err != nil {
		return false, err
	}
	return EvaluateCondition(literal)
}

// literalize substitutes every ${path} placeholder in source with a
// syntactically valid literal token (quoted string, number, true/false,
// or null), leaving everything else byte-for-byte untouched.
func literalize(source string, scopes Scopes) (string, error) {
	phs, err := scanPlaceholders(source)
	if err != nil {
		return "", err
	}
	if len(phs) == 0 {
		return source, nil
	}

	var b strings.Builder
	last := 0
	for _, ph := range phs {
		b.WriteString(source[last:ph.start])
		val, _, err := resolvePath(ph.inner, scopes)
		if err != nil {
			return "", err
		}
		b.WriteString(toLiteralToken(val))
		last = ph.end
	}
	b.WriteString(source[last:])
	return b.String(), nil
}

// toLiteralToken renders a resolved value as a token the expression
// lexer/parser can consume as a Literal.
func toLiteralToken(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return quoteLiteral(x)
	default:
		// Non-scalar (map/slice) values have no literal form in the
		// grammar; render their display string as a quoted literal so
		// equality/truthiness still behave sensibly.
		return quoteLiteral(displayString(x))
	}
}

func quoteLiteral(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(s[i])
		default:
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('"')
	return b.String()
}

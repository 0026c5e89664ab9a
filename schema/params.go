package schema

import (
	"fmt"
	"strconv"

	"actiond"
)

// ValidateParams applies §4.2's runtime parameter check: required-missing
// fails PARAM_REQUIRED, wrong-typed-and-not-coercible fails PARAM_INVALID,
// enum-out-of-range fails PARAM_INVALID. Declared-but-absent parameters are
// filled from their default. Unknown input keys are dropped and reported
// as warnings, not errors. Returns the resolved, type-coerced param map
// ready to populate the execution context.
func ValidateParams(specs map[string]actiond.ParamSpec, input map[string]any) (map[string]any, []*actiond.ActionError, []string) {
	resolved := make(map[string]any, len(specs))
	var errs []*actiond.ActionError
	var warnings []string

	for name, spec := range specs {
		raw, present := input[name]
		if !present {
			if spec.Default != nil {
				resolved[name] = spec.Default
				continue
			}
			if spec.Required {
				errs = append(errs, actiond.NewActionErrorf(actiond.ErrParamRequired, "parameter %q is required", name))
				continue
			}
			continue
		}

		coerced, err := coerceParam(name, spec, raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		resolved[name] = coerced
	}

	for name := range input {
		if _, declared := specs[name]; !declared {
			warnings = append(warnings, fmt.Sprintf("unknown parameter %q ignored", name))
		}
	}

	return resolved, errs, warnings
}

func coerceParam(name string, spec actiond.ParamSpec, v any) (any, *actiond.ActionError) {
	switch spec.Type {
	case actiond.ParamString:
		switch x := v.(type) {
		case string:
			return x, nil
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(x), nil
		}
		return nil, invalidParam(name, spec.Type, v)

	case actiond.ParamNumber:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case string:
			n, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return nil, invalidParam(name, spec.Type, v)
			}
			return n, nil
		}
		return nil, invalidParam(name, spec.Type, v)

	case actiond.ParamBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return nil, invalidParam(name, spec.Type, v)
			}
			return b, nil
		}
		return nil, invalidParam(name, spec.Type, v)

	case actiond.ParamEnum:
		s, ok := v.(string)
		if !ok {
			return nil, invalidParam(name, spec.Type, v)
		}
		for _, allowed := range spec.Values {
			if allowed == s {
				return s, nil
			}
		}
		return nil, actiond.NewActionErrorf(actiond.ErrParamInvalid,
			"parameter %q value %q is not one of %v", name, s, spec.Values)

	case actiond.ParamArray:
		if arr, ok := v.([]any); ok {
			return arr, nil
		}
		return nil, invalidParam(name, spec.Type, v)

	case actiond.ParamObject:
		if obj, ok := v.(map[string]any); ok {
			return obj, nil
		}
		return nil, invalidParam(name, spec.Type, v)

	default:
		return v, nil
	}
}

func invalidParam(name string, t actiond.ParamType, v any) *actiond.ActionError {
	return actiond.NewActionErrorf(actiond.ErrParamInvalid,
		"parameter %q expects type %s, got %T", name, t, v)
}

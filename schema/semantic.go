package schema

import (
	"fmt"
	"strings"

	"actiond"
	"actiond/expr"
)

const CodeForbiddenSegment = "FORBIDDEN_SEGMENT"

// ValidateSemantics runs §4.2's semantic rules 1-3 against one namespace.
// Rules 4 (fallback cycle detection) and 5 (aliasOf target existence) need
// visibility across namespaces after extends-merge, so the loader runs
// those once the full index is built; this function only checks what is
// knowable from a single namespace document.
func ValidateSemantics(ns *actiond.Namespace) []Error {
	var errs []Error
	for name, action := range ns.Actions {
		path := fmt.Sprintf("actions.%s", name)
		errs = append(errs, validateActionSemantics(path, ns, action)...)
	}
	return errs
}

func validateActionSemantics(path string, ns *actiond.Namespace, a actiond.Action) []Error {
	var errs []Error

	selectors := mergedSelectorNames(ns, a)
	knownOutputs := map[string]bool{}

	for i, step := range a.Steps {
		stepPath := fmt.Sprintf("%s.steps[%d]", path, i)
		errs = append(errs, validateStepSemantics(stepPath, a, selectors, knownOutputs, step)...)
		collectOutputs(step, knownOutputs)
	}

	for name, tmpl := range a.Returns {
		errs = append(errs, checkTemplate(fmt.Sprintf("%s.returns.%s", path, name), a, selectors, knownOutputs, tmpl)...)
	}

	for i, v := range a.Verify {
		vp := fmt.Sprintf("%s.verify[%d].condition", path, i)
		errs = append(errs, checkTemplate(vp, a, selectors, knownOutputs, v.Condition)...)
		errs = append(errs, checkConditionParses(vp, v.Condition)...)
	}

	return errs
}

func validateStepSemantics(path string, a actiond.Action, selectors map[string]bool, knownOutputs map[string]bool, s actiond.Step) []Error {
	var errs []Error

	for argName, argVal := range s.Args {
		errs = append(errs, checkTemplateValue(fmt.Sprintf("%s.args.%s", path, argName), a, selectors, knownOutputs, argVal)...)
	}

	if s.When != "" {
		errs = append(errs, checkTemplate(path+".when", a, selectors, knownOutputs, s.When)...)
		errs = append(errs, checkConditionParses(path+".when", s.When)...)
	}

	for i, fb := range s.Fallback {
		errs = append(errs, validateStepSemantics(fmt.Sprintf("%s.fallback[%d]", path, i), a, selectors, knownOutputs, fb)...)
	}

	return errs
}

func checkConditionParses(path, condition string) []Error {
	// Neutralize ${...} sub-references with an inert literal so a bare
	// parse check doesn't fail on variables that are valid but not yet
	// resolvable (namespace/env values aren't known until runtime); this
	// only surfaces genuine grammar errors in the literal-expression part.
	literal := condition
	for {
		next, changed, err := substituteOnePlaceholder(literal)
		if err != nil {
			return []Error{errf(path, CodeExpressionError, "%v", err)}
		}
		if !changed {
			break
		}
		literal = next
	}
	if _, err := expr.EvaluateCondition(literal); err != nil {
		return []Error{errf(path, CodeExpressionError, "%v", err)}
	}
	return nil
}

// substituteOnePlaceholder replaces the first ${...} span in s with the
// literal "null", reporting whether a substitution occurred.
func substituteOnePlaceholder(s string) (string, bool, error) {
	start := strings.Index(s, "${")
	if start == -1 {
		return s, false, nil
	}
	depth := 1
	i := start + 2
	for i < len(s) && depth > 0 {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			break
		}
		i++
	}
	if depth != 0 {
		return s, false, fmt.Errorf("unterminated ${...} in %q", s)
	}
	return s[:start] + "null" + s[i+1:], true, nil
}

func checkTemplateValue(path string, a actiond.Action, selectors map[string]bool, knownOutputs map[string]bool, v any) []Error {
	switch x := v.(type) {
	case string:
		return checkTemplate(path, a, selectors, knownOutputs, x)
	case map[string]any:
		var errs []Error
		for k, val := range x {
			errs = append(errs, checkTemplateValue(fmt.Sprintf("%s.%s", path, k), a, selectors, knownOutputs, val)...)
		}
		return errs
	case []any:
		var errs []Error
		for i, val := range x {
			errs = append(errs, checkTemplateValue(fmt.Sprintf("%s[%d]", path, i), a, selectors, knownOutputs, val)...)
		}
		return errs
	default:
		return nil
	}
}

func checkTemplate(path string, a actiond.Action, selectors map[string]bool, knownOutputs map[string]bool, tmpl string) []Error {
	paths, err := expr.ExtractPaths(tmpl)
	if err != nil {
		return []Error{errf(path, CodeExpressionError, "%v", err)}
	}
	var errs []Error
	for _, p := range paths {
		errs = append(errs, checkPath(path, a, selectors, knownOutputs, p)...)
	}
	return errs
}

func checkPath(path string, a actiond.Action, selectors map[string]bool, knownOutputs map[string]bool, varPath string) []Error {
	if expr.HasForbiddenSegment(varPath) {
		return []Error{errf(path, CodeForbiddenSegment, "path %q references a forbidden property name", varPath)}
	}
	segs := strings.Split(varPath, ".")
	root := segs[0]
	if !expr.RootScope(root) {
		return []Error{errf(path, CodeUnknownScope, "unknown variable root %q in %q", root, varPath)}
	}
	if len(segs) < 2 {
		return nil
	}
	name := segs[1]
	switch root {
	case "params":
		if _, ok := a.Params[name]; !ok {
			return []Error{errf(path, CodeUnknownRef, "%q references undeclared parameter %q", varPath, name)}
		}
	case "selectors":
		if !selectors[name] {
			return []Error{errf(path, CodeUnknownRef, "%q references undeclared selector %q", varPath, name)}
		}
	case "steps":
		if !knownOutputs[name] {
			return []Error{errf(path, CodeOrderViolation, "%q references step output %q before it is produced", varPath, name)}
		}
	}
	return nil
}

func mergedSelectorNames(ns *actiond.Namespace, a actiond.Action) map[string]bool {
	out := map[string]bool{}
	for name := range ns.Selectors {
		out[name] = true
	}
	for name := range a.Selectors {
		out[name] = true
	}
	return out
}

func collectOutputs(s actiond.Step, known map[string]bool) {
	if s.Output != "" {
		known[s.Output] = true
	}
	for _, fb := range s.Fallback {
		collectOutputs(fb, known)
	}
}

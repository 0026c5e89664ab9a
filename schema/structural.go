package schema

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"

	"actiond"
)

var namespaceNameRe = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

const supportedSchemaVersion = 1

// ValidateStructure checks the shape rules of §4.2's "Structural rules"
// paragraph: schema_version, namespace identifier, semver version, and
// per-action description/steps/param well-formedness. It does not resolve
// any template or cross-reference — that is ValidateSemantics' job, run
// only after this pass reports no errors.
func ValidateStructure(ns *actiond.Namespace) []Error {
	var errs []Error

	if ns.SchemaVersion != supportedSchemaVersion {
		errs = append(errs, errf("schema_version", CodeInvalidValue,
			"unsupported schema_version %d; only %d is recognized", ns.SchemaVersion, supportedSchemaVersion))
	}
	if ns.Name == "" {
		errs = append(errs, errf("namespace", CodeMissingField, "namespace is required"))
	} else if !namespaceNameRe.MatchString(ns.Name) {
		errs = append(errs, errf("namespace", CodeInvalidValue,
			"namespace %q must match [a-z][a-z0-9_-]*", ns.Name))
	}
	if ns.Version == "" {
		errs = append(errs, errf("version", CodeMissingField, "version is required"))
	} else if _, err := semver.NewVersion(ns.Version); err != nil {
		errs = append(errs, errf("version", CodeInvalidValue, "version %q is not valid semver: %v", ns.Version, err))
	}
	if ns.Compatibility != nil {
		errs = append(errs, validateCompatibility(ns.Compatibility)...)
	}

	for name, action := range ns.Actions {
		path := fmt.Sprintf("actions.%s", name)
		errs = append(errs, validateActionStructure(path, action)...)
	}

	return errs
}

func validateCompatibility(c *actiond.Compatibility) []Error {
	var errs []Error
	if c.MinVersion != "" {
		if _, err := semver.NewVersion(c.MinVersion); err != nil {
			errs = append(errs, errf("compatibility.minVersion", CodeInvalidValue, "invalid semver %q: %v", c.MinVersion, err))
		}
	}
	if c.MaxVersion != "" {
		if _, err := semver.NewVersion(c.MaxVersion); err != nil {
			errs = append(errs, errf("compatibility.maxVersion", CodeInvalidValue, "invalid semver %q: %v", c.MaxVersion, err))
		}
	}
	for rng := range c.VersionOverrides {
		if _, err := semver.NewConstraint(rng); err != nil {
			errs = append(errs, errf("compatibility.versionOverrides."+rng, CodeInvalidValue,
				"invalid semver range %q: %v", rng, err))
		}
	}
	if c.MaxDepth < 0 {
		errs = append(errs, errf("compatibility.maxDepth", CodeInvalidValue, "maxDepth cannot be negative"))
	}
	if c.MaxSteps < 0 {
		errs = append(errs, errf("compatibility.maxSteps", CodeInvalidValue, "maxSteps cannot be negative"))
	}
	return errs
}

func validateActionStructure(path string, a actiond.Action) []Error {
	var errs []Error

	if a.Description == "" {
		errs = append(errs, errf(path+".description", CodeMissingField, "description is required"))
	}
	if len(a.Steps) == 0 {
		errs = append(errs, errf(path+".steps", CodeMissingField, "steps must be non-empty"))
	}

	for name, p := range a.Params {
		errs = append(errs, validateParamSpecStructure(fmt.Sprintf("%s.params.%s", path, name), p)...)
	}

	for i, step := range a.Steps {
		errs = append(errs, validateStepStructure(fmt.Sprintf("%s.steps[%d]", path, i), step)...)
	}

	if a.Deprecated && a.AliasOf == "" {
		// allowed: a deprecated action need not declare a replacement.
	}

	return errs
}

func validateParamSpecStructure(path string, p actiond.ParamSpec) []Error {
	var errs []Error
	switch p.Type {
	case actiond.ParamString, actiond.ParamNumber, actiond.ParamBoolean, actiond.ParamEnum, actiond.ParamArray, actiond.ParamObject:
	case "":
		errs = append(errs, errf(path+".type", CodeMissingField, "type is required"))
	default:
		errs = append(errs, errf(path+".type", CodeInvalidValue, "unknown parameter type %q", p.Type))
	}

	if p.Type == actiond.ParamEnum && len(p.Values) == 0 {
		errs = append(errs, errf(path+".values", CodeMissingField, "enum parameter must declare values"))
	}

	if p.Default != nil && p.Type != "" {
		if !defaultMatchesType(p.Default, p.Type) {
			errs = append(errs, errf(path+".default", CodeInvalidValue,
				"default value does not match declared type %q", p.Type))
		}
	}
	return errs
}

func defaultMatchesType(v any, t actiond.ParamType) bool {
	switch t {
	case actiond.ParamString, actiond.ParamEnum:
		_, ok := v.(string)
		return ok
	case actiond.ParamNumber:
		switch v.(type) {
		case float64, int:
			return true
		}
		return false
	case actiond.ParamBoolean:
		_, ok := v.(bool)
		return ok
	case actiond.ParamArray:
		_, ok := v.([]any)
		return ok
	case actiond.ParamObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

func validateStepStructure(path string, s actiond.Step) []Error {
	var errs []Error

	if s.Action == "" {
		errs = append(errs, errf(path+".action", CodeMissingField, "action is required"))
		return errs
	}
	if !isRecognizedStepAction(s.Action) {
		errs = append(errs, errf(path+".action", CodeUnknownStep, "unrecognized step action %q", s.Action))
		return errs
	}

	required := StepActions[s.Action]
	if s.Action == "wait" {
		if !anyArgPresent(s.Args, waitArgs) {
			errs = append(errs, errf(path+".args", CodeMissingArg,
				"wait step requires one of %v", waitArgs))
		}
	} else {
		for _, arg := range required {
			if _, ok := s.Args[arg]; !ok {
				errs = append(errs, errf(path+".args."+arg, CodeMissingArg,
					"step action %q requires arg %q", s.Action, arg))
			}
		}
	}

	switch s.OnError {
	case "", actiond.OnErrorContinue, actiond.OnErrorAbort, actiond.OnErrorFallback:
	default:
		errs = append(errs, errf(path+".onError", CodeInvalidValue, "unknown onError policy %q", s.OnError))
	}

	for i, fb := range s.Fallback {
		errs = append(errs, validateStepStructure(fmt.Sprintf("%s.fallback[%d]", path, i), fb)...)
	}

	return errs
}

func anyArgPresent(args map[string]any, keys []string) bool {
	for _, k := range keys {
		if _, ok := args[k]; ok {
			return true
		}
	}
	return false
}

// Package version implements §4.4's version-detection and
// selector-override logic: deciding which selector overrides apply to an
// action before execution, based on the target component's detected
// version.
package version

import (
	"context"
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"

	"actiond"
)

// PageReader is the read-only subset of the (out-of-scope, §1) browser
// adapter the version manager needs: reading a global variable, a meta
// tag, or evaluating a read-only expression. Detection never writes to
// the page (§4.4 "Detection is read-only").
type PageReader interface {
	ReadGlobalVar(ctx context.Context, name string) (string, error)
	ReadMetaTag(ctx context.Context, name string) (string, error)
	EvalReadOnly(ctx context.Context, expression string) (string, error)
}

// Detect tries each declared strategy in order, falling through to the
// next on failure (§4.4 "Detection is read-only. ... failures fall
// through"). Returns ("", false) if every strategy fails or none is
// declared.
func Detect(ctx context.Context, page PageReader, strategies []actiond.DetectionStrategy) (string, bool) {
	for _, s := range strategies {
		switch {
		case s.GlobalVar != "":
			if v, err := page.ReadGlobalVar(ctx, s.GlobalVar); err == nil && v != "" {
				return v, true
			}
		case s.MetaTag != "":
			if v, err := page.ReadMetaTag(ctx, s.MetaTag); err == nil && v != "" {
				return v, true
			}
		case s.Expression != "":
			if v, err := page.EvalReadOnly(ctx, s.Expression); err == nil && v != "" {
				return v, true
			}
		}
	}
	return "", false
}

// CheckRange reports VERSION_INCOMPATIBLE when detected falls outside
// [minVersion, maxVersion]; an empty bound on either side is unconstrained
// (§4.4 "Range check").
func CheckRange(detected, minVersion, maxVersion string) *actiond.ActionError {
	v, err := semver.NewVersion(detected)
	if err != nil {
		return actiond.NewActionErrorf(actiond.ErrVersionIncompatible, "detected version %q is not valid semver: %v", detected, err)
	}
	if minVersion != "" {
		min, err := semver.NewVersion(minVersion)
		if err == nil && v.LessThan(min) {
			return actiond.NewActionErrorf(actiond.ErrVersionIncompatible,
				"detected version %s is below the minimum %s", detected, minVersion)
		}
	}
	if maxVersion != "" {
		max, err := semver.NewVersion(maxVersion)
		if err == nil && v.GreaterThan(max) {
			return actiond.NewActionErrorf(actiond.ErrVersionIncompatible,
				"detected version %s is above the maximum %s", detected, maxVersion)
		}
	}
	return nil
}

// ApplyOverrides merges every versionOverrides entry whose range matches
// detected into base, later matches (in ascending range-string order, for
// determinism) winning on selector-name collision, and returns the
// resulting alias table (§4.4 "Override application"). base is not
// mutated.
func ApplyOverrides(base map[string]actiond.SelectorDef, detected string, overrides map[string]actiond.VersionOverride) (map[string]actiond.SelectorDef, error) {
	result := make(map[string]actiond.SelectorDef, len(base))
	for k, v := range base {
		result[k] = v
	}
	if detected == "" || len(overrides) == 0 {
		return result, nil
	}
	v, err := semver.NewVersion(detected)
	if err != nil {
		return result, fmt.Errorf("detected version %q is not valid semver: %w", detected, err)
	}

	ranges := make([]string, 0, len(overrides))
	for rng := range overrides {
		ranges = append(ranges, rng)
	}
	sort.Strings(ranges)

	for _, rng := range ranges {
		c, err := semver.NewConstraint(rng)
		if err != nil {
			return result, fmt.Errorf("invalid version range %q: %w", rng, err)
		}
		if !c.Check(v) {
			continue
		}
		for name, sel := range overrides[rng].Selectors {
			result[name] = sel
		}
	}
	return result, nil
}

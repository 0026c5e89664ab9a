package loader

import (
	"fmt"

	"actiond"
)

// topoSortNamespaces orders namespaces so that every namespace appears
// after all namespaces it extends (§4.3 step 3). Returns an error naming
// the cycle if one exists. Namespaces referenced by `extends` but not
// present in the loaded set are treated as already-satisfied leaves (they
// may be resolved by a different source pass, or are simply external and
// ignored — the merge step only needs their absence not to break sorting).
func topoSortNamespaces(namespaces map[string]*actiond.Namespace) ([]string, error) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := make(map[string]int, len(namespaces))
	var order []string

	var visit func(name string, stack []string) error
	visit = func(name string, stack []string) error {
		switch state[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("extends cycle detected: %v -> %s", stack, name)
		}
		ns, ok := namespaces[name]
		if !ok {
			return nil
		}
		state[name] = gray
		for _, parent := range ns.Extends {
			if err := visit(parent, append(stack, name)); err != nil {
				return err
			}
		}
		state[name] = black
		order = append(order, name)
		return nil
	}

	for name := range namespaces {
		if state[name] == white {
			if err := visit(name, nil); err != nil {
				return nil, err
			}
		}
	}
	return order, nil
}

// mergeNamespace deep-merges child onto its already-merged parents,
// following §4.3 step 4's field-by-field rules: namespace/version/
// description come from the child; selectors and actions merge key-wise
// with the child winning on collision; compatibility merges field-wise.
func mergeNamespace(parents []*actiond.Namespace, child *actiond.Namespace) *actiond.Namespace {
	merged := &actiond.Namespace{
		SchemaVersion: child.SchemaVersion,
		Name:          child.Name,
		Version:       child.Version,
		Description:   child.Description,
		Extends:       child.Extends,
		Selectors:     map[string]actiond.SelectorDef{},
		Actions:       map[string]actiond.Action{},
		SourcePath:    child.SourcePath,
	}

	for _, p := range parents {
		for k, v := range p.Selectors {
			merged.Selectors[k] = v
		}
		for k, v := range p.Actions {
			merged.Actions[k] = v
		}
		merged.Compatibility = mergeCompatibility(merged.Compatibility, p.Compatibility)
	}
	for k, v := range child.Selectors {
		merged.Selectors[k] = v
	}
	for k, v := range child.Actions {
		merged.Actions[k] = v
	}
	merged.Compatibility = mergeCompatibility(merged.Compatibility, child.Compatibility)

	return merged
}

// mergeCompatibility field-wise merges override onto base, with override's
// non-zero fields winning. VersionOverrides entries merge key-wise.
func mergeCompatibility(base, override *actiond.Compatibility) *actiond.Compatibility {
	if override == nil {
		return base
	}
	if base == nil {
		clone := *override
		clone.VersionOverrides = cloneOverrides(override.VersionOverrides)
		return &clone
	}

	merged := *base
	if override.MinVersion != "" {
		merged.MinVersion = override.MinVersion
	}
	if override.MaxVersion != "" {
		merged.MaxVersion = override.MaxVersion
	}
	if len(override.Detect) > 0 {
		merged.Detect = override.Detect
	}
	if override.MaxDepth != 0 {
		merged.MaxDepth = override.MaxDepth
	}
	if override.MaxSteps != 0 {
		merged.MaxSteps = override.MaxSteps
	}
	merged.VersionOverrides = cloneOverrides(base.VersionOverrides)
	for k, v := range override.VersionOverrides {
		merged.VersionOverrides[k] = v
	}
	return &merged
}

func cloneOverrides(in map[string]actiond.VersionOverride) map[string]actiond.VersionOverride {
	out := make(map[string]actiond.VersionOverride, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

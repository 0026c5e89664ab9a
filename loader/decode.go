// Package loader discovers action-definition YAML documents from a
// prioritized set of sources, validates them, resolves `extends`
// inheritance, merges namespaces, and indexes the result by fully
// qualified action name (§4.3).
package loader

import (
	"fmt"

	goyaml "gopkg.in/yaml.v3"

	"actiond"
)

// unmarshalSelectorDef decodes a selector definition that may appear either as a
// bare locator string or as a {primary, fallback} record (§3).
func unmarshalSelectorDef(node *goyaml.Node, out *actiond.SelectorDef) error {
	if node.Kind == goyaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		out.Primary = s
		return nil
	}
	type alias actiond.SelectorDef
	var a alias
	if err := node.Decode(&a); err != nil {
		return fmt.Errorf("selector definition must be a string or {primary, fallback}: %w", err)
	}
	*out = actiond.SelectorDef(a)
	return nil
}

// decodeSelectorMap decodes a map[string]SelectorDef node where each value may
// use either selector shape.
func decodeSelectorMap(node *goyaml.Node) (map[string]actiond.SelectorDef, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != goyaml.MappingNode {
		return nil, fmt.Errorf("selectors must be a mapping")
	}
	out := make(map[string]actiond.SelectorDef, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		var def actiond.SelectorDef
		if err := unmarshalSelectorDef(valNode, &def); err != nil {
			return nil, fmt.Errorf("selectors.%s: %w", keyNode.Value, err)
		}
		out[keyNode.Value] = def
	}
	return out, nil
}

// rawNamespace mirrors the YAML file shape (§6) closely enough for
// gopkg.in/yaml.v3 to decode it, before selector fields are re-decoded
// through decodeSelectorMap to handle the dual selector shape.
type rawNamespace struct {
	SchemaVersion int                      `yaml:"schema_version"`
	Namespace     string                   `yaml:"namespace"`
	Version       string                   `yaml:"version"`
	Description   string                   `yaml:"description"`
	Extends       []string                 `yaml:"extends"`
	Compatibility *rawCompatibility        `yaml:"compatibility"`
	Selectors     goyaml.Node              `yaml:"selectors"`
	Actions       map[string]rawAction     `yaml:"actions"`
}

type rawCompatibility struct {
	MinVersion       string                    `yaml:"minVersion"`
	MaxVersion       string                    `yaml:"maxVersion"`
	VersionOverrides map[string]rawOverride    `yaml:"versionOverrides"`
	Detect           []actiond.DetectionStrategy `yaml:"detect"`
	MaxDepth         int                       `yaml:"maxDepth"`
	MaxSteps         int                       `yaml:"maxSteps"`
}

type rawOverride struct {
	Selectors goyaml.Node `yaml:"selectors"`
}

type rawAction struct {
	Description string                     `yaml:"description"`
	Since       string                     `yaml:"since"`
	Deprecated  bool                       `yaml:"deprecated"`
	AliasOf     string                     `yaml:"aliasOf"`
	Params      map[string]actiond.ParamSpec `yaml:"params"`
	Selectors   goyaml.Node                `yaml:"selectors"`
	Steps       []actiond.Step             `yaml:"steps"`
	Returns     map[string]string          `yaml:"returns"`
	Verify      []actiond.VerifyCondition  `yaml:"verify"`
}

// decodeNamespace parses one YAML document into a Namespace, resolving
// both selector-definition shapes along the way.
func decodeNamespace(content []byte, sourcePath string) (*actiond.Namespace, error) {
	var raw rawNamespace
	if err := goyaml.Unmarshal(content, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", sourcePath, err)
	}

	selectors, err := decodeSelectorMap(&raw.Selectors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", sourcePath, err)
	}

	ns := &actiond.Namespace{
		SchemaVersion: raw.SchemaVersion,
		Name:          raw.Namespace,
		Version:       raw.Version,
		Description:   raw.Description,
		Extends:       raw.Extends,
		Selectors:     selectors,
		Actions:       make(map[string]actiond.Action, len(raw.Actions)),
		SourcePath:    sourcePath,
	}

	if raw.Compatibility != nil {
		compat, err := decodeCompatibility(raw.Compatibility)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", sourcePath, err)
		}
		ns.Compatibility = compat
	}

	for name, ra := range raw.Actions {
		actionSelectors, err := decodeSelectorMap(&ra.Selectors)
		if err != nil {
			return nil, fmt.Errorf("%s: actions.%s: %w", sourcePath, name, err)
		}
		ns.Actions[name] = actiond.Action{
			Name:        name,
			Namespace:   raw.Namespace,
			FullName:    actiond.FullyQualifiedName(raw.Namespace, "", name),
			Description: ra.Description,
			Since:       ra.Since,
			Deprecated:  ra.Deprecated,
			AliasOf:     ra.AliasOf,
			Params:      ra.Params,
			Selectors:   actionSelectors,
			Steps:       ra.Steps,
			Returns:     ra.Returns,
			Verify:      ra.Verify,
			SourcePath:  sourcePath,
		}
	}

	return ns, nil
}

func decodeCompatibility(raw *rawCompatibility) (*actiond.Compatibility, error) {
	overrides := make(map[string]actiond.VersionOverride, len(raw.VersionOverrides))
	for rng, ro := range raw.VersionOverrides {
		sel, err := decodeSelectorMap(&ro.Selectors)
		if err != nil {
			return nil, fmt.Errorf("versionOverrides.%s: %w", rng, err)
		}
		overrides[rng] = actiond.VersionOverride{Selectors: sel}
	}
	return &actiond.Compatibility{
		MinVersion:       raw.MinVersion,
		MaxVersion:       raw.MaxVersion,
		VersionOverrides: overrides,
		Detect:           raw.Detect,
		MaxDepth:         raw.MaxDepth,
		MaxSteps:         raw.MaxSteps,
	}, nil
}

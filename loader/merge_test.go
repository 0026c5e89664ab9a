package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiond"
)

func TestTopoSortNamespaces_Order(t *testing.T) {
	namespaces := map[string]*actiond.Namespace{
		"base":  {Name: "base"},
		"child": {Name: "child", Extends: []string{"base"}},
	}
	order, err := topoSortNamespaces(namespaces)
	require.NoError(t, err)
	require.Equal(t, []string{"base", "child"}, order)
}

func TestTopoSortNamespaces_CycleDetected(t *testing.T) {
	namespaces := map[string]*actiond.Namespace{
		"a": {Name: "a", Extends: []string{"b"}},
		"b": {Name: "b", Extends: []string{"a"}},
	}
	_, err := topoSortNamespaces(namespaces)
	assert.Error(t, err)
}

func TestMergeNamespace_ChildOverridesSelectorsAndActions(t *testing.T) {
	parent := &actiond.Namespace{
		Name: "base", Version: "1.0.0",
		Selectors: map[string]actiond.SelectorDef{"submit": {Primary: "#old"}},
		Actions: map[string]actiond.Action{
			"login": {Description: "parent login"},
		},
	}
	child := &actiond.Namespace{
		Name: "child", Version: "2.0.0",
		Selectors: map[string]actiond.SelectorDef{"submit": {Primary: "#new"}},
		Actions: map[string]actiond.Action{
			"logout": {Description: "child logout"},
		},
	}

	merged := mergeNamespace([]*actiond.Namespace{parent}, child)

	assert.Equal(t, "child", merged.Name)
	assert.Equal(t, "2.0.0", merged.Version)
	assert.Equal(t, "#new", merged.Selectors["submit"].Primary)
	assert.Contains(t, merged.Actions, "login")
	assert.Contains(t, merged.Actions, "logout")
}

func TestMergeCompatibility_FieldWise(t *testing.T) {
	base := &actiond.Compatibility{MinVersion: "1.0.0", MaxVersion: "2.0.0", MaxDepth: 5}
	override := &actiond.Compatibility{MaxVersion: "3.0.0"}

	merged := mergeCompatibility(base, override)

	assert.Equal(t, "1.0.0", merged.MinVersion)
	assert.Equal(t, "3.0.0", merged.MaxVersion)
	assert.Equal(t, 5, merged.MaxDepth)
}

func TestMergeCompatibility_VersionOverridesMergeKeyWise(t *testing.T) {
	base := &actiond.Compatibility{
		VersionOverrides: map[string]actiond.VersionOverride{
			"2.x": {Selectors: map[string]actiond.SelectorDef{"a": {Primary: "#a"}}},
		},
	}
	override := &actiond.Compatibility{
		VersionOverrides: map[string]actiond.VersionOverride{
			"3.x": {Selectors: map[string]actiond.SelectorDef{"b": {Primary: "#b"}}},
		},
	}
	merged := mergeCompatibility(base, override)
	assert.Contains(t, merged.VersionOverrides, "2.x")
	assert.Contains(t, merged.VersionOverrides, "3.x")
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiond"
)

func validNamespace() *actiond.Namespace {
	return &actiond.Namespace{
		SchemaVersion: 1,
		Name:          "test",
		Version:       "1.0.0",
		Actions: map[string]actiond.Action{
			"login": {
				Description: "log in",
				Steps: []actiond.Step{
					{Action: "open", Args: map[string]any{"url": "/login"}},
					{Action: "click", Args: map[string]any{"selector": "#submit"}},
				},
			},
		},
	}
}

func TestValidateStructure_Valid(t *testing.T) {
	errs := ValidateStructure(validNamespace())
	assert.Empty(t, errs)
}

func TestValidateStructure_BadSchemaVersion(t *testing.T) {
	ns := validNamespace()
	ns.SchemaVersion = 2
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
	assert.Equal(t, CodeInvalidValue, errs[0].Code)
}

func TestValidateStructure_BadNamespaceName(t *testing.T) {
	ns := validNamespace()
	ns.Name = "Bad Name!"
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
}

func TestValidateStructure_BadVersion(t *testing.T) {
	ns := validNamespace()
	ns.Version = "not-a-semver"
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
}

func TestValidateStructure_EmptyStepsRejected(t *testing.T) {
	ns := validNamespace()
	a := ns.Actions["login"]
	a.Steps = nil
	ns.Actions["login"] = a
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
}

func TestValidateStructure_UnrecognizedStepAction(t *testing.T) {
	ns := validNamespace()
	a := ns.Actions["login"]
	a.Steps = []actiond.Step{{Action: "teleport"}}
	ns.Actions["login"] = a
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Code == CodeUnknownStep {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateStructure_MissingRequiredArg(t *testing.T) {
	ns := validNamespace()
	a := ns.Actions["login"]
	a.Steps = []actiond.Step{{Action: "click"}} // missing "selector"
	ns.Actions["login"] = a
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
}

func TestValidateStructure_WaitAcceptsAnyOneArg(t *testing.T) {
	ns := validNamespace()
	a := ns.Actions["login"]
	a.Steps = []actiond.Step{{Action: "wait", Args: map[string]any{"time": float64(500)}}}
	ns.Actions["login"] = a
	errs := ValidateStructure(ns)
	assert.Empty(t, errs)
}

func TestValidateStructure_EnumRequiresValues(t *testing.T) {
	ns := validNamespace()
	a := ns.Actions["login"]
	a.Params = map[string]actiond.ParamSpec{"mode": {Type: actiond.ParamEnum}}
	ns.Actions["login"] = a
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
}

func TestValidateStructure_DefaultTypeMismatch(t *testing.T) {
	ns := validNamespace()
	a := ns.Actions["login"]
	a.Params = map[string]actiond.ParamSpec{"count": {Type: actiond.ParamNumber, Default: "not-a-number"}}
	ns.Actions["login"] = a
	errs := ValidateStructure(ns)
	require.NotEmpty(t, errs)
}

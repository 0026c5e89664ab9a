package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"actiond"
)

func TestValidateParams_RequiredMissing(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"username": {Type: actiond.ParamString, Required: true},
	}
	_, errs, _ := ValidateParams(specs, map[string]any{})
	require.Len(t, errs, 1)
	assert.Equal(t, actiond.ErrParamRequired, errs[0].Code)
}

func TestValidateParams_DefaultApplied(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"retries": {Type: actiond.ParamNumber, Default: float64(3)},
	}
	resolved, errs, _ := ValidateParams(specs, map[string]any{})
	assert.Empty(t, errs)
	assert.Equal(t, float64(3), resolved["retries"])
}

func TestValidateParams_StringToNumberCoercion(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"count": {Type: actiond.ParamNumber},
	}
	resolved, errs, _ := ValidateParams(specs, map[string]any{"count": "42"})
	assert.Empty(t, errs)
	assert.Equal(t, float64(42), resolved["count"])
}

func TestValidateParams_StringToBoolCoercion(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"flag": {Type: actiond.ParamBoolean},
	}
	resolved, errs, _ := ValidateParams(specs, map[string]any{"flag": "true"})
	assert.Empty(t, errs)
	assert.Equal(t, true, resolved["flag"])
}

func TestValidateParams_InvalidType(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"count": {Type: actiond.ParamNumber},
	}
	_, errs, _ := ValidateParams(specs, map[string]any{"count": "not-a-number"})
	require.Len(t, errs, 1)
	assert.Equal(t, actiond.ErrParamInvalid, errs[0].Code)
}

func TestValidateParams_EnumOutOfRange(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"mode": {Type: actiond.ParamEnum, Values: []string{"a", "b"}},
	}
	_, errs, _ := ValidateParams(specs, map[string]any{"mode": "c"})
	require.Len(t, errs, 1)
	assert.Equal(t, actiond.ErrParamInvalid, errs[0].Code)
}

func TestValidateParams_EnumValid(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"mode": {Type: actiond.ParamEnum, Values: []string{"a", "b"}},
	}
	resolved, errs, _ := ValidateParams(specs, map[string]any{"mode": "b"})
	assert.Empty(t, errs)
	assert.Equal(t, "b", resolved["mode"])
}

func TestValidateParams_UnknownParamWarns(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"username": {Type: actiond.ParamString},
	}
	_, errs, warnings := ValidateParams(specs, map[string]any{"username": "u", "extra": "x"})
	assert.Empty(t, errs)
	require.Len(t, warnings, 1)
}

func TestValidateParams_EmptyInputSucceedsWhenNothingRequired(t *testing.T) {
	specs := map[string]actiond.ParamSpec{
		"username": {Type: actiond.ParamString},
	}
	resolved, errs, _ := ValidateParams(specs, map[string]any{})
	assert.Empty(t, errs)
	assert.Empty(t, resolved)
}

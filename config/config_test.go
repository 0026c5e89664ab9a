package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, 30000, cfg.StepTimeoutMS)
	require.Equal(t, 300000, cfg.ActionTimeoutMS)
	require.Equal(t, 10, cfg.MaxDepth)
	require.Equal(t, 100, cfg.MaxSteps)
	require.True(t, cfg.DetectVersion)
	require.False(t, cfg.Debug)
}

func TestLoad_RawOverridesDefaults(t *testing.T) {
	cfg, err := Load(map[string]any{
		"max_depth":       "5",
		"default_timeout": 1000,
		"debug":           true,
		"paths":           []string{"/etc/actions", "/opt/actions"},
	})
	require.NoError(t, err)
	require.Equal(t, 5, cfg.MaxDepth)
	require.Equal(t, 1000, cfg.StepTimeoutMS)
	require.True(t, cfg.Debug)
	require.Equal(t, []string{"/etc/actions", "/opt/actions"}, cfg.Paths)
}

func TestLoad_EnvOverridesRaw(t *testing.T) {
	t.Setenv("ACTIONS_MAX_DEPTH", "3")
	cfg, err := Load(map[string]any{"max_depth": 5})
	require.NoError(t, err)
	require.Equal(t, 3, cfg.MaxDepth)
}

func TestLoad_ValidationRejectsOutOfRange(t *testing.T) {
	_, err := Load(map[string]any{"max_depth": 0})
	require.Error(t, err)
}

func TestNamespaceLimits_TightenOnly(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	depth, steps := cfg.NamespaceLimits(3, 0)
	require.Equal(t, 3, depth)
	require.Equal(t, cfg.MaxSteps, steps)

	depth, steps = cfg.NamespaceLimits(50, 500)
	require.Equal(t, cfg.MaxDepth, depth, "a namespace cannot loosen the process-wide max depth")
	require.Equal(t, cfg.MaxSteps, steps)
}

// Package config binds the daemon's configuration knobs (§6 "Configuration
// knobs") from defaults, environment variables, and host-supplied raw
// values into a validated Config struct, using a
// defaults → merge → validate pipeline.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

var validate = validator.New()

// Config holds every recognized `actions.*` knob plus its environment
// override, read once at daemon startup.
type Config struct {
	Paths          []string `yaml:"paths" mapstructure:"paths"`
	Packages       []string `yaml:"packages" mapstructure:"packages"`
	StepTimeoutMS  int      `yaml:"default_timeout" mapstructure:"default_timeout" default:"30000" validate:"gte=1"`
	ActionTimeoutMS int     `yaml:"action_timeout" mapstructure:"action_timeout" default:"300000" validate:"gte=1"`
	MaxDepth       int      `yaml:"max_depth" mapstructure:"max_depth" default:"10" validate:"gte=1,lte=1000"`
	MaxSteps       int      `yaml:"max_steps" mapstructure:"max_steps" default:"100" validate:"gte=1,lte=100000"`
	Debug          bool     `yaml:"debug" mapstructure:"debug"`
	DetectVersion  bool     `yaml:"detect_version" mapstructure:"detect_version" default:"true"`
}

// envPrefix is the consistent prefix §6 requires for environment overrides
// of `actions.*` config keys, e.g. ACTIONS_MAX_DEPTH.
const envPrefix = "ACTIONS_"

// Load applies defaults, merges raw (host-supplied) values, merges
// environment overrides, and validates the result — the single entrypoint
// for building a Config.
func Load(raw map[string]any) (*Config, error) {
	cfg := &Config{}

	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("applying config defaults: %w", err)
	}

	if len(raw) > 0 {
		if err := mapToStructFromYAML(raw, cfg); err != nil {
			return nil, fmt.Errorf("applying config values: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validate.Struct(cfg); err != nil {
		return nil, formatValidationError(err)
	}

	return cfg, nil
}

// mapToStructFromYAML decodes a raw map into target using the struct's
// `yaml` tags, weakly typed so JSON numbers, env strings, and bools all
// coerce cleanly.
func mapToStructFromYAML(raw map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("building decoder: %w", err)
	}
	return decoder.Decode(raw)
}

// applyEnvOverrides reads ACTIONS_* environment variables and overlays
// them onto cfg, consistent with the `yaml` field names upper-cased.
func applyEnvOverrides(cfg *Config) {
	if v, ok := lookupEnv("PATHS"); ok {
		cfg.Paths = splitNonEmpty(v)
	}
	if v, ok := lookupEnv("PACKAGES"); ok {
		cfg.Packages = splitNonEmpty(v)
	}
	if v, ok := lookupEnvInt("DEFAULT_TIMEOUT"); ok {
		cfg.StepTimeoutMS = v
	}
	if v, ok := lookupEnvInt("ACTION_TIMEOUT"); ok {
		cfg.ActionTimeoutMS = v
	}
	if v, ok := lookupEnvInt("MAX_DEPTH"); ok {
		cfg.MaxDepth = v
	}
	if v, ok := lookupEnvInt("MAX_STEPS"); ok {
		cfg.MaxSteps = v
	}
	if v, ok := lookupEnvBool("DEBUG"); ok {
		cfg.Debug = v
	}
	if v, ok := lookupEnvBool("DETECT_VERSION"); ok {
		cfg.DetectVersion = v
	}
}

func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(envPrefix + key)
}

func lookupEnvInt(key string) (int, bool) {
	s, ok := lookupEnv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func lookupEnvBool(key string) (bool, bool) {
	s, ok := lookupEnv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, false
	}
	return b, true
}

func splitNonEmpty(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func formatValidationError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("config validation failed: %w", err)
	}
	var msgs []string
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed validation: %s (rule: %s)", fe.Field(), fe.Error(), fe.Tag()))
	}
	return fmt.Errorf("config validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// NamespaceLimits resolves the effective maxDepth/maxSteps for a namespace,
// letting a namespace's compatibility block tighten (never loosen) the
// process-wide defaults (SPEC_FULL.md "Supplemented features").
func (c *Config) NamespaceLimits(nsMaxDepth, nsMaxSteps int) (maxDepth, maxSteps int) {
	maxDepth, maxSteps = c.MaxDepth, c.MaxSteps
	if nsMaxDepth > 0 && nsMaxDepth < maxDepth {
		maxDepth = nsMaxDepth
	}
	if nsMaxSteps > 0 && nsMaxSteps < maxSteps {
		maxSteps = nsMaxSteps
	}
	return maxDepth, maxSteps
}

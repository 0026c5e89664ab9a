// Package actiond is the semantic action registry: it turns declarative
// YAML action definitions plus runtime parameters into a deterministic
// sequence of browser-adapter calls.
package actiond

// ParamType enumerates the parameter types a parameter spec may declare.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamEnum    ParamType = "enum"
	ParamArray   ParamType = "array"
	ParamObject  ParamType = "object"
)

// ParamSpec describes one declared parameter of an action.
type ParamSpec struct {
	Type        ParamType `yaml:"type"`
	Required    bool      `yaml:"required,omitempty"`
	Default     any       `yaml:"default,omitempty"`
	Values      []string  `yaml:"values,omitempty"`
	Secret      bool      `yaml:"secret,omitempty"`
	Description string    `yaml:"description,omitempty"`
}

// SelectorDef is either a bare locator string or a primary/fallback chain.
// unmarshalSelectorDef in loader/decode.go resolves both shapes into this struct.
type SelectorDef struct {
	Primary  string   `yaml:"primary"`
	Fallback []string `yaml:"fallback,omitempty"`
}

// OnErrorPolicy is the step-level failure policy once retries and
// fallback steps (if any) are exhausted.
type OnErrorPolicy string

const (
	OnErrorContinue OnErrorPolicy = "continue"
	OnErrorAbort    OnErrorPolicy = "abort"
	OnErrorFallback OnErrorPolicy = "fallback"
)

// Step is one executable unit of an action. Steps are immutable once an
// action is registered; executing a step produces a result kept in the
// execution context under Output (when set).
type Step struct {
	Action    string         `yaml:"action"`
	Args      map[string]any `yaml:"args,omitempty"`
	When      string         `yaml:"when,omitempty"`
	Output    string         `yaml:"output,omitempty"`
	Timeout   int            `yaml:"timeout,omitempty"` // ms
	Retry     int            `yaml:"retry,omitempty"`
	RetryWait int            `yaml:"retryDelay,omitempty"` // ms, base for backoff
	OnError   OnErrorPolicy  `yaml:"onError,omitempty"`
	Fallback  []Step         `yaml:"fallback,omitempty"`
}

// VerifyCondition is one post-execution assertion run against the final
// execution context.
type VerifyCondition struct {
	Condition string `yaml:"condition"`
	Message   string `yaml:"message"`
}

// Action is one invokable unit, owned by exactly one Namespace. Immutable
// after registration; the loader builds these from YAML and the registry
// indexes them by fully qualified name.
type Action struct {
	Name        string                 `yaml:"-"` // short name, set by the loader from the map key
	Namespace   string                 `yaml:"-"`
	FullName    string                 `yaml:"-"`
	Description string                 `yaml:"description"`
	Since       string                 `yaml:"since,omitempty"`
	Deprecated  bool                   `yaml:"deprecated,omitempty"`
	AliasOf     string                 `yaml:"aliasOf,omitempty"`
	Params      map[string]ParamSpec   `yaml:"params,omitempty"`
	Selectors   map[string]SelectorDef `yaml:"selectors,omitempty"`
	Steps       []Step                 `yaml:"steps"`
	Returns     map[string]string      `yaml:"returns,omitempty"`
	Verify      []VerifyCondition      `yaml:"verify,omitempty"`

	SourcePath string `yaml:"-"`
}

// VersionOverride supplies replacement selector aliases applied when a
// namespace's detected component version matches its semver range key.
type VersionOverride struct {
	Selectors map[string]SelectorDef `yaml:"selectors,omitempty"`
}

// Compatibility is the optional version-gating block of a namespace.
type Compatibility struct {
	MinVersion       string                      `yaml:"minVersion,omitempty"`
	MaxVersion       string                      `yaml:"maxVersion,omitempty"`
	VersionOverrides map[string]VersionOverride  `yaml:"versionOverrides,omitempty"`
	Detect           []DetectionStrategy         `yaml:"detect,omitempty"`
	MaxDepth         int                         `yaml:"maxDepth,omitempty"`
	MaxSteps         int                         `yaml:"maxSteps,omitempty"`
}

// DetectionStrategy is one declared way to read a component's version off
// the live page. The version manager tries these in order (§4.4).
type DetectionStrategy struct {
	GlobalVar  string `yaml:"globalVar,omitempty"`
	MetaTag    string `yaml:"metaTag,omitempty"`
	Expression string `yaml:"expression,omitempty"`
}

// Namespace is a grouping of actions owned by one author, created at load
// time and immutable after registration.
type Namespace struct {
	Name          string                 `yaml:"namespace"`
	Version       string                 `yaml:"version"`
	Description   string                 `yaml:"description"`
	Extends       []string               `yaml:"extends,omitempty"`
	Compatibility *Compatibility         `yaml:"compatibility,omitempty"`
	Selectors     map[string]SelectorDef `yaml:"selectors,omitempty"`
	Actions       map[string]Action      `yaml:"actions"`
	SchemaVersion int                    `yaml:"schema_version"`

	SourcePath string `yaml:"-"`
}

// FullyQualifiedName joins namespace, optional component, and action name
// with ':'. The component segment is optional per §3.
func FullyQualifiedName(namespace, component, action string) string {
	if component == "" {
		return namespace + ":" + action
	}
	return namespace + ":" + component + ":" + action
}

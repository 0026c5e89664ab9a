package actiond

import "fmt"

// ErrorCode is the fixed enum of §7. User-defined step bodies never mint
// their own codes — the vocabulary is closed.
type ErrorCode string

const (
	ErrActionNotFound       ErrorCode = "ACTION_NOT_FOUND"
	ErrParamRequired        ErrorCode = "PARAM_REQUIRED"
	ErrParamInvalid         ErrorCode = "PARAM_INVALID"
	ErrElementNotFound      ErrorCode = "ELEMENT_NOT_FOUND"
	ErrTimeout              ErrorCode = "TIMEOUT"
	ErrStepFailed           ErrorCode = "STEP_FAILED"
	ErrVersionIncompatible  ErrorCode = "VERSION_INCOMPATIBLE"
	ErrVerifyFailed         ErrorCode = "VERIFY_FAILED"
	ErrMaxDepthExceeded     ErrorCode = "MAX_DEPTH_EXCEEDED"
	ErrMaxStepsExceeded     ErrorCode = "MAX_STEPS_EXCEEDED"
	ErrExpressionError      ErrorCode = "EXPRESSION_ERROR"
	ErrValidationError      ErrorCode = "VALIDATION_ERROR"
	ErrCancelled            ErrorCode = "CANCELLED"
)

// ActionError is the single structured error type the core surfaces on
// failure (§7). It is the only error shape an ActionResult ever carries.
type ActionError struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Action     string         `json:"action,omitempty"`
	Step       string         `json:"step,omitempty"`
	StepAction string         `json:"stepAction,omitempty"`
	SourcePath string         `json:"sourcePath,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	Suggestion string         `json:"suggestion,omitempty"`

	cause error
}

func (e *ActionError) Error() string {
	if e.Step != "" {
		return fmt.Sprintf("[%s] %s (action: %s, step: %s)", e.Code, e.Message, e.Action, e.Step)
	}
	return fmt.Sprintf("[%s] %s (action: %s)", e.Code, e.Message, e.Action)
}

// Unwrap exposes the original cause, if any, for errors.Is/errors.As.
func (e *ActionError) Unwrap() error { return e.cause }

// WithCause attaches the underlying error as details.cause and as the
// Unwrap target, mirroring how recursive `run` failures preserve the
// inner error (§7 propagation policy).
func (e *ActionError) WithCause(err error) *ActionError {
	e.cause = err
	if err == nil {
		return e
	}
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details["cause"] = err.Error()
	return e
}

// WithAction sets the action field and returns e, for chaining onto a
// freshly built error.
func (e *ActionError) WithAction(fullName string) *ActionError {
	e.Action = fullName
	return e
}

// WithStep sets the step output name and step action kind, for chaining.
func (e *ActionError) WithStep(output, stepAction string) *ActionError {
	e.Step = output
	e.StepAction = stepAction
	return e
}

// NewActionError builds an ActionError for the given code and message.
func NewActionError(code ErrorCode, message string) *ActionError {
	return &ActionError{Code: code, Message: message}
}

// NewActionErrorf builds an ActionError with a formatted message.
func NewActionErrorf(code ErrorCode, format string, args ...any) *ActionError {
	return &ActionError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// TraceEntry records one step's execution for debug-mode ActionResults.
type TraceEntry struct {
	Index         int            `json:"index"`
	StepAction    string         `json:"stepAction"`
	DurationMS    int64          `json:"durationMs"`
	Success       bool           `json:"success"`
	SelectorUsed  string         `json:"selectorUsed,omitempty"`
	Args          map[string]any `json:"args,omitempty"`
	Error         string         `json:"error,omitempty"`
	Skipped       bool           `json:"skipped,omitempty"`
}

// ActionResult is the externally visible outcome of one invocation (§3).
type ActionResult struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   *ActionError   `json:"error,omitempty"`
	Trace   []TraceEntry   `json:"trace,omitempty"`
}

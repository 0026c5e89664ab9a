// Package schema validates action definition documents, both structurally
// at load time and for runtime parameter checks at invocation time (§4.2).
package schema

import "fmt"

// Error is one structural or semantic validation finding. Path identifies
// the offending location inside the document (e.g.
// "actions.login.steps[2].when"); Code is a short machine-readable tag
// surfaced verbatim on the action.validate RPC (§6).
type Error struct {
	Path    string
	Code    string
	Message string
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Path, e.Message, e.Code)
}

func errf(path, code, format string, args ...any) Error {
	return Error{Path: path, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Error codes. These are validator-internal tags, distinct from the
// executor's ErrorCode enum (§7) — a validate call never runs an action,
// so it never needs the runtime codes.
const (
	CodeMissingField    = "MISSING_FIELD"
	CodeInvalidValue    = "INVALID_VALUE"
	CodeUnknownScope    = "UNKNOWN_SCOPE"
	CodeUnknownRef      = "UNKNOWN_REF"
	CodeUnknownStep     = "UNKNOWN_STEP_ACTION"
	CodeMissingArg      = "MISSING_ARG"
	CodeExpressionError = "EXPRESSION_ERROR"
	CodeOrderViolation  = "ORDER_VIOLATION"
	CodeAliasInvalid    = "ALIAS_INVALID"
	CodeCycle           = "FALLBACK_CYCLE"
)

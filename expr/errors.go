package expr

import "fmt"

// Error is raised on any lexical, syntactic, semantic, or safety
// violation in template interpolation or condition evaluation (§4.1).
// Offset is a byte offset into the original expression text.
type Error struct {
	Message string
	Offset  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("expression error at offset %d: %s", e.Offset, e.Message)
}

func newError(offset int, format string, args ...any) *Error {
	return &Error{Offset: offset, Message: fmt.Sprintf(format, args...)}
}

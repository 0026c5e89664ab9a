package executor

import "actiond"

// DispatchError is the hint a concrete browser adapter may attach to an
// error it returns, telling the retry loop how to classify the failure
// instead of leaving every adapter error to default to STEP_FAILED.
// Adapters that don't care can keep returning plain errors; translateErr
// falls back to STEP_FAILED for those.
type DispatchError struct {
	Code      actiond.ErrorCode
	Retryable bool
	Err       error
}

func (d *DispatchError) Error() string { return d.Err.Error() }
func (d *DispatchError) Unwrap() error { return d.Err }

// NewDispatchError wraps err with a classification an adapter implementation
// can use to steer retry behavior (e.g. a navigation timeout is retryable,
// a malformed selector syntax is not).
func NewDispatchError(code actiond.ErrorCode, retryable bool, err error) *DispatchError {
	return &DispatchError{Code: code, Retryable: retryable, Err: err}
}

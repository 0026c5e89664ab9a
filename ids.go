package actiond

import "github.com/google/uuid"

// newExecutionID mints a random ID for one action invocation, stored as
// Context.ExecutionID.
func newExecutionID() string {
	return uuid.New().String()
}

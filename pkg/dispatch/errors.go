package dispatch

import "fmt"

// Error describes a dispatch failure. The gate controller records it as a
// failed Effect on the cycle; it carries no power to change the decision.
type Error struct {
	// Code classifies the failure for the audit record.
	Code string

	// Message is a human-readable description.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dispatch error [%s]: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("dispatch error [%s]: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

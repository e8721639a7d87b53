package policy

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrVersionNotFound indicates the registry holds no set with the
	// requested version.
	ErrVersionNotFound = errors.New("policy set version not found")

	// ErrVersionConflict indicates an attempt to republish an existing
	// version with different content. Versions are immutable.
	ErrVersionConflict = errors.New("policy set version already published with different content")
)

// LoadError describes a policy set that could not be loaded or failed
// structural validation.
type LoadError struct {
	Source  string // file path or "<memory>"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("policy load error [%s]: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("policy load error [%s]: %s", e.Source, e.Message)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// FaultError describes an internal evaluation fault: a malformed rule, a bad
// pattern, or non-comparable operands. The gate resolves every FaultError to
// a halt decision, never to a permit.
type FaultError struct {
	RuleID  string
	Field   string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *FaultError) Error() string {
	msg := fmt.Sprintf("policy evaluation fault [rule=%s, field=%s]: %s", e.RuleID, e.Field, e.Message)
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *FaultError) Unwrap() error {
	return e.Cause
}

package audit

import "fmt"

// SinkError describes a failure of the external audit sink.
type SinkError struct {
	Sink      string // sink kind ("memory", "file", "sqlite")
	Operation string // operation that failed ("append", "open", "load")
	Cause     error
}

// Error implements the error interface.
func (e *SinkError) Error() string {
	return fmt.Sprintf("audit sink error [sink=%s, operation=%s]: %v", e.Sink, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *SinkError) Unwrap() error {
	return e.Cause
}

// NewSinkError creates a SinkError.
func NewSinkError(sink, operation string, cause error) *SinkError {
	return &SinkError{Sink: sink, Operation: operation, Cause: cause}
}

// EmissionError indicates an append that failed after exhausting its
// retries. The decision and effect it describes are not revised; the
// condition is fatal-operational and surfaced through health and metrics.
type EmissionError struct {
	CorrelationID string
	Attempts      uint
	Cause         error
}

// Error implements the error interface.
func (e *EmissionError) Error() string {
	return fmt.Sprintf("audit emission failed [correlation_id=%s, attempts=%d]: %v",
		e.CorrelationID, e.Attempts, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *EmissionError) Unwrap() error {
	return e.Cause
}

// ChainError indicates a record that fails chain verification.
type ChainError struct {
	Seq     uint64
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ChainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("audit chain invalid at seq %d: %s: %v", e.Seq, e.Message, e.Cause)
	}
	return fmt.Sprintf("audit chain invalid at seq %d: %s", e.Seq, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ChainError) Unwrap() error {
	return e.Cause
}

package dispatch

import (
	"context"
	"time"
)

// Effect statuses.
const (
	// StatusCompleted indicates the executor performed the action.
	StatusCompleted = "completed"

	// StatusFailed indicates dispatch or execution failed. The failure is
	// recorded as an effect; it never reopens the issued decision.
	StatusFailed = "failed"
)

// Action is the executable content of a permitted intent. It carries no
// decision or policy information.
type Action struct {
	// IntentID is the producer-assigned intent identifier.
	IntentID string `json:"intentId"`

	// SchemaVersion is the payload schema version declared on the intent.
	SchemaVersion string `json:"schemaVersion"`

	// Payload is the frozen action content.
	Payload map[string]any `json:"payload"`
}

// Effect is the observed result of dispatching an action.
type Effect struct {
	// Status is "completed" or "failed".
	Status string `json:"status"`

	// Delta is the executor-reported observed state change, if any.
	Delta map[string]any `json:"effectDelta,omitempty"`

	// ObservedAt is when the effect (or failure) was observed.
	ObservedAt time.Time `json:"observedAt"`

	// FailureCode classifies a failed dispatch ("executor-unreachable",
	// "executor-rejected", "executor-error"). Empty on success.
	FailureCode string `json:"failureCode,omitempty"`
}

// Executor forwards an action to the external execution system. It is
// invoked by the gate controller only under a permit decision, at most once
// per cycle.
type Executor interface {
	// Execute performs the action. Implementations return a completed
	// Effect, or an error which the controller records as a failed Effect.
	Execute(ctx context.Context, correlationID string, action Action) (*Effect, error)
}

// FailedEffect builds the effect recorded for a dispatch error.
func FailedEffect(code string, cause error) *Effect {
	eff := &Effect{
		Status:      StatusFailed,
		ObservedAt:  time.Now().UTC(),
		FailureCode: code,
	}
	if cause != nil {
		eff.Delta = map[string]any{"error": cause.Error()}
	}
	return eff
}

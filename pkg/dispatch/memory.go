package dispatch

import (
	"context"
	"sync"
	"time"
)

// MemoryExecutor is an in-process executor used for tests and local runs. It
// records every dispatched action and returns a configurable effect.
type MemoryExecutor struct {
	mu       sync.Mutex
	executed []Action

	// Fail, when set, makes every Execute return this error instead of an
	// effect.
	Fail error

	// Delta is returned as the observed state delta on success.
	Delta map[string]any
}

// NewMemoryExecutor creates an in-memory executor.
func NewMemoryExecutor() *MemoryExecutor {
	return &MemoryExecutor{}
}

// Execute records the action and returns a completed effect, or Fail.
func (e *MemoryExecutor) Execute(ctx context.Context, correlationID string, action Action) (*Effect, error) {
	e.mu.Lock()
	e.executed = append(e.executed, action)
	e.mu.Unlock()

	if e.Fail != nil {
		return nil, e.Fail
	}
	return &Effect{
		Status:     StatusCompleted,
		Delta:      e.Delta,
		ObservedAt: time.Now().UTC(),
	}, nil
}

// Executed returns a copy of the actions dispatched so far.
func (e *MemoryExecutor) Executed() []Action {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Action, len(e.executed))
	copy(out, e.executed)
	return out
}

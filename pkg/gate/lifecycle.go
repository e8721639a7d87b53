package gate

import (
	"fmt"
	"time"

	"sentinel-hq/janus/pkg/dispatch"
	"sentinel-hq/janus/pkg/intake"
)

// Step is one state of the execution cycle lifecycle.
type Step int

// Lifecycle steps, in their fixed order. A cycle only ever moves forward.
const (
	StepPresented Step = iota
	StepIntentReceived
	StepValidated
	StepEvaluated
	StepDecisionIssued
	StepDispatchedOrSuppressed
	StepStateCommitted
	StepAuditEmitted
)

var stepNames = [...]string{
	"Presented",
	"IntentReceived",
	"Validated",
	"Evaluated",
	"DecisionIssued",
	"DispatchedOrSuppressed",
	"StateCommitted",
	"AuditEmitted",
}

// String returns the step name.
func (s Step) String() string {
	if s < StepPresented || s > StepAuditEmitted {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// canTransition reports whether a cycle at from may move to to. Two moves
// exist: one step forward, or the failure jump from any pre-decision step
// directly to DecisionIssued (where the halt is issued).
func canTransition(from, to Step) bool {
	if to == from+1 {
		return true
	}
	if to == StepDecisionIssued && from < StepDecisionIssued {
		return true
	}
	return false
}

// Cycle is one full pass through the lifecycle for a single submission. It is
// created at intake, advances monotonically, terminates at audit emission,
// and is never reused or resumed.
type Cycle struct {
	// CorrelationID identifies the cycle. For submissions that fail before
	// validation can assign one, the controller assigns it directly.
	CorrelationID string

	// Step is the current lifecycle step.
	Step Step

	// StepTimes records when each step was entered.
	StepTimes map[Step]time.Time

	// Input is the frozen validated input. Nil when validation failed; the
	// raw hashes below still identify what was presented.
	Input *intake.ValidatedInput

	// RawIntentHash and RawStateHash cover the presented bytes for cycles
	// whose input never validated.
	RawIntentHash string
	RawStateHash  string

	// PolicySetVersion and PolicyRefHash identify the immutable rule set
	// snapshot the cycle evaluated against. Empty when the cycle failed
	// before a set was resolved.
	PolicySetVersion string
	PolicyRefHash    string

	// Decision is the issued decision. Set exactly once, at
	// DecisionIssued; immutable afterwards.
	Decision *Decision

	// Effect is the observed dispatch result. Set only on permit cycles.
	Effect *dispatch.Effect

	// ReceivedAt is when the submission was presented.
	ReceivedAt time.Time
}

// newCycle starts a cycle at Presented.
func newCycle(now time.Time) *Cycle {
	c := &Cycle{
		Step:       StepPresented,
		StepTimes:  make(map[Step]time.Time, int(StepAuditEmitted)+1),
		ReceivedAt: now,
	}
	c.StepTimes[StepPresented] = now
	return c
}

// advance moves the cycle to the next step, enforcing the forward-only
// transition table. An invalid transition is a programming error in the
// controller and panics rather than corrupting cycle state.
func (c *Cycle) advance(to Step) {
	if !canTransition(c.Step, to) {
		panic(fmt.Sprintf("gate: invalid lifecycle transition %s -> %s", c.Step, to))
	}
	c.Step = to
	c.StepTimes[to] = time.Now().UTC()
}

// Terminal reports whether the cycle has reached its terminal step.
func (c *Cycle) Terminal() bool {
	return c.Step == StepAuditEmitted
}

// DecidedAt returns when the decision was issued, when it exists.
func (c *Cycle) DecidedAt() time.Time {
	return c.StepTimes[StepDecisionIssued]
}

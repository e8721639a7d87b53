package gate

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from Step
		to   Step
		want bool
	}{
		{"forward step", StepPresented, StepIntentReceived, true},
		{"forward step late", StepStateCommitted, StepAuditEmitted, true},
		{"failure jump from presented", StepPresented, StepDecisionIssued, true},
		{"failure jump from validated", StepValidated, StepDecisionIssued, true},
		{"failure jump from evaluated", StepEvaluated, StepDecisionIssued, true},
		{"no skip forward", StepIntentReceived, StepEvaluated, false},
		{"no backward", StepEvaluated, StepValidated, false},
		{"no self loop", StepValidated, StepValidated, false},
		{"no jump after decision", StepDispatchedOrSuppressed, StepDecisionIssued, false},
		{"no jump past decision", StepValidated, StepAuditEmitted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("canTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestCycleAdvance(t *testing.T) {
	c := newCycle(time.Now().UTC())
	if c.Step != StepPresented {
		t.Fatalf("initial step = %s", c.Step)
	}

	for _, step := range []Step{
		StepIntentReceived,
		StepValidated,
		StepEvaluated,
		StepDecisionIssued,
		StepDispatchedOrSuppressed,
		StepStateCommitted,
		StepAuditEmitted,
	} {
		c.advance(step)
		if c.Step != step {
			t.Fatalf("step = %s, want %s", c.Step, step)
		}
		if c.StepTimes[step].IsZero() {
			t.Errorf("no entry time recorded for %s", step)
		}
	}
	if !c.Terminal() {
		t.Error("cycle not terminal after AuditEmitted")
	}
}

func TestCycleAdvancePanicsOnInvalidTransition(t *testing.T) {
	c := newCycle(time.Now().UTC())
	c.advance(StepIntentReceived)
	c.advance(StepValidated)

	defer func() {
		if recover() == nil {
			t.Error("expected panic on backward transition")
		}
	}()
	c.advance(StepIntentReceived)
}

func TestStepString(t *testing.T) {
	if got := StepDecisionIssued.String(); got != "DecisionIssued" {
		t.Errorf("String() = %q", got)
	}
	if got := Step(42).String(); got != "Step(42)" {
		t.Errorf("out of range String() = %q", got)
	}
}

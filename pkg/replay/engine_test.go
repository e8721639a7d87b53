package replay_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"sentinel-hq/janus/pkg/audit"
	"sentinel-hq/janus/pkg/dispatch"
	"sentinel-hq/janus/pkg/gate"
	"sentinel-hq/janus/pkg/intake"
	"sentinel-hq/janus/pkg/intent"
	"sentinel-hq/janus/pkg/policy"
	"sentinel-hq/janus/pkg/replay"
)

const replaySetYAML = `
setId: payments
version: v1
default: suppress
rules:
  - id: block-large
    priority: 100
    decision: halt
    when:
      - {field: payload.amount, operator: gt, value: 500}
  - id: allow-transfer
    priority: 50
    decision: permit
    when:
      - {field: payload.kind, operator: eq, value: transfer}
`

func newRegistry(t *testing.T) *policy.Registry {
	t.Helper()
	set, err := policy.Load([]byte(replaySetYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := policy.NewRegistry()
	if err := r.Publish(set); err != nil {
		t.Fatalf("publish: %v", err)
	}
	return r
}

func frozenInput(amount float64) replay.FrozenInput {
	return replay.FrozenInput{
		Intent: intent.Intent{
			ID:            "intent-1",
			SchemaVersion: "v1",
			Payload:       map[string]any{"kind": "transfer", "amount": amount},
			ProducerID:    "producer-1",
			CreatedAt:     time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		},
		State: intent.ReferencedState{
			StateVersion: "state-1",
			Context:      map[string]any{"balance": 1000.0},
			CapturedAt:   time.Date(2026, 3, 1, 9, 59, 0, 0, time.UTC),
		},
	}
}

func TestReplayReproducesDecision(t *testing.T) {
	engine := replay.New(newRegistry(t))

	tests := []struct {
		name       string
		amount     float64
		wantValue  policy.Outcome
		wantReason string
	}{
		{"permit", 100, policy.OutcomePermit, policy.ReasonRule("allow-transfer")},
		{"halt", 750, policy.OutcomeHalt, policy.ReasonRule("block-large")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision, err := engine.Replay(frozenInput(tt.amount), "v1", gate.ControlLayerVersion)
			if err != nil {
				t.Fatalf("Replay failed: %v", err)
			}
			if decision.Value != tt.wantValue {
				t.Errorf("value = %q, want %q", decision.Value, tt.wantValue)
			}
			if decision.Reasons[0] != tt.wantReason {
				t.Errorf("reasons = %v", decision.Reasons)
			}
			if decision.ProvenanceID == "" {
				t.Error("no provenance id computed")
			}
		})
	}
}

func TestReplayRejectsUnknownVersions(t *testing.T) {
	engine := replay.New(newRegistry(t))

	_, err := engine.Replay(frozenInput(100), "v1", "99.0.0")
	var cle *replay.ControlLayerError
	if !errors.As(err, &cle) {
		t.Errorf("control layer error = %v, want *ControlLayerError", err)
	}

	if _, err := engine.Replay(frozenInput(100), "v404", gate.ControlLayerVersion); !errors.Is(err, policy.ErrVersionNotFound) {
		t.Errorf("unknown policy version error = %v", err)
	}
}

// liveDecision runs a full gate cycle and returns the resulting audit
// record, giving replay a real archive entry to reproduce.
func liveDecision(t *testing.T, registry *policy.Registry, amount float64) *audit.Record {
	t.Helper()

	sink := audit.NewMemorySink()
	controller := gate.NewController(
		intake.NewValidator(nil),
		registry,
		dispatch.NewMemoryExecutor(),
		audit.NewRecorder(sink, nil, nil),
		nil,
		gate.DefaultConfig("v1"),
	)

	rawIntent, err := json.Marshal(map[string]any{
		"id":            "intent-1",
		"schemaVersion": "v1",
		"producerId":    "producer-1",
		"createdAt":     "2026-03-01T10:00:00Z",
		"payload":       map[string]any{"kind": "transfer", "amount": amount},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	rawState, err := json.Marshal(map[string]any{
		"stateVersion": "state-1",
		"capturedAt":   "2026-03-01T09:59:00Z",
		"context":      map[string]any{"balance": 1000.0},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	if _, err := controller.Process(context.Background(), rawIntent, rawState); err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	records, err := sink.LoadAll(context.Background())
	if err != nil || len(records) != 1 {
		t.Fatalf("records = %v, err = %v", records, err)
	}
	return records[0]
}

func TestCheckAgainstLiveCycle(t *testing.T) {
	registry := newRegistry(t)
	engine := replay.New(registry)

	for _, amount := range []float64{100, 750} {
		record := liveDecision(t, registry, amount)
		if err := engine.Check(record); err != nil {
			t.Errorf("amount %v: live decision not reproduced: %v", amount, err)
		}
	}
}

func TestCheckDetectsMismatch(t *testing.T) {
	registry := newRegistry(t)
	engine := replay.New(registry)

	record := liveDecision(t, registry, 100)
	record.Decision.Value = policy.OutcomeHalt

	err := engine.Check(record)
	var me *replay.MismatchError
	if !errors.As(err, &me) {
		t.Fatalf("error = %v, want *MismatchError", err)
	}
	if me.ReproducedValue != string(policy.OutcomePermit) {
		t.Errorf("reproduced = %q", me.ReproducedValue)
	}
}

func TestCheckSkipsUnvalidatedCycles(t *testing.T) {
	engine := replay.New(newRegistry(t))

	err := engine.Check(&audit.Record{Seq: 1, CorrelationID: "rejected"})
	var nre *replay.NotReplayableError
	if !errors.As(err, &nre) {
		t.Errorf("error = %v, want *NotReplayableError", err)
	}
}

func TestCheckSkipsOperationalHalts(t *testing.T) {
	engine := replay.New(newRegistry(t))
	frozen := frozenInput(100)

	// Halts carrying these reasons were caused by the live cycle's operating
	// conditions, not by the frozen input; re-evaluation must not report them
	// as mismatches.
	reasons := []string{
		gate.ReasonCancelled,
		gate.ReasonPolicyUnavailable,
		policy.ReasonEvaluationTimeout,
	}
	for _, reason := range reasons {
		t.Run(reason, func(t *testing.T) {
			record := &audit.Record{
				Seq:           1,
				CorrelationID: "op-halt",
				Intent:        &frozen.Intent,
				State:         &frozen.State,
				Decision: gate.Decision{
					Value:               policy.OutcomeHalt,
					Reasons:             []string{reason},
					PolicySetVersion:    gate.PolicySetVersionUnresolved,
					ControlLayerVersion: gate.ControlLayerVersion,
				},
			}

			err := engine.Check(record)
			var nre *replay.NotReplayableError
			if !errors.As(err, &nre) {
				t.Errorf("error = %v, want *NotReplayableError", err)
			}
		})
	}
}

func TestCheckArchiveSkipsUnavailablePolicySetHalts(t *testing.T) {
	registry := newRegistry(t)
	engine := replay.New(registry)

	sink := audit.NewMemorySink()
	recorder := audit.NewRecorder(sink, nil, nil)

	// A controller pinned to an unpublished version halts every validated
	// submission with an unresolved policy-set version, and the record still
	// carries frozen input.
	unpinned := gate.NewController(
		intake.NewValidator(nil),
		registry,
		dispatch.NewMemoryExecutor(),
		recorder,
		nil,
		gate.DefaultConfig("v404"),
	)
	pinned := gate.NewController(
		intake.NewValidator(nil),
		registry,
		dispatch.NewMemoryExecutor(),
		recorder,
		nil,
		gate.DefaultConfig("v1"),
	)

	rawIntent, _ := json.Marshal(map[string]any{
		"id":            "intent-1",
		"schemaVersion": "v1",
		"producerId":    "producer-1",
		"createdAt":     "2026-03-01T10:00:00Z",
		"payload":       map[string]any{"kind": "transfer", "amount": 100.0},
	})
	rawState, _ := json.Marshal(map[string]any{
		"stateVersion": "state-1",
		"capturedAt":   "2026-03-01T09:59:00Z",
		"context":      map[string]any{"balance": 1000.0},
	})

	decision, err := unpinned.Process(context.Background(), rawIntent, rawState)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if decision.Reasons[0] != gate.ReasonPolicyUnavailable {
		t.Fatalf("reasons = %v", decision.Reasons)
	}
	if _, err := pinned.Process(context.Background(), rawIntent, rawState); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	// The operational halt is skipped; the healthy record still replays.
	checked, err := engine.CheckArchive(context.Background(), sink)
	if err != nil {
		t.Fatalf("CheckArchive failed on a healthy archive: %v", err)
	}
	if checked != 1 {
		t.Errorf("checked %d records, want 1", checked)
	}
}

func TestCheckArchive(t *testing.T) {
	registry := newRegistry(t)
	engine := replay.New(registry)

	sink := audit.NewMemorySink()
	recorder := audit.NewRecorder(sink, nil, nil)
	controller := gate.NewController(
		intake.NewValidator(nil),
		registry,
		dispatch.NewMemoryExecutor(),
		recorder,
		nil,
		gate.DefaultConfig("v1"),
	)

	submissions := []map[string]any{
		{"kind": "transfer", "amount": 100.0},
		{"kind": "transfer", "amount": 900.0},
		{"kind": "ping"},
	}
	for i, payload := range submissions {
		rawIntent, _ := json.Marshal(map[string]any{
			"id":            "intent-" + string(rune('a'+i)),
			"schemaVersion": "v1",
			"producerId":    "producer-1",
			"createdAt":     "2026-03-01T10:00:00Z",
			"payload":       payload,
		})
		rawState, _ := json.Marshal(map[string]any{
			"stateVersion": "state-1",
			"capturedAt":   "2026-03-01T09:59:00Z",
			"context":      map[string]any{},
		})
		if _, err := controller.Process(context.Background(), rawIntent, rawState); err != nil {
			t.Fatalf("Process %d failed: %v", i, err)
		}
	}

	checked, err := engine.CheckArchive(context.Background(), sink)
	if err != nil {
		t.Fatalf("CheckArchive failed: %v", err)
	}
	if checked != len(submissions) {
		t.Errorf("checked %d records, want %d", checked, len(submissions))
	}
}

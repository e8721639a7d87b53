package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"sentinel-hq/janus/pkg/gate"
	"sentinel-hq/janus/pkg/policy"
)

func terminalCycle(correlationID string) *gate.Cycle {
	now := time.Now().UTC()
	return &gate.Cycle{
		CorrelationID: correlationID,
		Step:          gate.StepStateCommitted,
		StepTimes: map[gate.Step]time.Time{
			gate.StepPresented:      now,
			gate.StepDecisionIssued: now.Add(time.Millisecond),
		},
		RawIntentHash:    "sha256:aaa",
		RawStateHash:     "sha256:bbb",
		PolicySetVersion: "v1",
		Decision: &gate.Decision{
			Value:               policy.OutcomeHalt,
			Reasons:             []string{"fault:policy-evaluation"},
			PolicySetVersion:    "v1",
			ControlLayerVersion: gate.ControlLayerVersion,
			CorrelationID:       correlationID,
			ProvenanceID:        gate.ProvenanceID("sha256:aaa", "", gate.ControlLayerVersion),
		},
		ReceivedAt: now,
	}
}

func testConfig() *Config {
	return &Config{
		MaxAppendTries: 3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestRecorderChainsRecords(t *testing.T) {
	sink := NewMemorySink()
	r := NewRecorder(sink, nil, testConfig())

	for i, id := range []string{"c1", "c2", "c3"} {
		if err := r.Record(context.Background(), terminalCycle(id)); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	records, err := sink.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	for i, record := range records {
		if record.Seq != uint64(i+1) {
			t.Errorf("record %d seq = %d", i, record.Seq)
		}
	}
	if records[0].PrevHash != GenesisHash {
		t.Errorf("first record prev = %s", records[0].PrevHash)
	}
	if err := VerifyChain(records); err != nil {
		t.Errorf("recorder-built chain fails verification: %v", err)
	}
}

func TestRecorderRetriesTransientFailures(t *testing.T) {
	sink := NewMemorySink()
	sink.FailAppends = 2
	r := NewRecorder(sink, nil, testConfig())

	if err := r.Record(context.Background(), terminalCycle("c1")); err != nil {
		t.Fatalf("append did not survive transient failures: %v", err)
	}

	records, _ := sink.LoadAll(context.Background())
	if len(records) != 1 || records[0].Seq != 1 {
		t.Fatalf("records = %+v", records)
	}
	if !r.Healthy() {
		t.Error("recorder unhealthy after successful append")
	}
}

func TestRecorderExhaustionDoesNotAdvanceChain(t *testing.T) {
	sink := NewMemorySink()
	sink.FailAppends = 100
	r := NewRecorder(sink, nil, testConfig())

	err := r.Record(context.Background(), terminalCycle("lost"))
	var ee *EmissionError
	if !errors.As(err, &ee) {
		t.Fatalf("error = %v, want *EmissionError", err)
	}
	if r.Healthy() {
		t.Error("recorder healthy after exhausted retries")
	}

	// The chain position was not consumed: the next successful append is
	// still seq 1 from genesis.
	sink.FailAppends = 0
	if err := r.Record(context.Background(), terminalCycle("c1")); err != nil {
		t.Fatalf("recovery append failed: %v", err)
	}
	records, _ := sink.LoadAll(context.Background())
	if len(records) != 1 || records[0].Seq != 1 || records[0].PrevHash != GenesisHash {
		t.Fatalf("records = %+v", records)
	}
	if !r.Healthy() {
		t.Error("recorder did not recover health")
	}
	if err := VerifyChain(records); err != nil {
		t.Errorf("chain after recovery fails verification: %v", err)
	}
}

func TestRecorderSerializesConcurrentAppends(t *testing.T) {
	sink := NewMemorySink()
	r := NewRecorder(sink, nil, testConfig())

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := r.Record(context.Background(), terminalCycle("concurrent")); err != nil {
				t.Errorf("record: %v", err)
			}
		}()
	}
	wg.Wait()

	records, _ := sink.LoadAll(context.Background())
	if len(records) != n {
		t.Fatalf("got %d records, want %d", len(records), n)
	}
	if err := VerifyChain(records); err != nil {
		t.Errorf("concurrent chain fails verification: %v", err)
	}
}

func TestRecordCarriesCycleContent(t *testing.T) {
	sink := NewMemorySink()
	r := NewRecorder(sink, nil, testConfig())

	cycle := terminalCycle("c1")
	if err := r.Record(context.Background(), cycle); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, _ := sink.LoadAll(context.Background())
	record := records[0]

	if record.CorrelationID != "c1" {
		t.Errorf("correlation id = %q", record.CorrelationID)
	}
	if record.Decision.Value != policy.OutcomeHalt {
		t.Errorf("decision = %q", record.Decision.Value)
	}
	if record.ProvenanceID != cycle.Decision.ProvenanceID {
		t.Error("provenance id not carried")
	}
	if record.ControlLayerVersion != gate.ControlLayerVersion {
		t.Errorf("control layer = %q", record.ControlLayerVersion)
	}
	if record.Timestamps.LoggedAt.IsZero() {
		t.Error("logged-at missing")
	}
	if _, ok := record.StepTimes[gate.StepDecisionIssued.String()]; !ok {
		t.Error("step times not mapped by name")
	}
}

package audit

import (
	"context"
	"path/filepath"
	"testing"
)

func TestFileSinkRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	r := NewRecorder(sink, nil, testConfig())
	for _, id := range []string{"c1", "c2", "c3"} {
		if err := r.Record(context.Background(), terminalCycle(id)); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen and verify the persisted chain.
	reopened, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if err := VerifyChain(records); err != nil {
		t.Errorf("persisted chain fails verification: %v", err)
	}
	if records[2].CorrelationID != "c3" {
		t.Errorf("order not preserved: %q", records[2].CorrelationID)
	}
}

func TestFileSinkAppendsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	sink, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r := NewRecorder(sink, nil, testConfig())
	if err := r.Record(context.Background(), terminalCycle("c1")); err != nil {
		t.Fatalf("record: %v", err)
	}
	sink.Close()

	// A second sink appends, it never truncates.
	sink2, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer sink2.Close()

	records, err := sink2.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("reopen lost records: %d", len(records))
	}
}

package canonical

import (
	"strings"
	"testing"
)

func TestMarshalSortsKeys(t *testing.T) {
	out, err := Marshal(map[string]any{"b": 1, "a": 2, "c": 3})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"a":2,"b":1,"c":3}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"amount": 500.25,
		"nested": map[string]any{"z": "last", "a": "first"},
		"items":  []any{1, 2, 3},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal failed on iteration %d: %v", i, err)
		}
		if string(again) != string(first) {
			t.Fatalf("iteration %d produced different bytes: %s vs %s", i, again, first)
		}
	}
}

func TestMarshalNoInsignificantWhitespace(t *testing.T) {
	out, err := Marshal(map[string]any{"key": []any{"a", "b"}})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.ContainsAny(string(out), " \n\t") {
		t.Errorf("canonical form contains whitespace: %q", out)
	}
}

func TestHashBytesFormat(t *testing.T) {
	h := HashBytes([]byte("hello"))
	if !strings.HasPrefix(h, HashPrefix) {
		t.Errorf("hash %q missing %q prefix", h, HashPrefix)
	}
	if len(h) != len(HashPrefix)+64 {
		t.Errorf("hash %q has wrong length %d", h, len(h))
	}
}

func TestHashJSONStructuralEquality(t *testing.T) {
	// Same structure, different construction order.
	a := map[string]any{"x": 1, "y": 2}
	b := map[string]any{"y": 2, "x": 1}

	ha, err := HashJSON(a)
	if err != nil {
		t.Fatalf("HashJSON failed: %v", err)
	}
	hb, err := HashJSON(b)
	if err != nil {
		t.Fatalf("HashJSON failed: %v", err)
	}
	if ha != hb {
		t.Errorf("structurally equal values hashed differently: %s vs %s", ha, hb)
	}

	hc, err := HashJSON(map[string]any{"x": 1, "y": 3})
	if err != nil {
		t.Fatalf("HashJSON failed: %v", err)
	}
	if hc == ha {
		t.Error("different values produced the same hash")
	}
}

func TestHashJSONUnencodable(t *testing.T) {
	if _, err := HashJSON(map[string]any{"fn": func() {}}); err == nil {
		t.Error("expected error for unencodable value")
	}
}

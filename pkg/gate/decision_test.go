package gate

import (
	"strings"
	"testing"
)

func TestProvenanceIDDeterministic(t *testing.T) {
	a := ProvenanceID("sha256:aaa", "sha256:bbb", ControlLayerVersion)
	b := ProvenanceID("sha256:aaa", "sha256:bbb", ControlLayerVersion)
	if a != b {
		t.Errorf("identical triples produced different ids: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "sha256:") {
		t.Errorf("provenance id %q has unexpected shape", a)
	}
}

func TestProvenanceIDDistinguishesTriple(t *testing.T) {
	base := ProvenanceID("sha256:aaa", "sha256:bbb", ControlLayerVersion)

	if ProvenanceID("sha256:xxx", "sha256:bbb", ControlLayerVersion) == base {
		t.Error("intent hash change did not change provenance id")
	}
	if ProvenanceID("sha256:aaa", "sha256:yyy", ControlLayerVersion) == base {
		t.Error("policy ref hash change did not change provenance id")
	}
	if ProvenanceID("sha256:aaa", "sha256:bbb", "99.0.0") == base {
		t.Error("control layer version change did not change provenance id")
	}
}

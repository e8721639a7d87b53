package gate

import (
	"time"

	"sentinel-hq/janus/pkg/canonical"
	"sentinel-hq/janus/pkg/policy"
)

// ControlLayerVersion identifies the decision logic itself. It is recorded on
// every decision and audit record so replay can pin the exact control-layer
// behavior alongside the policy-set version.
const ControlLayerVersion = "1.0.0"

// Decision is the binding outcome of one execution cycle. It is produced
// exactly once, at DecisionIssued, and is final: nothing that happens later
// in the cycle can alter any field.
type Decision struct {
	// Value is permit, suppress, or halt.
	Value policy.Outcome `json:"decisionValue"`

	// Reasons are the machine-readable codes explaining the value.
	Reasons []string `json:"reasons"`

	// PolicySetVersion is the rule-set version the decision was evaluated
	// under. "unresolved" when the cycle failed before a set was loaded.
	PolicySetVersion string `json:"policySetVersion"`

	// ControlLayerVersion is the gate logic version that issued the
	// decision.
	ControlLayerVersion string `json:"controlLayerVersion"`

	// CorrelationID ties the decision to its cycle.
	CorrelationID string `json:"correlationId"`

	// ProvenanceID deterministically names the (intent, policy, control
	// layer) triple so independent archives can be joined on it.
	ProvenanceID string `json:"provenanceId"`

	// IssuedAt is when the decision was issued.
	IssuedAt time.Time `json:"issuedAt"`
}

// PolicySetVersionUnresolved is recorded when a cycle halts before a policy
// set could be resolved.
const PolicySetVersionUnresolved = "unresolved"

// ProvenanceID derives the deterministic provenance identifier for a
// decision from the intent hash, the policy-set reference hash, and the
// control-layer version. Identical triples always produce the same id.
func ProvenanceID(intentHash, policyRefHash, controlLayerVersion string) string {
	h, err := canonical.HashJSON(map[string]string{
		"intentHash":          intentHash,
		"policyRefHash":       policyRefHash,
		"controlLayerVersion": controlLayerVersion,
	})
	if err != nil {
		// The preimage is a fixed-shape string map; canonicalization cannot
		// fail on it.
		panic(err)
	}
	return h
}

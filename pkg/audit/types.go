package audit

import (
	"time"

	"sentinel-hq/janus/pkg/dispatch"
	"sentinel-hq/janus/pkg/gate"
	"sentinel-hq/janus/pkg/intent"
)

// Timestamps is the audit view of one cycle's timing.
type Timestamps struct {
	// ReceivedAt is when the submission was presented to intake.
	ReceivedAt time.Time `json:"receivedAt"`

	// DecidedAt is when the decision was issued.
	DecidedAt time.Time `json:"decidedAt"`

	// LoggedAt is when the record was built.
	LoggedAt time.Time `json:"loggedAt"`
}

// Record is one tamper-evident audit entry, created exactly once per cycle
// after its terminal lifecycle step and never amended.
type Record struct {
	// Seq is the record's position in the stream, strictly increasing.
	Seq uint64 `json:"seq"`

	// PrevHash is the RecordHash of the preceding record (the genesis
	// constant for the first record).
	PrevHash string `json:"prevHash"`

	// RecordHash is the canonical-JSON hash of this record computed with
	// RecordHash itself empty.
	RecordHash string `json:"recordHash"`

	// ProvenanceID joins this record to its decision's input/version triple.
	ProvenanceID string `json:"provenanceId"`

	// CorrelationID identifies the cycle.
	CorrelationID string `json:"correlationId"`

	// Intent is the frozen intent content as evaluated. Nil when the
	// submission never validated; IntentHash then covers the raw bytes.
	Intent *intent.Intent `json:"intent,omitempty"`

	// State is the frozen referenced state. Nil when the submission never
	// validated.
	State *intent.ReferencedState `json:"state,omitempty"`

	// IntentHash and StateHash cover the content above (or the raw
	// presented bytes for cycles that failed validation).
	IntentHash string `json:"intentHash"`
	StateHash  string `json:"stateHash"`

	// Decision is the issued decision, verbatim.
	Decision gate.Decision `json:"decision"`

	// Effect is the observed dispatch result, present only on permit
	// cycles.
	Effect *dispatch.Effect `json:"effect,omitempty"`

	// PolicySetVersion, PolicyRefHash, and ControlLayerVersion pin the
	// versions the cycle ran under.
	PolicySetVersion    string `json:"policySetVersion"`
	PolicyRefHash       string `json:"policyRefHash,omitempty"`
	ControlLayerVersion string `json:"controlLayerVersion"`

	// StepTimes records when the cycle entered each lifecycle step, keyed
	// by step name.
	StepTimes map[string]time.Time `json:"stepTimes"`

	// Timestamps is the received/decided/logged triple.
	Timestamps Timestamps `json:"timestamps"`
}

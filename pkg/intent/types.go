package intent

import "time"

// Intent is a proposed action submitted by the reasoning process.
type Intent struct {
	// ID is the producer-assigned identifier for this intent.
	ID string `json:"id"`

	// SchemaVersion is the declared schema version of the payload.
	SchemaVersion string `json:"schemaVersion"`

	// Payload is the opaque action content. It must be JSON-serializable;
	// the gate hashes it but never interprets it beyond policy field paths.
	Payload map[string]any `json:"payload"`

	// ProducerID identifies the reasoning process that created the intent.
	ProducerID string `json:"producerId"`

	// CreatedAt is the producer-declared creation time.
	CreatedAt time.Time `json:"createdAt"`
}

// ReferencedState is the context snapshot an intent was produced against.
type ReferencedState struct {
	// StateVersion is the declared version of the context snapshot.
	// It must be declared by the producer, never inferred by the gate.
	StateVersion string `json:"stateVersion"`

	// Context is the snapshot content.
	Context map[string]any `json:"context"`

	// ContextHash, when present, is the producer-declared hash of the
	// canonical JSON of Context ("sha256:<hex>"). Intake recomputes it and
	// rejects the cycle on mismatch.
	ContextHash string `json:"contextHash,omitempty"`

	// CapturedAt is when the snapshot was taken.
	CapturedAt time.Time `json:"capturedAt"`
}

// Clone returns a deep value copy of the intent.
func (in Intent) Clone() Intent {
	out := in
	out.Payload = cloneMap(in.Payload)
	return out
}

// Clone returns a deep value copy of the referenced state.
func (rs ReferencedState) Clone() ReferencedState {
	out := rs
	out.Context = cloneMap(rs.Context)
	return out
}

// cloneMap deep-copies a JSON-shaped map (maps, slices, scalars).
func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		// Scalars (string, bool, float64, json.Number, nil) are values.
		return v
	}
}

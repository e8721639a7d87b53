package intake

import "fmt"

// Stable reason code fragments. Full codes are built by the helpers below so
// that replayed cycles reproduce them byte-for-byte.
const (
	ReasonIntentParseError    = "intent:parse-error"
	ReasonStateParseError     = "state:parse-error"
	ReasonStateMissingVersion = "state:missing-version"
	ReasonContextHashMismatch = "state:context-hash-mismatch"
	ReasonOversize            = "schema:oversize"
	reasonMissingFieldPrefix  = "schema:missing-field:"
	reasonInvalidTypePrefix   = "schema:invalid-type:"
	reasonUnknownSchemaPrefix = "schema:unknown-version:"
	reasonPayloadSchemaPrefix = "schema:payload:"
)

// ReasonMissingField builds the reason code for an absent required field.
func ReasonMissingField(field string) string {
	return reasonMissingFieldPrefix + field
}

// ReasonInvalidType builds the reason code for a field of the wrong type.
func ReasonInvalidType(field string) string {
	return reasonInvalidTypePrefix + field
}

// ReasonUnknownSchemaVersion builds the reason code for an undeclared
// payload schema version.
func ReasonUnknownSchemaVersion(version string) string {
	return reasonUnknownSchemaPrefix + version
}

// ReasonPayloadSchema builds the reason code for a payload that fails its
// declared schema.
func ReasonPayloadSchema(detail string) string {
	return reasonPayloadSchemaPrefix + detail
}

// ValidationFailure describes a malformed intent or referenced state. It is a
// permanent, deterministic failure for the cycle; the gate controller converts
// it into a halt decision carrying Reason.
type ValidationFailure struct {
	// Reason is the stable machine-readable reason code.
	Reason string

	// Detail is a human-readable elaboration. It is logged but never part of
	// the decision, so wording changes cannot break replay.
	Detail string
}

// Error implements the error interface.
func (f *ValidationFailure) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("validation failure [%s]: %s", f.Reason, f.Detail)
	}
	return fmt.Sprintf("validation failure [%s]", f.Reason)
}

func failf(reason, format string, args ...any) *ValidationFailure {
	return &ValidationFailure{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

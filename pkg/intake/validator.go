package intake

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"sentinel-hq/janus/pkg/canonical"
	"sentinel-hq/janus/pkg/intent"
)

// Config contains configuration for the intake validator.
type Config struct {
	// MaxIntentBytes is the maximum accepted size of a raw intent document.
	// Default: 256 KiB.
	MaxIntentBytes int

	// MaxStateBytes is the maximum accepted size of a raw referenced-state
	// document. Default: 1 MiB.
	MaxStateBytes int
}

// DefaultConfig returns the default validator configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxIntentBytes: 256 * 1024,
		MaxStateBytes:  1024 * 1024,
	}
}

// ValidatedInput is the frozen, validated form of one submission. All fields
// are value copies owned by the cycle; nothing aliases the submitter's data.
type ValidatedInput struct {
	// CorrelationID is the globally unique identifier assigned to the cycle.
	CorrelationID string

	// Intent is the frozen intent.
	Intent intent.Intent

	// State is the frozen referenced state.
	State intent.ReferencedState

	// IntentHash is the canonical-JSON hash of the frozen intent.
	IntentHash string

	// StateHash is the canonical-JSON hash of the frozen referenced state.
	StateHash string

	// ReceivedAt is when intake accepted the submission. Logged and audited
	// only; never an input to policy evaluation.
	ReceivedAt time.Time
}

// Validator checks raw submissions for structural conformance and freezes
// them for the rest of the cycle.
type Validator struct {
	config         *Config
	payloadSchemas map[string]*jsonschema.Schema
	logger         *slog.Logger
}

// NewValidator creates a validator with the given configuration.
func NewValidator(config *Config) *Validator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Validator{
		config:         config,
		payloadSchemas: make(map[string]*jsonschema.Schema),
		logger:         slog.Default().With("component", "intake.validator"),
	}
}

// RegisterPayloadSchema compiles a JSON Schema and associates it with a
// payload schema version. Once any schema is registered, intents declaring an
// unregistered schemaVersion are rejected; with no schemas registered the
// payload is accepted opaquely.
func (v *Validator) RegisterPayloadSchema(version string, schemaJSON []byte) error {
	compiler := jsonschema.NewCompiler()
	url := "janus://payload-schema/" + version
	if err := compiler.AddResource(url, bytes.NewReader(schemaJSON)); err != nil {
		return err
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return err
	}
	v.payloadSchemas[version] = schema
	v.logger.Info("payload schema registered", "schema_version", version)
	return nil
}

// Validate checks a raw (intent, referenced state) pair. On success it
// returns the frozen ValidatedInput with a fresh correlation id; on failure
// it returns a ValidationFailure whose reason code is a deterministic
// function of the input.
func (v *Validator) Validate(rawIntent, rawState []byte) (*ValidatedInput, *ValidationFailure) {
	if len(rawIntent) > v.config.MaxIntentBytes || len(rawState) > v.config.MaxStateBytes {
		return nil, failf(ReasonOversize,
			"intent %d bytes (max %d), state %d bytes (max %d)",
			len(rawIntent), v.config.MaxIntentBytes, len(rawState), v.config.MaxStateBytes)
	}

	in, fail := v.parseIntent(rawIntent)
	if fail != nil {
		return nil, fail
	}
	st, fail := v.parseState(rawState)
	if fail != nil {
		return nil, fail
	}

	if fail := v.checkPayloadSchema(in); fail != nil {
		return nil, fail
	}

	// Freeze: deep value copies from this point on.
	frozen := in.Clone()
	frozenState := st.Clone()

	intentHash, err := canonical.HashJSON(frozen)
	if err != nil {
		return nil, failf(ReasonIntentParseError, "intent not canonicalizable: %v", err)
	}
	stateHash, err := canonical.HashJSON(frozenState)
	if err != nil {
		return nil, failf(ReasonStateParseError, "state not canonicalizable: %v", err)
	}

	return &ValidatedInput{
		CorrelationID: uuid.New().String(),
		Intent:        frozen,
		State:         frozenState,
		IntentHash:    intentHash,
		StateHash:     stateHash,
		ReceivedAt:    time.Now().UTC(),
	}, nil
}

// parseIntent validates the intent envelope field by field so that every
// violation maps to a stable reason code.
func (v *Validator) parseIntent(raw []byte) (intent.Intent, *ValidationFailure) {
	var zero intent.Intent

	if !utf8.Valid(raw) {
		return zero, failf(ReasonIntentParseError, "intent is not valid UTF-8")
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, failf(ReasonIntentParseError, "intent is not a JSON object: %v", err)
	}

	id, fail := requireString(doc, "id")
	if fail != nil {
		return zero, fail
	}
	schemaVersion, fail := requireString(doc, "schemaVersion")
	if fail != nil {
		return zero, fail
	}
	producerID, fail := requireString(doc, "producerId")
	if fail != nil {
		return zero, fail
	}
	createdAt, fail := requireTime(doc, "createdAt")
	if fail != nil {
		return zero, fail
	}
	payload, fail := requireObject(doc, "payload")
	if fail != nil {
		return zero, fail
	}

	return intent.Intent{
		ID:            id,
		SchemaVersion: schemaVersion,
		Payload:       payload,
		ProducerID:    producerID,
		CreatedAt:     createdAt,
	}, nil
}

// parseState validates the referenced-state envelope. The state version must
// be declared by the producer; intake never infers one.
func (v *Validator) parseState(raw []byte) (intent.ReferencedState, *ValidationFailure) {
	var zero intent.ReferencedState

	if !utf8.Valid(raw) {
		return zero, failf(ReasonStateParseError, "state is not valid UTF-8")
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return zero, failf(ReasonStateParseError, "state is not a JSON object: %v", err)
	}

	stateVersion, fail := requireString(doc, "stateVersion")
	if fail != nil {
		if fail.Reason == ReasonMissingField("stateVersion") {
			return zero, failf(ReasonStateMissingVersion, "stateVersion must be declared")
		}
		return zero, fail
	}
	capturedAt, fail := requireTime(doc, "capturedAt")
	if fail != nil {
		return zero, fail
	}
	contextObj, fail := requireObject(doc, "context")
	if fail != nil {
		return zero, fail
	}

	st := intent.ReferencedState{
		StateVersion: stateVersion,
		Context:      contextObj,
		CapturedAt:   capturedAt,
	}

	// A declared context hash is verified against the recomputed canonical
	// hash; mismatch means the snapshot was altered after capture.
	if rawHash, ok := doc["contextHash"]; ok {
		var declared string
		if err := json.Unmarshal(rawHash, &declared); err != nil {
			return zero, failf(ReasonInvalidType("contextHash"), "contextHash must be a string")
		}
		if declared != "" {
			computed, err := canonical.HashJSON(st.Context)
			if err != nil {
				return zero, failf(ReasonStateParseError, "context not canonicalizable: %v", err)
			}
			if !strings.EqualFold(declared, computed) {
				return zero, failf(ReasonContextHashMismatch,
					"declared %s, computed %s", declared, computed)
			}
			st.ContextHash = computed
		}
	}

	return st, nil
}

// checkPayloadSchema validates the payload against the schema registered for
// the declared schema version, when a registry is in force.
func (v *Validator) checkPayloadSchema(in intent.Intent) *ValidationFailure {
	if len(v.payloadSchemas) == 0 {
		return nil
	}
	schema, ok := v.payloadSchemas[in.SchemaVersion]
	if !ok {
		return failf(ReasonUnknownSchemaVersion(in.SchemaVersion),
			"no payload schema registered for version %q", in.SchemaVersion)
	}
	// The schema library wants plain decoded JSON values.
	if err := schema.Validate(toPlain(in.Payload)); err != nil {
		return failf(ReasonPayloadSchema(in.SchemaVersion), "payload rejected: %v", err)
	}
	return nil
}

// toPlain normalizes a payload map into the generic JSON value shape the
// schema validator expects.
func toPlain(m map[string]any) any {
	out := make(map[string]any, len(m))
	for k, val := range m {
		out[k] = val
	}
	return out
}

func requireString(doc map[string]json.RawMessage, field string) (string, *ValidationFailure) {
	raw, ok := doc[field]
	if !ok {
		return "", failf(ReasonMissingField(field), "required field %q absent", field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", failf(ReasonInvalidType(field), "field %q must be a string", field)
	}
	if s == "" {
		return "", failf(ReasonMissingField(field), "required field %q empty", field)
	}
	return s, nil
}

func requireTime(doc map[string]json.RawMessage, field string) (time.Time, *ValidationFailure) {
	s, fail := requireString(doc, field)
	if fail != nil {
		return time.Time{}, fail
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, failf(ReasonInvalidType(field), "field %q must be RFC 3339: %v", field, err)
	}
	return t.UTC(), nil
}

func requireObject(doc map[string]json.RawMessage, field string) (map[string]any, *ValidationFailure) {
	raw, ok := doc[field]
	if !ok {
		return nil, failf(ReasonMissingField(field), "required field %q absent", field)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, failf(ReasonInvalidType(field), "field %q must be an object", field)
	}
	return m, nil
}

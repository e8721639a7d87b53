package replay

import (
	"log/slog"

	"sentinel-hq/janus/pkg/canonical"
	"sentinel-hq/janus/pkg/gate"
	"sentinel-hq/janus/pkg/intake"
	"sentinel-hq/janus/pkg/intent"
	"sentinel-hq/janus/pkg/policy"
)

// FrozenInput is the archived input of one historical cycle.
type FrozenInput struct {
	Intent intent.Intent
	State  intent.ReferencedState
}

// Decision is the reproduced outcome of a replay. It carries exactly the
// fields that must match the archived decision; correlation id and issue
// time are cycle identity, not decision content, and are excluded.
type Decision struct {
	Value               policy.Outcome
	Reasons             []string
	PolicySetVersion    string
	ControlLayerVersion string
	ProvenanceID        string
}

// Engine replays archived inputs against the policy registry.
type Engine struct {
	registry *policy.Registry
	logger   *slog.Logger
}

// New creates a replay engine over the registry.
func New(registry *policy.Registry) *Engine {
	return &Engine{
		registry: registry,
		logger:   slog.Default().With("component", "replay.engine"),
	}
}

// Replay reproduces the decision for a frozen input under the named
// versions. It applies the same resolution the gate controller applies:
// matched rule or set default on success, halt with the fault reason on an
// evaluation fault.
func (e *Engine) Replay(frozen FrozenInput, policySetVersion, controlLayerVersion string) (*Decision, error) {
	if controlLayerVersion != gate.ControlLayerVersion {
		return nil, &ControlLayerError{Requested: controlLayerVersion, Supported: gate.ControlLayerVersion}
	}

	set, err := e.registry.Get(policySetVersion)
	if err != nil {
		return nil, err
	}

	intentHash, err := canonical.HashJSON(frozen.Intent)
	if err != nil {
		return nil, err
	}
	stateHash, err := canonical.HashJSON(frozen.State)
	if err != nil {
		return nil, err
	}

	// Reconstruct the frozen input shape the evaluator saw. Correlation id
	// and receipt time are not evaluator inputs and stay zero.
	input := &intake.ValidatedInput{
		Intent:     frozen.Intent.Clone(),
		State:      frozen.State.Clone(),
		IntentHash: intentHash,
		StateHash:  stateHash,
	}

	outcome, reasons, evalErr := policy.Evaluate(set, input)
	if evalErr != nil {
		outcome = policy.OutcomeHalt
		reasons = []string{policy.ReasonEvaluationFault}
	}

	return &Decision{
		Value:               outcome,
		Reasons:             reasons,
		PolicySetVersion:    set.Version,
		ControlLayerVersion: gate.ControlLayerVersion,
		ProvenanceID:        gate.ProvenanceID(intentHash, set.RefHash, gate.ControlLayerVersion),
	}, nil
}

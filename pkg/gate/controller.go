package gate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"sentinel-hq/janus/pkg/canonical"
	"sentinel-hq/janus/pkg/dispatch"
	"sentinel-hq/janus/pkg/intake"
	"sentinel-hq/janus/pkg/policy"
	"sentinel-hq/janus/pkg/telemetry/metrics"
)

// Controller-level reason codes.
const (
	// ReasonCancelled is recorded when a cancellation request arrives
	// strictly before DecisionIssued. Requests arriving later are ignored.
	ReasonCancelled = "cycle:cancelled"

	// ReasonPolicyUnavailable is recorded when the configured policy set
	// version cannot be resolved.
	ReasonPolicyUnavailable = "fault:policy-set-unavailable"
)

// errEvalTimeout marks an evaluation that exceeded its bound.
var errEvalTimeout = errors.New("policy evaluation timed out")

// Recorder receives the completed cycle for audit emission. Implemented by
// the audit recorder; the controller is its sole caller.
type Recorder interface {
	Record(ctx context.Context, cycle *Cycle) error
}

// Config contains configuration for the gate controller.
type Config struct {
	// PolicySetVersion pins the rule-set version cycles evaluate under.
	PolicySetVersion string

	// EvalTimeout bounds one policy evaluation. Exceeding it is a
	// policy-evaluation fault resolved to halt. Default: 2 seconds.
	EvalTimeout time.Duration
}

// DefaultConfig returns the default controller configuration.
func DefaultConfig(policySetVersion string) *Config {
	return &Config{
		PolicySetVersion: policySetVersion,
		EvalTimeout:      2 * time.Second,
	}
}

// Controller drives execution cycles through the lifecycle. Cycles are
// independent: each Process call owns its cycle completely, so concurrent
// calls never observe each other's in-flight state.
type Controller struct {
	validator *intake.Validator
	registry  *policy.Registry
	executor  dispatch.Executor
	recorder  Recorder
	metrics   *metrics.Metrics
	config    *Config
	logger    *slog.Logger
}

// NewController creates a gate controller. executor may be nil when the
// deployment has no dispatch path (decisions are still issued and audited;
// permits are recorded with a failed effect).
func NewController(validator *intake.Validator, registry *policy.Registry, executor dispatch.Executor, recorder Recorder, m *metrics.Metrics, config *Config) *Controller {
	if config == nil {
		config = DefaultConfig("")
	}
	if config.EvalTimeout <= 0 {
		config.EvalTimeout = 2 * time.Second
	}
	return &Controller{
		validator: validator,
		registry:  registry,
		executor:  executor,
		recorder:  recorder,
		metrics:   m,
		config:    config,
		logger:    slog.Default().With("component", "gate.controller"),
	}
}

// Process runs one full execution cycle for a raw submission and returns the
// issued decision. Every path, including every failure path, completes
// through audit emission; the returned decision is final.
//
// Cancellation via ctx is honored only strictly before the decision is
// issued. After that point the cycle detaches from ctx and runs to
// completion.
func (c *Controller) Process(ctx context.Context, rawIntent, rawState []byte) (*Decision, error) {
	cycle := newCycle(time.Now().UTC())
	cycle.RawIntentHash = canonical.HashBytes(rawIntent)
	cycle.RawStateHash = canonical.HashBytes(rawState)
	cycle.advance(StepIntentReceived)

	if ctx.Err() != nil {
		return c.halt(ctx, cycle, ReasonCancelled), nil
	}

	// Validate and freeze. Malformed input is a permanent failure for this
	// cycle; no retries.
	input, vfail := c.validator.Validate(rawIntent, rawState)
	if vfail != nil {
		c.logger.Info("submission rejected at intake",
			"correlation_id", cycle.CorrelationID,
			"reason", vfail.Reason,
		)
		c.metrics.ValidationFailure(vfail.Reason)
		return c.halt(ctx, cycle, vfail.Reason), nil
	}
	cycle.Input = input
	cycle.CorrelationID = input.CorrelationID
	cycle.advance(StepValidated)

	// Resolve the immutable policy snapshot for this cycle. Concurrent
	// publication of newer versions cannot disturb it.
	set, err := c.registry.Get(c.config.PolicySetVersion)
	if err != nil {
		c.logger.Error("policy set unavailable",
			"correlation_id", cycle.CorrelationID,
			"version", c.config.PolicySetVersion,
			"error", err,
		)
		return c.halt(ctx, cycle, ReasonPolicyUnavailable), nil
	}
	cycle.PolicySetVersion = set.Version
	cycle.PolicyRefHash = set.RefHash

	if ctx.Err() != nil {
		return c.halt(ctx, cycle, ReasonCancelled), nil
	}

	outcome, reasons, err := c.evaluateBounded(ctx, set, input)
	if err != nil {
		switch {
		case errors.Is(err, errEvalTimeout):
			c.logger.Error("policy evaluation timed out",
				"correlation_id", cycle.CorrelationID,
				"timeout", c.config.EvalTimeout,
			)
			return c.halt(ctx, cycle, policy.ReasonEvaluationTimeout), nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return c.halt(ctx, cycle, ReasonCancelled), nil
		default:
			c.logger.Error("policy evaluation fault",
				"correlation_id", cycle.CorrelationID,
				"error", err,
			)
			return c.halt(ctx, cycle, policy.ReasonEvaluationFault), nil
		}
	}
	cycle.advance(StepEvaluated)

	if ctx.Err() != nil {
		return c.halt(ctx, cycle, ReasonCancelled), nil
	}

	decision := c.issue(cycle, outcome, reasons)

	// The decision is frozen. The remainder of the cycle is immune to
	// cancellation and always reaches audit emission.
	detached := context.WithoutCancel(ctx)

	if decision.Value == policy.OutcomePermit {
		cycle.Effect = c.dispatchOnce(detached, cycle)
	}
	cycle.advance(StepDispatchedOrSuppressed)
	cycle.advance(StepStateCommitted)

	c.emitAudit(detached, cycle)

	return decision, nil
}

// evaluateBounded runs the pure evaluator under the configured timeout.
// Evaluation itself cannot be interrupted; on timeout its eventual result is
// discarded and the cycle fails closed.
func (c *Controller) evaluateBounded(ctx context.Context, set *policy.Set, input *intake.ValidatedInput) (policy.Outcome, []string, error) {
	type result struct {
		outcome policy.Outcome
		reasons []string
		err     error
	}

	start := time.Now()
	done := make(chan result, 1)
	go func() {
		outcome, reasons, err := policy.Evaluate(set, input)
		done <- result{outcome, reasons, err}
	}()

	timer := time.NewTimer(c.config.EvalTimeout)
	defer timer.Stop()

	select {
	case res := <-done:
		c.metrics.EvalDuration(time.Since(start))
		return res.outcome, res.reasons, res.err
	case <-timer.C:
		return policy.OutcomeHalt, nil, errEvalTimeout
	case <-ctx.Done():
		return policy.OutcomeHalt, nil, ctx.Err()
	}
}

// issue freezes the decision and advances the cycle to DecisionIssued.
func (c *Controller) issue(cycle *Cycle, outcome policy.Outcome, reasons []string) *Decision {
	cycle.advance(StepDecisionIssued)

	intentHash := cycle.RawIntentHash
	if cycle.Input != nil {
		intentHash = cycle.Input.IntentHash
	}
	version := cycle.PolicySetVersion
	if version == "" {
		version = PolicySetVersionUnresolved
	}

	decision := &Decision{
		Value:               outcome,
		Reasons:             reasons,
		PolicySetVersion:    version,
		ControlLayerVersion: ControlLayerVersion,
		CorrelationID:       cycle.CorrelationID,
		ProvenanceID:        ProvenanceID(intentHash, cycle.PolicyRefHash, ControlLayerVersion),
		IssuedAt:            cycle.StepTimes[StepDecisionIssued],
	}
	cycle.Decision = decision

	c.metrics.CycleDecided(string(outcome))
	c.logger.Info("decision issued",
		"correlation_id", decision.CorrelationID,
		"decision", string(decision.Value),
		"reasons", decision.Reasons,
		"policy_set_version", decision.PolicySetVersion,
	)
	return decision
}

// halt is the failure jump: it issues a halt decision with the given reason
// and runs the remaining lifecycle steps so the failed cycle's audit trail is
// as complete as a successful one's.
func (c *Controller) halt(ctx context.Context, cycle *Cycle, reason string) *Decision {
	if cycle.CorrelationID == "" {
		// Validation never assigned one; the cycle still needs identity for
		// its audit record.
		cycle.CorrelationID = uuid.New().String()
	}

	decision := c.issue(cycle, policy.OutcomeHalt, []string{reason})

	detached := context.WithoutCancel(ctx)
	cycle.advance(StepDispatchedOrSuppressed)
	cycle.advance(StepStateCommitted)
	c.emitAudit(detached, cycle)

	return decision
}

// dispatchOnce forwards the permitted action to the executor, exactly once.
// A dispatch failure becomes a failed effect on the cycle and nothing more.
func (c *Controller) dispatchOnce(ctx context.Context, cycle *Cycle) *dispatch.Effect {
	if c.executor == nil {
		return dispatch.FailedEffect("executor-unconfigured", nil)
	}

	action := dispatch.Action{
		IntentID:      cycle.Input.Intent.ID,
		SchemaVersion: cycle.Input.Intent.SchemaVersion,
		Payload:       cycle.Input.Intent.Payload,
	}

	start := time.Now()
	effect, err := c.executor.Execute(ctx, cycle.CorrelationID, action)
	c.metrics.DispatchDuration(time.Since(start))
	if err != nil {
		code := "executor-error"
		var derr *dispatch.Error
		if errors.As(err, &derr) {
			code = derr.Code
		}
		c.logger.Warn("dispatch failed after permit; decision stands",
			"correlation_id", cycle.CorrelationID,
			"failure_code", code,
			"error", err,
		)
		return dispatch.FailedEffect(code, err)
	}
	return effect
}

// emitAudit hands the terminal cycle to the recorder. Emission failure after
// the recorder's retries is a fatal operational condition (alerting is
// external) but never revises the issued decision or its effect.
func (c *Controller) emitAudit(ctx context.Context, cycle *Cycle) {
	if err := c.recorder.Record(ctx, cycle); err != nil {
		c.logger.Error("audit emission failed; decision and effect stand",
			"correlation_id", cycle.CorrelationID,
			"error", err,
		)
	}
	cycle.advance(StepAuditEmitted)
}

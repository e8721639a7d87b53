package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"

	"sentinel-hq/janus/pkg/gate"
	"sentinel-hq/janus/pkg/telemetry/metrics"
)

// Config contains configuration for the audit recorder.
type Config struct {
	// MaxAppendTries bounds sink append attempts per record (first try
	// included). Default: 5.
	MaxAppendTries uint

	// InitialBackoff is the first retry delay. Default: 100ms.
	InitialBackoff time.Duration

	// MaxBackoff caps the retry delay. Default: 5 seconds.
	MaxBackoff time.Duration
}

// DefaultConfig returns the default recorder configuration.
func DefaultConfig() *Config {
	return &Config{
		MaxAppendTries: 5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
	}
}

// Recorder turns terminal cycles into hash-chained audit records and appends
// them to the sink.
//
// Appends are serialized through a single writer section: the sequence
// number and predecessor hash are assigned under the lock and committed only
// after the sink accepted the record, so the chain and the sink can never
// disagree. The recorder is write-only; it exposes no read or query surface.
type Recorder struct {
	sink    Sink
	config  *Config
	metrics *metrics.Metrics
	logger  *slog.Logger

	mu       sync.Mutex
	lastSeq  uint64
	lastHash string

	unhealthy atomic.Bool
}

// NewRecorder creates a recorder appending to sink.
func NewRecorder(sink Sink, m *metrics.Metrics, config *Config) *Recorder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Recorder{
		sink:     sink,
		config:   config,
		metrics:  m,
		logger:   slog.Default().With("component", "audit.recorder"),
		lastHash: GenesisHash,
	}
}

// Record builds the audit record for a terminal cycle and appends it,
// retrying sink failures with bounded exponential backoff. Exhausting the
// retries returns an EmissionError; the cycle's decision and effect are
// never revised on account of it.
func (r *Recorder) Record(ctx context.Context, cycle *gate.Cycle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	record, err := r.build(cycle)
	if err != nil {
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.config.InitialBackoff
	bo.MaxInterval = r.config.MaxBackoff

	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, r.sink.Append(ctx, record)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(r.config.MaxAppendTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			r.metrics.AuditRetry()
			r.logger.Warn("audit append failed, retrying",
				"correlation_id", record.CorrelationID,
				"seq", record.Seq,
				"retry_in", next,
				"error", err,
			)
		}),
	)
	if err != nil {
		r.unhealthy.Store(true)
		r.metrics.AuditEmitFailure()
		return &EmissionError{
			CorrelationID: record.CorrelationID,
			Attempts:      r.config.MaxAppendTries,
			Cause:         err,
		}
	}

	// Commit the chain position only after the sink accepted the record.
	r.lastSeq = record.Seq
	r.lastHash = record.RecordHash
	r.unhealthy.Store(false)
	r.metrics.AuditAppended(record.Seq)

	r.logger.Info("audit record appended",
		"correlation_id", record.CorrelationID,
		"seq", record.Seq,
		"decision", string(record.Decision.Value),
		"record_hash", record.RecordHash,
	)
	return nil
}

// Healthy reports whether the most recent append reached the sink. It goes
// false when an append exhausts its retries and recovers on the next success.
func (r *Recorder) Healthy() bool {
	return !r.unhealthy.Load()
}

// build assembles the record for a cycle at the current chain position.
// Caller holds the writer lock.
func (r *Recorder) build(cycle *gate.Cycle) (*Record, error) {
	record := &Record{
		Seq:           r.lastSeq + 1,
		PrevHash:      r.lastHash,
		CorrelationID: cycle.CorrelationID,
		IntentHash:    cycle.RawIntentHash,
		StateHash:     cycle.RawStateHash,

		PolicySetVersion:    cycle.PolicySetVersion,
		PolicyRefHash:       cycle.PolicyRefHash,
		ControlLayerVersion: gate.ControlLayerVersion,

		StepTimes: make(map[string]time.Time, len(cycle.StepTimes)),
		Timestamps: Timestamps{
			ReceivedAt: cycle.ReceivedAt,
			DecidedAt:  cycle.DecidedAt(),
			LoggedAt:   time.Now().UTC(),
		},
	}

	if cycle.Decision != nil {
		record.Decision = *cycle.Decision
		record.ProvenanceID = cycle.Decision.ProvenanceID
		record.PolicySetVersion = cycle.Decision.PolicySetVersion
	}
	if cycle.Input != nil {
		// Frozen copies already; the record owns its own values.
		frozenIntent := cycle.Input.Intent.Clone()
		frozenState := cycle.Input.State.Clone()
		record.Intent = &frozenIntent
		record.State = &frozenState
		record.IntentHash = cycle.Input.IntentHash
		record.StateHash = cycle.Input.StateHash
	}
	record.Effect = cycle.Effect

	for step, at := range cycle.StepTimes {
		record.StepTimes[step.String()] = at
	}

	hash, err := ComputeRecordHash(record)
	if err != nil {
		return nil, err
	}
	record.RecordHash = hash
	return record, nil
}

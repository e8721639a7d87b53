package replay

import (
	"context"
	"slices"

	"sentinel-hq/janus/pkg/audit"
	"sentinel-hq/janus/pkg/gate"
	"sentinel-hq/janus/pkg/policy"
)

// operationalReasons marks decision reasons produced by the live cycle's
// operating conditions rather than by its input. A halt carrying one of
// these is final and audited, but it is not a function of the frozen input,
// so re-evaluation cannot (and must not) reproduce it.
var operationalReasons = map[string]bool{
	gate.ReasonCancelled:           true,
	gate.ReasonPolicyUnavailable:   true,
	policy.ReasonEvaluationTimeout: true,
}

// Check replays an archived audit record and compares the reproduced
// decision against the recorded one. A difference is returned as a
// *MismatchError: replay infidelity is a conformance violation, not a log
// line.
func (e *Engine) Check(record *audit.Record) error {
	if record.Intent == nil || record.State == nil {
		// Cycles rejected at intake carry no frozen input; their halt is a
		// deterministic function of raw bytes the archive does not retain.
		return &NotReplayableError{CorrelationID: record.CorrelationID, Reason: "no frozen input"}
	}
	for _, reason := range record.Decision.Reasons {
		if operationalReasons[reason] {
			return &NotReplayableError{CorrelationID: record.CorrelationID, Reason: "operational halt " + reason}
		}
	}

	reproduced, err := e.Replay(
		FrozenInput{Intent: *record.Intent, State: *record.State},
		record.Decision.PolicySetVersion,
		record.Decision.ControlLayerVersion,
	)
	if err != nil {
		return err
	}

	recorded := record.Decision
	if reproduced.Value != recorded.Value ||
		!slices.Equal(reproduced.Reasons, recorded.Reasons) ||
		reproduced.ProvenanceID != recorded.ProvenanceID {
		return &MismatchError{
			CorrelationID:     record.CorrelationID,
			RecordedValue:     string(recorded.Value),
			ReproducedValue:   string(reproduced.Value),
			RecordedReasons:   recorded.Reasons,
			ReproducedReasons: reproduced.Reasons,
		}
	}
	return nil
}

// CheckArchive replays every replayable record in the archive and returns
// the first conformance violation found.
func (e *Engine) CheckArchive(ctx context.Context, archive audit.Archive) (checked int, err error) {
	records, err := archive.LoadAll(ctx)
	if err != nil {
		return 0, err
	}
	for _, record := range records {
		err := e.Check(record)
		if err != nil {
			if _, notReplayable := err.(*NotReplayableError); notReplayable {
				continue
			}
			return checked, err
		}
		checked++
	}
	return checked, nil
}

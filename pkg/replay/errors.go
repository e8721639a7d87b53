package replay

import (
	"fmt"
	"strings"
)

// ControlLayerError indicates a replay request for a control layer version
// this build does not implement. Reproducing a decision issued by a
// different version of the evaluation code is not meaningful.
type ControlLayerError struct {
	Requested string
	Supported string
}

func (e *ControlLayerError) Error() string {
	return fmt.Sprintf("control layer version %q not supported for replay (this build implements %q)", e.Requested, e.Supported)
}

// NotReplayableError indicates an audit record whose decision was not a
// function of frozen input alone: the cycle was rejected before validation
// completed, or it halted on an operating condition (cancellation, timeout,
// an unavailable policy set) that re-evaluation cannot reproduce.
type NotReplayableError struct {
	CorrelationID string
	Reason        string
}

func (e *NotReplayableError) Error() string {
	return fmt.Sprintf("record %s is not replayable: %s", e.CorrelationID, e.Reason)
}

// MismatchError reports a reproduced decision that differs from the
// archived one.
type MismatchError struct {
	CorrelationID     string
	RecordedValue     string
	ReproducedValue   string
	RecordedReasons   []string
	ReproducedReasons []string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("replay mismatch for %s: recorded %s [%s], reproduced %s [%s]",
		e.CorrelationID,
		e.RecordedValue, strings.Join(e.RecordedReasons, ","),
		e.ReproducedValue, strings.Join(e.ReproducedReasons, ","))
}

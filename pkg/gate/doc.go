// Package gate owns the execution cycle: the eight-step, forward-only
// lifecycle that turns a raw submission into a final decision and a complete
// audit record.
//
// The controller is the only component that invokes the execution dispatcher
// and the audit recorder. Every cycle, including every failure path, ends at
// audit emission; once the decision is issued it is frozen, and no later
// event (dispatch failure, cancellation, sink outage) can change it.
package gate

// Package replay reconstructs gate decisions outside the live path.
//
// Given a frozen input triple (intent, referenced state, policy-set version)
// and the control-layer version, the engine re-runs the evaluator and the
// controller's decision logic against the immutable policy registry. A
// reproduced decision that differs from the archived one is a conformance
// violation surfaced as a typed mismatch error, never silently logged away.
package replay

// Package dispatch forwards permitted actions to the external executor and
// reports the observed effect.
//
// The dispatcher is a thin, capability-scoped adapter: it never sees policy
// content or the gate decision, and nothing it returns can alter a decision
// that has already been issued. One-shot invocation per cycle is enforced by
// the gate controller, which is the dispatcher's only caller.
package dispatch

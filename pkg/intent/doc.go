// Package intent defines the submission types presented to the gate: the
// proposed action (Intent) and the context it was produced against
// (ReferencedState).
//
// Both types are treated as immutable from the moment they cross the intake
// boundary. Clone produces a deep value copy so that no component ever holds
// a mutable reference shared with the submitter or with another component.
package intent

package policy

import (
	"strings"

	"sentinel-hq/janus/pkg/intake"
)

// Reason code builders. Reason lists are part of the replayable decision, so
// these strings are stable.
const (
	reasonRulePrefix    = "rule:"
	reasonDefaultPrefix = "default:"

	// ReasonEvaluationFault is the reason carried by halt decisions issued
	// for internal evaluation faults.
	ReasonEvaluationFault = "fault:policy-evaluation"

	// ReasonEvaluationTimeout is the reason carried by halt decisions issued
	// when evaluation exceeded its bound.
	ReasonEvaluationTimeout = "fault:policy-evaluation-timeout"
)

// ReasonRule builds the reason code for a matched rule.
func ReasonRule(ruleID string) string {
	return reasonRulePrefix + ruleID
}

// ReasonDefault builds the reason code for the set's default decision.
func ReasonDefault(o Outcome) string {
	return reasonDefaultPrefix + string(o)
}

// Evaluate runs the sealed rule order of set against the validated input and
// returns the outcome with its machine-readable reasons.
//
// Evaluate is a pure function: identical (set version, input) pairs always
// produce identical results. It reads no clock, no randomness, and performs
// no I/O. The first matching rule is authoritative; with no match the set's
// explicit default applies. Any internal fault is returned as a *FaultError
// and must be resolved by the caller to a halt, never a permit.
func Evaluate(set *Set, in *intake.ValidatedInput) (Outcome, []string, error) {
	for i := range set.Rules {
		rule := &set.Rules[i]
		matched, err := ruleMatches(rule, in)
		if err != nil {
			return OutcomeHalt, nil, err
		}
		if matched {
			return rule.Decision, []string{ReasonRule(rule.ID)}, nil
		}
	}
	return set.Default, []string{ReasonDefault(set.Default)}, nil
}

// ruleMatches reports whether every condition of the rule holds. A condition
// on a field absent from the input simply does not match; only malformed
// rules or incomparable operands fault.
func ruleMatches(rule *Rule, in *intake.ValidatedInput) (bool, error) {
	for i := range rule.When {
		cond := &rule.When[i]
		actual, ok := resolveField(cond.Field, in)
		if !ok {
			return false, nil
		}
		matched, err := applyOperator(cond.Operator, actual, cond.Value)
		if err != nil {
			return false, &FaultError{
				RuleID:  rule.ID,
				Field:   cond.Field,
				Message: "condition fault",
				Cause:   err,
			}
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// resolveField resolves a dotted path against the frozen input. Recognized
// roots: "intent" (envelope fields), "payload" (into the intent payload),
// "state" (into the context snapshot), and the bare "stateVersion".
func resolveField(path string, in *intake.ValidatedInput) (any, bool) {
	if path == "stateVersion" {
		return in.State.StateVersion, true
	}

	root, rest, _ := strings.Cut(path, ".")
	switch root {
	case "intent":
		switch rest {
		case "id":
			return in.Intent.ID, true
		case "schemaVersion":
			return in.Intent.SchemaVersion, true
		case "producerId":
			return in.Intent.ProducerID, true
		}
		return nil, false
	case "payload":
		return walkPath(in.Intent.Payload, rest)
	case "state":
		return walkPath(in.State.Context, rest)
	}
	return nil, false
}

// walkPath descends a JSON-shaped map along a dotted path.
func walkPath(m map[string]any, path string) (any, bool) {
	if path == "" {
		return nil, false
	}
	var current any = m
	for _, seg := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

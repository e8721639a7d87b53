package policy

import "time"

// Outcome is a gate decision value.
type Outcome string

const (
	// OutcomePermit allows the action to be dispatched.
	OutcomePermit Outcome = "permit"

	// OutcomeSuppress silently drops the action. The upstream producer
	// receives no error signal for a suppression.
	OutcomeSuppress Outcome = "suppress"

	// OutcomeHalt blocks the action and signals the producer.
	OutcomeHalt Outcome = "halt"
)

// Valid reports whether o is one of the three decision values.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePermit, OutcomeSuppress, OutcomeHalt:
		return true
	}
	return false
}

// Operator is a condition comparison operator.
type Operator string

const (
	OperatorEqual        Operator = "eq"
	OperatorNotEqual     Operator = "ne"
	OperatorGreaterThan  Operator = "gt"
	OperatorGreaterEqual Operator = "gte"
	OperatorLessThan     Operator = "lt"
	OperatorLessEqual    Operator = "lte"
	OperatorIn           Operator = "in"
	OperatorContains     Operator = "contains"
	OperatorMatches      Operator = "matches"
)

// Condition is a single declarative predicate over the validated input.
// Field is a dotted path rooted at "intent", "payload", or "state".
type Condition struct {
	Field    string   `yaml:"field" json:"field"`
	Operator Operator `yaml:"operator" json:"operator"`
	Value    any      `yaml:"value" json:"value"`
}

// Rule is one entry in a policy set. The first rule whose conditions all
// match determines the cycle's outcome.
type Rule struct {
	// ID is unique within the set and is the tie-break for rules sharing a
	// priority (ascending byte order).
	ID string `yaml:"id" json:"id"`

	// Priority orders evaluation; higher evaluates first.
	Priority int `yaml:"priority" json:"priority"`

	// Description is informational only.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// Decision is the outcome this rule issues when it matches.
	Decision Outcome `yaml:"decision" json:"decision"`

	// When lists the conditions; all must match (logical AND). A rule with
	// no conditions matches every input.
	When []Condition `yaml:"when" json:"when"`
}

// Set is an immutable, versioned policy set. Construct only through the
// loader, which seals rule order and computes RefHash; never mutate a Set
// after publication; it is shared read-only across concurrent cycles.
type Set struct {
	// SetID identifies the policy stream this set belongs to.
	SetID string `yaml:"setId" json:"setId"`

	// Version identifies this snapshot of the stream.
	Version string `yaml:"version" json:"version"`

	// Default is the explicit decision when no rule matches. It is part of
	// the versioned content, not a hidden constant, so replay stays faithful.
	Default Outcome `yaml:"default" json:"default"`

	// EffectiveFrom marks when the authoring process activated this version.
	EffectiveFrom time.Time `yaml:"effectiveFrom,omitempty" json:"effectiveFrom,omitempty"`

	// Rules in sealed evaluation order.
	Rules []Rule `yaml:"rules" json:"rules"`

	// RefHash is the canonical-JSON hash of the sealed set content. It is
	// excluded from its own preimage.
	RefHash string `yaml:"-" json:"-"`
}

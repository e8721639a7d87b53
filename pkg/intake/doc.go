// Package intake accepts raw (intent, referenced state) submissions, checks
// them against the declared schemas, and freezes them into an immutable
// ValidatedInput for the rest of the cycle.
//
// Validation is deterministic: the same malformed submission always fails
// with the same reason code, and no retry happens at this layer. On success
// the validator assigns the cycle's correlation id and produces deep value
// copies of the payload and context, so later mutation of the caller's data
// cannot influence evaluation or the audit record.
package intake

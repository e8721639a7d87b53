// Package policy implements versioned, immutable rule sets and their
// deterministic evaluation.
//
// A Set is pure data: an ordered table of declarative rules plus an explicit
// default decision. Sets are parsed from YAML, sealed (rules sorted by
// priority descending, rule id ascending) and hashed at load time, and never
// mutated afterwards; a new version is a new Set. Evaluation is a pure
// function of (set, validated input) with no clock, randomness, or I/O, so a
// decision can be reproduced bit-for-bit from archived inputs.
package policy

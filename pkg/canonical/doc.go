// Package canonical provides deterministic JSON canonicalization and content
// hashing for the gate core.
//
// Every hash in the system (intent hashes, referenced-state hashes, policy-set
// reference hashes, audit record hashes) is computed over RFC 8785 canonical
// JSON and rendered as a "sha256:<hex>" string, so that independently built
// archives agree byte-for-byte on the same logical content.
package canonical

// Janus is a deterministic gate between intent producers and action
// executors.
//
// Every submitted intent runs through a fixed execution cycle: intake
// validation, versioned policy evaluation, a single binding decision
// (permit, suppress, or halt), at most one dispatch, and a hash-chained
// audit record. Decisions are final once issued and reproducible offline
// from the audit archive.
//
// Usage:
//
//	# Start the gate with default configuration
//	janus run
//
//	# Start with a custom configuration file
//	janus run --config /path/to/config.yaml
//
//	# Validate policy-set files
//	janus lint --dir policies/
//
//	# Verify the audit chain
//	janus verify --config config.yaml
//
//	# Replay archived decisions and check fidelity
//	janus replay --config config.yaml
//
//	# Show version information
//	janus version
package main

func main() {
	Execute()
}

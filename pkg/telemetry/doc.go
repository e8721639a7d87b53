// Package telemetry groups the observability subpackages: structured
// logging setup and Prometheus metrics.
package telemetry

// Package server provides the HTTP surface over the gate: intent
// submission, health and readiness probes, and the Prometheus metrics
// endpoint.
package server

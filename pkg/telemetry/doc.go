// Package telemetry wires structured logging, Prometheus metrics and
// OpenTelemetry tracing for the baram CLI. Metrics satisfies the workspace
// Metrics interface so the orchestration core stays decoupled from the
// collector.
package telemetry

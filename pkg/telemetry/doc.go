// Package telemetry groups the observability packages of the underwriting
// service.
//
//   - logging: structured slog logging with PII redaction
//   - metrics: Prometheus metrics for evaluations, catalog reloads, audit
//     writes and HTTP requests
//   - tracing: OpenTelemetry spans exported over OTLP
//   - health: liveness and readiness probes
package telemetry

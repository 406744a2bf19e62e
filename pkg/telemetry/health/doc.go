// Package health provides the liveness and readiness probes of the
// underwriting service.
//
// # Endpoints
//
//   - /health: liveness, 200 while the process is running
//   - /ready: readiness, 200 once every required check passes, 503 otherwise
//   - /version: build information
//
// # Usage
//
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//	checker.RegisterCheck("catalog", health.CatalogCheck(manager))
//	checker.RegisterCheck("documents", health.DocumentStoreCheck(store))
//	checker.RegisterOptionalCheck("audit", health.AuditCheck(auditStorage))
//
//	mux.HandleFunc("GET /health", checker.LivenessHandler())
//	mux.HandleFunc("GET /ready", checker.ReadinessHandler())
//
// The service is not ready until the first catalog snapshot has loaded. A
// failing audit backend is reported but does not block evaluations.
package health

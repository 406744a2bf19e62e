// Package metrics provides Prometheus metrics for the underwriting service.
//
// # Metrics Categories
//
//   - Evaluation: evaluations, evaluation duration, rules per evaluation,
//     rule outcomes by validator and status, rule duration
//   - Catalog: reloads by result, active version, last reload time
//   - Audit: audit writes by result and duration
//   - HTTP: requests by method, route and code, request duration
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//
//	eng, _ := engine.New(resolver, validators, engine.WithObserver(collector))
//	manager.SetObserver(collector)
//	recorder.SetObserver(collector)
//
//	mux.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// Labels are bounded: validators come from the registry, statuses from the
// five result statuses, and routes from the registered patterns.
package metrics

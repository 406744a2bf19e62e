package metrics

import (
	"time"

	"mercator-hq/underwriter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector owns the service's Prometheus registry. It implements
// engine.Observer, catalog.ReloadObserver and audit.WriteObserver so each
// component reports through it without importing Prometheus.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	evaluationMetrics *EvaluationMetrics
	catalogMetrics    *CatalogMetrics
	auditMetrics      *AuditMetrics
	requestMetrics    *RequestMetrics
}

// NewCollector creates a collector. If registry is nil a fresh registry is
// created with the Go runtime and process collectors.
//
// Example:
//
//	cfg := &config.MetricsConfig{Enabled: true, Namespace: "underwriter"}
//	collector := metrics.NewCollector(cfg, nil)
//	eng, _ := engine.New(resolver, registry, engine.WithObserver(collector))
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if len(cfg.EvaluationDurationBuckets) == 0 {
		cfg.EvaluationDurationBuckets = append([]float64(nil), config.DefaultEvaluationDurationBuckets...)
	}

	return &Collector{
		config:            cfg,
		registry:          registry,
		evaluationMetrics: NewEvaluationMetrics(cfg, registry),
		catalogMetrics:    NewCatalogMetrics(cfg, registry),
		auditMetrics:      NewAuditMetrics(cfg, registry),
		requestMetrics:    NewRequestMetrics(cfg, registry),
	}
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveRule implements engine.Observer.
func (c *Collector) ObserveRule(validator, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.evaluationMetrics.RecordRule(validator, status, duration)
}

// ObserveEvaluation implements engine.Observer.
func (c *Collector) ObserveEvaluation(rules int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.evaluationMetrics.RecordEvaluation(rules, duration)
}

// ObserveReload implements catalog.ReloadObserver.
func (c *Collector) ObserveReload(success bool, version string) {
	if !c.config.Enabled {
		return
	}
	c.catalogMetrics.RecordReload(success, version)
}

// ObserveAuditWrite implements audit.WriteObserver.
func (c *Collector) ObserveAuditWrite(success bool, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.auditMetrics.RecordWrite(success, duration)
}

// RecordHTTPRequest records a served HTTP request.
func (c *Collector) RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.requestMetrics.RecordRequest(method, route, code, duration)
}

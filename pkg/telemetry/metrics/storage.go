package metrics

import (
	"time"

	"mercator-hq/underwriter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics tracks catalog reloads.
//
// Metrics:
//   - underwriter_catalog_reloads_total: reloads by result
//   - underwriter_catalog_info: 1 for the active catalog version
//   - underwriter_catalog_last_reload_timestamp_seconds: last successful reload
type CatalogMetrics struct {
	reloadsTotal *prometheus.CounterVec
	info         *prometheus.GaugeVec
	lastReload   prometheus.Gauge
}

// NewCatalogMetrics creates and registers catalog metrics.
func NewCatalogMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *CatalogMetrics {
	cm := &CatalogMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "catalog_reloads_total",
				Help:      "Catalog loads by result",
			},
			[]string{"result"},
		),
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "catalog_info",
				Help:      "Active catalog version (value is always 1)",
			},
			[]string{"version"},
		),
		lastReload: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Name:      "catalog_last_reload_timestamp_seconds",
				Help:      "Unix time of the last successful catalog load",
			},
		),
	}

	registry.MustRegister(cm.reloadsTotal, cm.info, cm.lastReload)
	return cm
}

// RecordReload records a load attempt.
func (cm *CatalogMetrics) RecordReload(success bool, version string) {
	if !success {
		cm.reloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	cm.reloadsTotal.WithLabelValues("success").Inc()
	cm.info.Reset()
	cm.info.WithLabelValues(version).Set(1)
	cm.lastReload.SetToCurrentTime()
}

// AuditMetrics tracks audit trail writes.
//
// Metrics:
//   - underwriter_audit_writes_total: writes by result
//   - underwriter_audit_write_duration_seconds: storage write duration
type AuditMetrics struct {
	writesTotal   *prometheus.CounterVec
	writeDuration prometheus.Histogram
}

// NewAuditMetrics creates and registers audit metrics.
func NewAuditMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *AuditMetrics {
	am := &AuditMetrics{
		writesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "audit_writes_total",
				Help:      "Audit record writes by result",
			},
			[]string{"result"},
		),
		writeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "audit_write_duration_seconds",
				Help:      "Duration of audit storage writes in seconds",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	registry.MustRegister(am.writesTotal, am.writeDuration)
	return am
}

// RecordWrite records one storage write.
func (am *AuditMetrics) RecordWrite(success bool, duration time.Duration) {
	result := "success"
	if !success {
		result = "failure"
	}
	am.writesTotal.WithLabelValues(result).Inc()
	am.writeDuration.Observe(duration.Seconds())
}

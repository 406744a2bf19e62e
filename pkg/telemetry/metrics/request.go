package metrics

import (
	"strconv"
	"time"

	"mercator-hq/underwriter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RequestMetrics tracks HTTP API requests.
//
// Metrics:
//   - underwriter_http_requests_total: requests by method, route and status code
//   - underwriter_http_request_duration_seconds: request duration by method and route
type RequestMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewRequestMetrics creates and registers request metrics with the provided registry.
func NewRequestMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RequestMetrics {
	rm := &RequestMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "code"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(rm.requestsTotal, rm.requestDuration)
	return rm
}

// RecordRequest records a completed request. route is the registered
// pattern, never the raw path, to bound cardinality.
func (rm *RequestMetrics) RecordRequest(method, route string, code int, duration time.Duration) {
	rm.requestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	rm.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

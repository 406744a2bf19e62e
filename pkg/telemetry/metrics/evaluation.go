package metrics

import (
	"time"

	"mercator-hq/underwriter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// EvaluationMetrics tracks rule evaluation.
//
// Metrics:
//   - underwriter_evaluations_total: Evaluate calls
//   - underwriter_evaluation_duration_seconds: whole-evaluation duration
//   - underwriter_evaluation_rules: rules per evaluation
//   - underwriter_rule_outcomes_total: rule results by validator and status
//   - underwriter_rule_duration_seconds: per-rule duration by validator
type EvaluationMetrics struct {
	evaluationsTotal   prometheus.Counter
	evaluationDuration prometheus.Histogram
	evaluationRules    prometheus.Histogram

	ruleOutcomes *prometheus.CounterVec
	ruleDuration *prometheus.HistogramVec
}

// NewEvaluationMetrics creates and registers evaluation metrics.
func NewEvaluationMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *EvaluationMetrics {
	em := &EvaluationMetrics{
		evaluationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluations_total",
				Help:      "Total number of rule catalog evaluations",
			},
		),

		evaluationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of a full catalog evaluation in seconds",
				Buckets:   cfg.EvaluationDurationBuckets,
			},
		),

		evaluationRules: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "evaluation_rules",
				Help:      "Number of rules per evaluation",
				Buckets:   prometheus.LinearBuckets(10, 10, 10),
			},
		),

		ruleOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_outcomes_total",
				Help:      "Rule results by validator and status",
			},
			[]string{"validator", "status"},
		),

		ruleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Name:      "rule_duration_seconds",
				Help:      "Duration of a single rule evaluation in seconds",
				// Rules should be fast (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"validator"},
		),
	}

	registry.MustRegister(
		em.evaluationsTotal,
		em.evaluationDuration,
		em.evaluationRules,
		em.ruleOutcomes,
		em.ruleDuration,
	)

	return em
}

// RecordRule records one rule result.
func (em *EvaluationMetrics) RecordRule(validator, status string, duration time.Duration) {
	em.ruleOutcomes.WithLabelValues(validator, status).Inc()
	em.ruleDuration.WithLabelValues(validator).Observe(duration.Seconds())
}

// RecordEvaluation records one Evaluate call.
func (em *EvaluationMetrics) RecordEvaluation(rules int, duration time.Duration) {
	em.evaluationsTotal.Inc()
	em.evaluationDuration.Observe(duration.Seconds())
	em.evaluationRules.Observe(float64(rules))
}

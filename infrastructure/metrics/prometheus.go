// Package metrics provides the Prometheus implementation of
// ports.MetricsCollector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-evalstats/internal/ports"
)

// PrometheusMetrics implements the MetricsCollector interface using
// Prometheus. Metric names known to the results core are routed to
// dedicated series; everything else lands in generic vectors labelled by
// metric name.
type PrometheusMetrics struct {
	cacheOperations  *prometheus.CounterVec
	averageGrades    prometheus.Histogram
	warmed           prometheus.Gauge
	executionLatency *prometheus.HistogramVec
	operationCounter *prometheus.CounterVec
	systemGauges     *prometheus.GaugeVec
	values           *prometheus.HistogramVec
}

// NewPrometheusMetrics creates a PrometheusMetrics instance and registers
// its series with reg. A nil reg uses the default registerer.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		cacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: ports.MetricCacheOperations,
				Help: "Results cache operations by outcome.",
			},
			[]string{"operation", "status"},
		),
		averageGrades: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    ports.MetricAverageGrade,
				Help:    "Average grades of computed evaluation distributions.",
				Buckets: prometheus.LinearBuckets(1, 0.5, 9),
			},
		),
		warmed: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: ports.MetricWarmedEvaluations,
				Help: "Evaluations cached by the most recent warm-up.",
			},
		),

		executionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "results_operation_duration_seconds",
				Help:    "Execution time of result computations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "state"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "results_events_total",
				Help: "Events recorded under names without a dedicated series.",
			},
			[]string{"metric", "status"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "results_system_state",
				Help: "Current values of gauges without a dedicated series.",
			},
			[]string{"metric"},
		),
		values: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "results_observed_values",
				Help:    "Values observed under names without a dedicated histogram.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordLatency(
	operation string,
	duration time.Duration,
	labels map[string]string,
) {
	pm.executionLatency.WithLabelValues(operation, labelOr(labels, "state", "unknown")).
		Observe(duration.Seconds())
}

// RecordCounter implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordCounter(
	metric string, value float64, labels map[string]string,
) {
	switch metric {
	case ports.MetricCacheOperations:
		pm.cacheOperations.WithLabelValues(
			labelOr(labels, "operation", "unknown"),
			labelOr(labels, "status", "unknown"),
		).Add(value)
	default:
		pm.operationCounter.WithLabelValues(metric, labelOr(labels, "status", "success")).Add(value)
	}
}

// RecordGauge implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordGauge(
	metric string, value float64, _ map[string]string,
) {
	switch metric {
	case ports.MetricWarmedEvaluations:
		pm.warmed.Set(value)
	default:
		pm.systemGauges.WithLabelValues(metric).Set(value)
	}
}

// RecordHistogram implements the MetricsCollector interface.
func (pm *PrometheusMetrics) RecordHistogram(
	metric string, value float64, _ map[string]string,
) {
	switch metric {
	case ports.MetricAverageGrade:
		pm.averageGrades.Observe(value)
	default:
		pm.values.WithLabelValues(metric).Observe(value)
	}
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v := labels[key]; v != "" {
		return v
	}
	return fallback
}

// Compile-time verification that PrometheusMetrics implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusMetrics)(nil)

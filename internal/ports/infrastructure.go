package ports

import (
	"context"
	"time"
)

// CacheStore defines the key-value store holding computed evaluation
// results. Values are opaque blobs; encoding is the caller's concern.
// Implementations could use Redis, Memcached, or in-memory storage.
type CacheStore interface {
	// Get retrieves a cached value by key.
	// Returns the value and true if found, or nil and false if not found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value in the cache with an expiration time.
	// A zero duration means the item doesn't expire.
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error

	// Delete removes a value from the cache.
	// Returns nil if the key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Clear removes all values from the cache.
	// This is useful for cache invalidation scenarios.
	Clear(ctx context.Context) error
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus, OpenTelemetry, or custom monitoring solutions.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// This is useful for tracking events like cache hits/misses, errors, etc.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as a computed
	// average grade.
	RecordHistogram(metric string, value float64, labels map[string]string)
}

// Metric names recorded by the results core. Collectors may route them to
// dedicated series; unknown names fall back to generic ones.
const (
	// MetricCacheOperations counts results cache reads and writes. Labels:
	// "operation" (get, set, delete) and "status" (hit, miss, ok, error).
	MetricCacheOperations = "results_cache_operations_total"

	// MetricAverageGrade observes computed evaluation average grades.
	MetricAverageGrade = "evaluation_average_grade"

	// MetricWarmedEvaluations is the number of evaluations cached by the
	// most recent cache warm-up.
	MetricWarmedEvaluations = "results_cache_warmed_evaluations"

	// OperationComputeResults and OperationAverageDistribution name the
	// latencies recorded by the results core.
	OperationComputeResults      = "compute_results"
	OperationAverageDistribution = "average_distribution"
)

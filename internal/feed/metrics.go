package feed

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricFeedRequestsTotal      = "feed_requests_total"
	MetricFeedCacheInvalidations = "feed_cache_invalidations_total"
	MetricFeedCacheErrors        = "feed_cache_errors_total"
)

// Metrics contains Prometheus metrics for the feed service.
// All operations are thread-safe.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	cacheInvalidations prometheus.Counter
	cacheErrors        *prometheus.CounterVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricFeedRequestsTotal,
			Help: "Total number of feed requests by cache outcome",
		}, []string{"outcome"}),
		cacheInvalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricFeedCacheInvalidations,
			Help: "Total number of feed cache invalidation sweeps",
		}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricFeedCacheErrors,
			Help: "Total number of feed cache errors by operation",
		}, []string{"operation"}),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// IncRequest increments the request counter for a cache outcome.
func (m *Metrics) IncRequest(outcome Outcome) {
	m.requestsTotal.WithLabelValues(string(outcome)).Inc()
}

// IncInvalidations increments the invalidation sweep counter.
func (m *Metrics) IncInvalidations() {
	m.cacheInvalidations.Inc()
}

// IncCacheError increments the cache error counter for an operation.
func (m *Metrics) IncCacheError(operation string) {
	m.cacheErrors.WithLabelValues(operation).Inc()
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.requestsTotal,
		m.cacheInvalidations,
		m.cacheErrors,
	}
}

// Package metrics provides the Prometheus implementation of the cache
// metrics sink. Registering it is optional; the cache package defaults to a
// nop sink.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-clinic/cache"
)

// Interface assertion to ensure CacheMetrics implements cache.Metrics
var _ cache.Metrics = (*CacheMetrics)(nil)

// CacheMetrics counts cache outcomes per repository prefix.
type CacheMetrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	faults        *prometheus.CounterVec
	invalidations *prometheus.CounterVec
}

// NewCacheMetrics creates and registers the cache counters. Pass
// prometheus.DefaultRegisterer for the process-wide registry.
func NewCacheMetrics(reg prometheus.Registerer) (*CacheMetrics, error) {
	m := &CacheMetrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_cache_hits_total",
			Help: "Cache reads answered from the backend.",
		}, []string{"prefix"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_cache_misses_total",
			Help: "Cache reads that found no entry.",
		}, []string{"prefix"}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_cache_faults_total",
			Help: "Cache operations that failed and degraded to a miss or no-op.",
		}, []string{"prefix"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clinic_cache_invalidated_keys_total",
			Help: "Cache keys removed by write invalidation.",
		}, []string{"prefix"}),
	}

	for _, c := range []*prometheus.CounterVec{m.hits, m.misses, m.faults, m.invalidations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// CacheHit implements cache.Metrics.
func (m *CacheMetrics) CacheHit(prefix string) { m.hits.WithLabelValues(prefix).Inc() }

// CacheMiss implements cache.Metrics.
func (m *CacheMetrics) CacheMiss(prefix string) { m.misses.WithLabelValues(prefix).Inc() }

// CacheFault implements cache.Metrics.
func (m *CacheMetrics) CacheFault(prefix string) { m.faults.WithLabelValues(prefix).Inc() }

// Invalidation implements cache.Metrics.
func (m *CacheMetrics) Invalidation(prefix string, keys int) {
	m.invalidations.WithLabelValues(prefix).Add(float64(keys))
}

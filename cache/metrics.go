package cache

// Metrics receives cache outcome counters. Implementations must be safe for
// concurrent use. The prefix label identifies the repository domain
// (e.g. "user").
type Metrics interface {
	CacheHit(prefix string)
	CacheMiss(prefix string)
	CacheFault(prefix string)
	Invalidation(prefix string, keys int)
}

// NopMetrics discards every observation. It is the default sink when no
// metrics implementation is configured.
func NopMetrics() Metrics { return nopMetrics{} }

type nopMetrics struct{}

func (nopMetrics) CacheHit(string)         {}
func (nopMetrics) CacheMiss(string)        {}
func (nopMetrics) CacheFault(string)       {}
func (nopMetrics) Invalidation(string, int) {}

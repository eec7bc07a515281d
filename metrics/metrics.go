/* metrics.go
 * Prometheus counters for the aggregation pipeline. Registered through promauto so importing
 * packages can increment them without wiring
 */

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "External fetches by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "TTL cache lookups that returned fresh data",
		},
		[]string{"class"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "TTL cache lookups that missed or were stale",
		},
		[]string{"class"},
	)

	RateLimitWaits = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rate_limit_wait_seconds",
			Help:    "Time callers spent queued behind the per-host scrape gate",
			Buckets: prometheus.DefBuckets,
		},
	)

	RemindersScheduled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_scheduled_total",
			Help: "Local match reminders scheduled",
		},
	)
)

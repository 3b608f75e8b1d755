package ledger

import "github.com/prometheus/client_golang/prometheus"

var (
	commitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "axiom_vault",
		Subsystem: "ledger",
		Name:      "commit_duration_second",
		Help:      "The total latency of flushing dirty state into db",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	})

	versionMetric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "axiom_vault",
		Subsystem: "ledger",
		Name:      "version",
		Help:      "the latest committed ledger version",
	})

	accountCacheHitCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_vault",
		Subsystem: "ledger",
		Name:      "account_cache_hit_total",
		Help:      "The total number of account cache hit",
	})

	accountCacheMissCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "axiom_vault",
		Subsystem: "ledger",
		Name:      "account_cache_miss_total",
		Help:      "The total number of account cache miss",
	})
)

func init() {
	prometheus.MustRegister(commitDuration)
	prometheus.MustRegister(versionMetric)
	prometheus.MustRegister(accountCacheHitCounter)
	prometheus.MustRegister(accountCacheMissCounter)
}

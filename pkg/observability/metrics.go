package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics must be global for registration
var (
	// CacheLookups counts event cache lookups
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orb_cache_lookups_total",
			Help: "Total number of event cache lookups",
		},
		[]string{"observer", "kind", "result"}, // result: hit, miss
	)

	// CacheResets counts full discards of a cache entry
	CacheResets = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orb_cache_resets_total",
			Help: "Total number of cache entries discarded",
		},
		[]string{"observer", "kind"},
	)

	// CacheEntrySize tracks the number of timestamps held per entry
	CacheEntrySize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "orb_cache_entry_size",
			Help: "Number of event timestamps held by a cache entry",
		},
		[]string{"observer", "key"},
	)

	// OracleCalls counts ephemeris searches
	OracleCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orb_oracle_calls_total",
			Help: "Total number of ephemeris calls",
		},
		[]string{"observer", "method", "status"}, // status: success, error
	)

	// OracleCallDuration measures ephemeris call latency
	OracleCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orb_oracle_call_duration_seconds",
			Help:    "Ephemeris call duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
		},
		[]string{"method"},
	)

	// QueriesTotal counts facade queries
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orb_queries_total",
			Help: "Total number of event queries",
		},
		[]string{"observer", "operation", "status"}, // status: success, not_found, invalid, error
	)

	// QueryDuration measures facade query latency
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "orb_query_duration_seconds",
			Help:    "Event query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12), // 10µs to ~42s
		},
		[]string{"operation"},
	)

	// WarmupRuns counts scheduled cache warm-ups
	WarmupRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orb_warmup_runs_total",
			Help: "Total number of scheduled cache warm-ups",
		},
		[]string{"observer", "status"},
	)

	// ErrorsTotal counts total number of errors
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orb_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(observer, kind, result string) {
	CacheLookups.WithLabelValues(observer, kind, result).Inc()
}

// RecordCacheReset records an entry being discarded
func RecordCacheReset(observer, kind string) {
	CacheResets.WithLabelValues(observer, kind).Inc()
}

// SetCacheEntrySize records the current size of an entry
func SetCacheEntrySize(observer, key string, size int) {
	CacheEntrySize.WithLabelValues(observer, key).Set(float64(size))
}

// RecordOracleCall records an ephemeris call
func RecordOracleCall(observer, method, status string, duration float64) {
	OracleCalls.WithLabelValues(observer, method, status).Inc()
	OracleCallDuration.WithLabelValues(method).Observe(duration)
}

// RecordQuery records a facade query
func RecordQuery(observer, operation, status string, duration float64) {
	QueriesTotal.WithLabelValues(observer, operation, status).Inc()
	QueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordWarmup records a scheduled warm-up run
func RecordWarmup(observer, status string) {
	WarmupRuns.WithLabelValues(observer, status).Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

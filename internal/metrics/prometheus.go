package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the standings sync service

var (
	// Provider metrics
	ProviderAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_provider_attempts_total",
			Help: "Total number of standings provider attempts",
		},
		[]string{"provider", "status"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pool_fetch_duration_seconds",
			Help:    "Duration of full standings fetches (all providers) in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 15, 30, 60},
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_sync_operations_total",
			Help: "Total number of standings sync operations",
		},
		[]string{"trigger", "status"},
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pool_sync_duration_seconds",
			Help:    "Duration of standings sync operations in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 30, 60},
		},
	)

	StandingsRowsUpserted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_standings_rows_upserted_total",
			Help: "Total number of standings rows written",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_last_successful_sync_timestamp",
			Help: "Timestamp of last successful standings sync",
		},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pool_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)
)

// RecordProviderAttempt records a single provider attempt
func RecordProviderAttempt(provider, status string) {
	ProviderAttemptsTotal.WithLabelValues(provider, status).Inc()
}

// RecordSync records a sync operation
func RecordSync(trigger, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(trigger, status).Inc()
	SyncDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordDBQuery records a database query
func RecordDBQuery(operation, status string) {
	DBQueriesTotal.WithLabelValues(operation, status).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BarsUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_bars_upserted_total",
		Help: "Total number of daily price bars upserted",
	}, []string{"ticker"})

	BarsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "price_bars_rejected_total",
		Help: "Total number of daily price bars rejected by validation",
	}, []string{"ticker", "reason"})

	LoadRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "load_runs_total",
		Help: "Total number of load runs",
	}, []string{"status"})

	LoadTickerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "load_ticker_duration_seconds",
		Help:    "Duration of fetch and upsert per ticker",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	QuoteRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_requests_total",
		Help: "Total number of requests to the quote source",
	}, []string{"status"})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total number of cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total number of cache misses",
	})

	DatabaseQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "database_queries_total",
		Help: "Total number of database queries",
	}, []string{"query_type", "status"})

	DatabaseQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "database_query_duration_seconds",
		Help:    "Duration of database queries",
		Buckets: prometheus.DefBuckets,
	}, []string{"query_type"})

	MetricsRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "segment_metrics_requests_total",
		Help: "Total number of segment metrics computations",
	}, []string{"cached"})

	Classifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "segment_classifications_total",
		Help: "Total number of opportunity classifications",
	}, []string{"recommendation"})
)

func RecordCacheHit() {
	CacheHits.Inc()
}

func RecordCacheMiss() {
	CacheMisses.Inc()
}

func RecordDatabaseQuery(queryType, status string, duration float64) {
	DatabaseQueries.WithLabelValues(queryType, status).Inc()
	DatabaseQueryDuration.WithLabelValues(queryType).Observe(duration)
}

func RecordQuoteRequest(status string) {
	QuoteRequests.WithLabelValues(status).Inc()
}

func RecordMetricsRequest(cached bool) {
	cachedStr := "false"
	if cached {
		cachedStr = "true"
	}
	MetricsRequests.WithLabelValues(cachedStr).Inc()
}

func RecordClassification(recommendation string) {
	Classifications.WithLabelValues(recommendation).Inc()
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) ObserveDuration(observer prometheus.Observer) {
	observer.Observe(time.Since(t.start).Seconds())
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

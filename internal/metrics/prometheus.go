// Package metrics exposes Prometheus instrumentation for the query pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "produktbot_query_duration_seconds",
			Help:    "Query processing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"query_type"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "produktbot_query_total",
			Help: "Total number of queries processed",
		},
		[]string{"query_type", "status"},
	)

	IntentConfidence = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "produktbot_intent_confidence",
			Help:    "Intent confidence per natural language query",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	EntitiesExtracted = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "produktbot_entities_extracted",
			Help:    "Number of entities extracted per query",
			Buckets: []float64{0, 1, 2, 3, 5, 10},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "produktbot_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "produktbot_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "produktbot_active_sessions",
			Help: "Number of live conversation sessions",
		},
	)

	UserSatisfaction = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "produktbot_feedback_total",
			Help: "User feedback on responses",
		},
		[]string{"helpful"},
	)
)

func Init() {
	prometheus.MustRegister(QueryDuration)
	prometheus.MustRegister(QueryTotal)
	prometheus.MustRegister(IntentConfidence)
	prometheus.MustRegister(EntitiesExtracted)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
	prometheus.MustRegister(ActiveSessions)
	prometheus.MustRegister(UserSatisfaction)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics exposes Prometheus instrumentation for the proxy.
// Metric names and bucket layouts target a 400ms transformation SLO.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransformDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proxy_transform_duration_ms",
			Help:    "Duration of transformation in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 200, 300, 400, 500, 750, 1000},
		},
		[]string{"query", "category"},
	)

	RelevanceScore = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxy_relevance_score",
			Help: "Relevance score for niche transformation",
		},
		[]string{"query", "category"},
	)

	RelevantNicheCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "proxy_relevant_niche_count",
			Help: "Number of relevant niches returned",
		},
		[]string{"query", "category"},
	)

	MatchTypes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_match_types",
			Help: "Types of matches found during transformation",
		},
		[]string{"query", "category", "match_type"},
	)

	CacheHitRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxy_cache_hit_ratio",
			Help: "Ratio of cache hits to total requests",
		},
	)

	APIResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proxy_api_response_time_ms",
			Help:    "Response time of the upstream analytics API in milliseconds",
			Buckets: []float64{10, 50, 100, 200, 300, 400, 500, 750, 1000, 1500, 2000, 3000, 5000, 10000},
		},
		[]string{"endpoint"},
	)

	TotalRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_total_requests",
			Help: "Total number of requests processed",
		},
		[]string{"endpoint", "status"},
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_redis_operations",
			Help: "Number of cache backend operations",
		},
		[]string{"operation", "result"},
	)

	MemoryCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxy_memory_cache_size",
			Help: "Number of items in memory cache",
		},
	)

	MemoryCacheActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxy_memory_cache_active_items",
			Help: "Number of active items in memory cache",
		},
	)

	ErrorRate = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxy_error_rate",
			Help: "Rate of errors in last minute",
		},
	)

	P95Latency = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "proxy_p95_latency",
			Help: "P95 latency in seconds",
		},
	)
)

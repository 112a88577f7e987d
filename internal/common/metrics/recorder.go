// internal/common/metrics/recorder.go
package metrics

import (
	"sort"
	"sync"
	"time"

	"niche-proxy/internal/common/cache"
	"niche-proxy/internal/common/logger"
)

// rollingWindow bounds the error-rate and p95 calculations.
const rollingWindow = time.Minute

// NicheScoutEndpoint labels metrics for the main proxy endpoint.
const NicheScoutEndpoint = "/api/youtube/niche-scout"

// Recorder maintains the derived gauges (cache hit ratio, error rate,
// p95 latency) on top of the raw Prometheus series. Every method is a
// best-effort observation: recording never blocks request handling and
// never returns an error.
type Recorder struct {
	logger  logger.Logger
	enabled bool

	mu          sync.Mutex
	cacheHits   int64
	cacheMisses int64
	errors      []time.Time
	latencies   []latencySample
}

type latencySample struct {
	at      time.Time
	seconds float64
}

// NewRecorder creates a metrics recorder. With enabled false every
// method is a no-op, matching the metrics feature flag.
func NewRecorder(log logger.Logger, enabled bool) *Recorder {
	return &Recorder{logger: log, enabled: enabled}
}

// RecordTransformation observes one completed transformation.
func (r *Recorder) RecordTransformation(query, category string, duration time.Duration, relevanceScore float64, nicheCount int, matchTypes map[string]int) {
	if !r.enabled {
		return
	}

	durationMs := float64(duration.Milliseconds())
	TransformDuration.WithLabelValues(query, category).Observe(durationMs)
	RelevanceScore.WithLabelValues(query, category).Set(relevanceScore)
	RelevantNicheCount.WithLabelValues(query, category).Set(float64(nicheCount))

	for matchType, count := range matchTypes {
		MatchTypes.WithLabelValues(query, category, matchType).Add(float64(count))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.latencies = append(r.latencies, latencySample{at: now, seconds: durationMs / 1000})
	r.pruneLocked(now)
	r.updateP95Locked()
	r.updateErrorRateLocked()
}

// RecordAPIRequest observes a request served via the upstream API
// (a cache miss).
func (r *Recorder) RecordAPIRequest(apiResponseTime time.Duration) {
	if !r.enabled {
		return
	}

	TotalRequests.WithLabelValues(NicheScoutEndpoint, "success").Inc()
	APIResponseTime.WithLabelValues(NicheScoutEndpoint).Observe(float64(apiResponseTime.Milliseconds()))

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheMisses++
	r.updateCacheHitRatioLocked()
}

// RecordCacheHit observes a request served from cache.
func (r *Recorder) RecordCacheHit() {
	if !r.enabled {
		return
	}

	TotalRequests.WithLabelValues(NicheScoutEndpoint, "success").Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.cacheHits++
	r.updateCacheHitRatioLocked()
}

// RecordCacheOperation counts a cache backend operation and refreshes
// the memory tier gauges when stats are provided.
func (r *Recorder) RecordCacheOperation(operation, result string, stats *cache.MemoryStats) {
	if !r.enabled {
		return
	}

	CacheOperations.WithLabelValues(operation, result).Inc()

	if stats != nil {
		MemoryCacheSize.Set(float64(stats.Size))
		MemoryCacheActive.Set(float64(stats.ActiveItems))
	}
}

// RecordError observes a failed request on the given endpoint.
func (r *Recorder) RecordError(endpoint string) {
	if !r.enabled {
		return
	}
	if endpoint == "" {
		endpoint = NicheScoutEndpoint
	}

	TotalRequests.WithLabelValues(endpoint, "error").Inc()

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.errors = append(r.errors, now)
	r.pruneLocked(now)
	r.updateErrorRateLocked()
}

// pruneLocked drops samples older than the rolling window.
func (r *Recorder) pruneLocked(now time.Time) {
	cutoff := now.Add(-rollingWindow)

	i := 0
	for i < len(r.errors) && r.errors[i].Before(cutoff) {
		i++
	}
	r.errors = r.errors[i:]

	j := 0
	for j < len(r.latencies) && r.latencies[j].at.Before(cutoff) {
		j++
	}
	r.latencies = r.latencies[j:]
}

func (r *Recorder) updateCacheHitRatioLocked() {
	total := r.cacheHits + r.cacheMisses
	if total > 0 {
		CacheHitRatio.Set(float64(r.cacheHits) / float64(total))
	}
}

func (r *Recorder) updateErrorRateLocked() {
	total := len(r.errors) + len(r.latencies)
	if total > 0 {
		ErrorRate.Set(float64(len(r.errors)) / float64(total))
	} else {
		ErrorRate.Set(0)
	}
}

func (r *Recorder) updateP95Locked() {
	if len(r.latencies) == 0 {
		P95Latency.Set(0)
		return
	}

	durations := make([]float64, len(r.latencies))
	for i, s := range r.latencies {
		durations[i] = s.seconds
	}
	sort.Float64s(durations)

	idx := int(float64(len(durations)) * 0.95)
	if idx >= len(durations) {
		idx = len(durations) - 1
	}
	P95Latency.Set(durations[idx])
}

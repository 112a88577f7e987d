// internal/common/metrics/recorder_test.go
package metrics

import (
	"testing"
	"time"

	"niche-proxy/internal/common/cache"
	"niche-proxy/internal/common/logger"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func createTestRecorder(t *testing.T) *Recorder {
	return NewRecorder(logger.NewTestLogger(t), true)
}

func TestRecorder_CacheHitRatio(t *testing.T) {
	r := createTestRecorder(t)

	r.RecordCacheHit()
	r.RecordCacheHit()
	r.RecordCacheHit()
	r.RecordAPIRequest(120 * time.Millisecond)

	assert.InDelta(t, 0.75, testutil.ToFloat64(CacheHitRatio), 0.001)
}

func TestRecorder_ErrorRate(t *testing.T) {
	r := createTestRecorder(t)

	r.RecordTransformation("q", "c", 50*time.Millisecond, 0.8, 5, nil)
	r.RecordError(NicheScoutEndpoint)

	// One error, one successful transformation in the window.
	assert.InDelta(t, 0.5, testutil.ToFloat64(ErrorRate), 0.001)
}

func TestRecorder_P95Latency(t *testing.T) {
	r := createTestRecorder(t)

	for i := 1; i <= 20; i++ {
		r.RecordTransformation("q", "c", time.Duration(i*10)*time.Millisecond, 0.8, 5, nil)
	}

	// 20 samples of 10ms..200ms; index floor(20*0.95)=19 is the 200ms
	// sample.
	assert.InDelta(t, 0.2, testutil.ToFloat64(P95Latency), 0.001)
}

func TestRecorder_RollingWindowPrunesOldSamples(t *testing.T) {
	r := createTestRecorder(t)

	r.mu.Lock()
	r.errors = append(r.errors, time.Now().Add(-2*time.Minute))
	r.latencies = append(r.latencies, latencySample{at: time.Now().Add(-2 * time.Minute), seconds: 9.9})
	r.mu.Unlock()

	r.RecordTransformation("q", "c", 100*time.Millisecond, 0.8, 5, nil)

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Empty(t, r.errors)
	assert.Len(t, r.latencies, 1)
}

func TestRecorder_MemoryCacheGauges(t *testing.T) {
	r := createTestRecorder(t)

	r.RecordCacheOperation("stats", "success", &cache.MemoryStats{Size: 7, ActiveItems: 4})

	assert.Equal(t, 7.0, testutil.ToFloat64(MemoryCacheSize))
	assert.Equal(t, 4.0, testutil.ToFloat64(MemoryCacheActive))
}

func TestRecorder_DisabledIsNoOp(t *testing.T) {
	r := NewRecorder(logger.NewNoOpLogger(), false)

	r.RecordCacheHit()
	r.RecordError("")
	r.RecordTransformation("q", "c", time.Second, 1.0, 1, map[string]int{"exact": 1})

	r.mu.Lock()
	defer r.mu.Unlock()
	assert.Zero(t, r.cacheHits)
	assert.Empty(t, r.errors)
	assert.Empty(t, r.latencies)
}

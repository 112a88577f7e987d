// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"niche-proxy/internal/common/cache"
	"niche-proxy/internal/common/config"
	"niche-proxy/internal/common/errors"
	"niche-proxy/internal/common/logger"
	"niche-proxy/internal/common/metrics"
	"niche-proxy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubProcessor struct {
	result *models.TransformedResult
	err    error
	calls  int
}

func (s *stubProcessor) Process(_ context.Context, _ models.SearchParams) (*models.TransformedResult, error) {
	s.calls++
	return s.result, s.err
}

func createTestServer(t *testing.T, proc Processor) (*Server, *httptest.Server) {
	log := logger.NewTestLogger(t)
	cacheSvc := cache.NewService(cache.NewMemoryBackend(), 5*time.Minute, log)
	recorder := metrics.NewRecorder(log, false)

	srv := New(config.ServerConfig{Port: 0}, time.Minute, proc, cacheSvc, recorder, log)
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return srv, ts
}

func postNicheScout(t *testing.T, ts *httptest.Server, params models.SearchParams) *http.Response {
	body, err := json.Marshal(params)
	require.NoError(t, err)
	resp, err := http.Post(ts.URL+"/api/youtube/niche-scout", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decodeResult(t *testing.T, resp *http.Response) *models.TransformedResult {
	defer resp.Body.Close()
	var out models.TransformedResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out
}

func sampleResult() *models.TransformedResult {
	return &models.TransformedResult{
		Query:    "mobile",
		Category: "Gaming",
		Niches: []models.Niche{
			{Name: "Mobile Gaming", GrowthRate: 87.5},
		},
		Filtered: true,
		Meta: &models.Meta{
			TransformationVersion: "phase1-v1",
		},
	}
}

// ==========================
// Niche Scout Endpoint Tests
// ==========================

func TestNicheScout_Success(t *testing.T) {
	proc := &stubProcessor{result: sampleResult()}
	_, ts := createTestServer(t, proc)

	resp := postNicheScout(t, ts, models.SearchParams{Query: "mobile", Category: "Gaming"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	out := decodeResult(t, resp)
	assert.Equal(t, "mobile", out.Query)
	assert.True(t, out.Filtered)
	require.NotNil(t, out.Meta)
	assert.False(t, out.Meta.CacheHit)
	assert.Equal(t, 1, proc.calls)
}

func TestNicheScout_SecondRequestServedFromCache(t *testing.T) {
	proc := &stubProcessor{result: sampleResult()}
	_, ts := createTestServer(t, proc)
	params := models.SearchParams{Query: "mobile", Category: "Gaming"}

	resp := postNicheScout(t, ts, params)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postNicheScout(t, ts, params)
	out := decodeResult(t, resp)

	require.NotNil(t, out.Meta)
	assert.True(t, out.Meta.CacheHit)
	assert.Equal(t, 1, proc.calls, "cached response must not hit the transformer again")
}

func TestNicheScout_DistinctSubcategoriesMissCache(t *testing.T) {
	proc := &stubProcessor{result: sampleResult()}
	_, ts := createTestServer(t, proc)

	resp := postNicheScout(t, ts, models.SearchParams{Query: "mobile", Category: "Gaming"})
	resp.Body.Close()
	resp = postNicheScout(t, ts, models.SearchParams{
		Query: "mobile", Category: "Gaming", Subcategories: []string{"Esports"},
	})
	resp.Body.Close()

	assert.Equal(t, 2, proc.calls)
}

func TestNicheScout_UpstreamFailureMapsToBadGateway(t *testing.T) {
	proc := &stubProcessor{err: errors.NewUpstreamUnavailableError(context.DeadlineExceeded)}
	_, ts := createTestServer(t, proc)

	resp := postNicheScout(t, ts, models.SearchParams{Query: "mobile"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(errors.ErrCodeUpstreamUnavailable), body["code"])
	assert.Equal(t, "UPSTREAM", body["category"])
	assert.Equal(t, true, body["retryable"])
}

func TestNicheScout_PlainErrorBecomesTransformationFailed(t *testing.T) {
	proc := &stubProcessor{err: fmt.Errorf("scoring stage blew up")}
	_, ts := createTestServer(t, proc)

	resp := postNicheScout(t, ts, models.SearchParams{Query: "mobile"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, string(errors.ErrCodeTransformationFailed), body["code"])
	assert.Equal(t, "TRANSFORM", body["category"])
	assert.Equal(t, false, body["retryable"])
}

func TestNicheScout_TimeoutMapsToGatewayTimeout(t *testing.T) {
	proc := &stubProcessor{err: errors.NewUpstreamTimeoutError("/api/youtube/niche-scout", 5*time.Second)}
	_, ts := createTestServer(t, proc)

	resp := postNicheScout(t, ts, models.SearchParams{Query: "mobile"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
}

func TestNicheScout_InvalidBody(t *testing.T) {
	proc := &stubProcessor{result: sampleResult()}
	_, ts := createTestServer(t, proc)

	resp, err := http.Post(ts.URL+"/api/youtube/niche-scout", "application/json", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, proc.calls)
}

func TestNicheScout_MethodNotAllowed(t *testing.T) {
	_, ts := createTestServer(t, &stubProcessor{})

	resp, err := http.Get(ts.URL + "/api/youtube/niche-scout")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// ==========================
// Cache Invalidation Tests
// ==========================

func TestCacheInvalidate_Pattern(t *testing.T) {
	proc := &stubProcessor{result: sampleResult()}
	_, ts := createTestServer(t, proc)

	// Populate two cached responses.
	postNicheScout(t, ts, models.SearchParams{Query: "mobile", Category: "Gaming"}).Body.Close()
	postNicheScout(t, ts, models.SearchParams{Query: "indie", Category: "Gaming"}).Body.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/cache?pattern=niche-scout:*", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	// Two entries in each tier: primary plus the memory fallback.
	assert.Equal(t, float64(4), body["invalidated"])

	// Invalidated entries trigger a fresh transformation.
	postNicheScout(t, ts, models.SearchParams{Query: "mobile", Category: "Gaming"}).Body.Close()
	assert.Equal(t, 3, proc.calls)
}

func TestCacheInvalidate_RequiresPattern(t *testing.T) {
	_, ts := createTestServer(t, &stubProcessor{})

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/cache", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ==========================
// Health Endpoint Tests
// ==========================

func TestHealthAndReady(t *testing.T) {
	_, ts := createTestServer(t, &stubProcessor{})

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestCacheKey_Format(t *testing.T) {
	key := cacheKey(models.SearchParams{
		Query:         "mobile",
		Category:      "Gaming",
		Subcategories: []string{"Esports", "Speedruns"},
	})
	assert.Equal(t, `niche-scout:mobile:Gaming:["Esports","Speedruns"]`, key)

	key = cacheKey(models.SearchParams{Query: "mobile", Category: "Gaming"})
	assert.Equal(t, "niche-scout:mobile:Gaming:null", key)
}

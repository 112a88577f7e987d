// internal/upstream/client_test.go
package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"niche-proxy/internal/common/config"
	"niche-proxy/internal/common/errors"
	"niche-proxy/internal/common/logger"
	"niche-proxy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestClient(t *testing.T, baseURL string, mockEnabled bool) *Client {
	return NewClient(config.UpstreamConfig{
		BaseURL:   baseURL,
		TimeoutMs: 2000,
	}, mockEnabled, logger.NewTestLogger(t))
}

func testParams() models.SearchParams {
	return models.SearchParams{Query: "mobile", Category: "Gaming"}
}

func TestFetchNicheScout_SendsAPIKeyWhenConfigured(t *testing.T) {
	var gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"query": "mobile", "category": "Gaming", "niches": [{"name": "Mobile Gaming"}]}`))
	}))
	defer server.Close()

	client := NewClient(config.UpstreamConfig{
		BaseURL:   server.URL,
		APIKey:    "secret-key",
		TimeoutMs: 2000,
	}, false, logger.NewTestLogger(t))

	_, err := client.FetchNicheScout(context.Background(), testParams())
	require.NoError(t, err)
	assert.Equal(t, "secret-key", gotKey)
}

func TestFetchNicheScout_Success(t *testing.T) {
	var gotBody models.SearchParams
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, NicheScoutEndpoint, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"query": "mobile",
			"category": "Gaming",
			"niches": [{"name": "Mobile Gaming", "growth_rate": 87.5, "shorts_friendly": true, "competition_level": "Medium"}]
		}`))
	}))
	defer server.Close()

	client := createTestClient(t, server.URL, true)
	result, err := client.FetchNicheScout(context.Background(), testParams())
	require.NoError(t, err)

	assert.Equal(t, "mobile", gotBody.Query)
	assert.False(t, result.Mock)
	require.NotNil(t, result.Response)
	require.Len(t, result.Response.Niches, 1)
	assert.Equal(t, "Mobile Gaming", result.Response.Niches[0].Name)
	assert.Equal(t, 87.5, result.Response.Niches[0].GrowthRate)
	assert.NotNil(t, result.Response.Query)
	assert.Greater(t, result.Latency.Nanoseconds(), int64(0))
}

func TestFetchNicheScout_NullEchoFieldsSurvive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query": null, "category": null, "niches": [{"name": "Anything"}]}`))
	}))
	defer server.Close()

	client := createTestClient(t, server.URL, true)
	result, err := client.FetchNicheScout(context.Background(), testParams())
	require.NoError(t, err)

	// The nulls are the override signal; they must not be defaulted
	// away during decoding.
	assert.Nil(t, result.Response.Query)
	assert.Nil(t, result.Response.Category)
}

func TestFetchNicheScout_ConnectionRefusedUsesMock(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := createTestClient(t, server.URL, true)
	result, err := client.FetchNicheScout(context.Background(), testParams())
	require.NoError(t, err)

	assert.True(t, result.Mock)
	assert.True(t, result.Response.Mock)
	assert.NotEmpty(t, result.Response.Niches)
	require.NotNil(t, result.Response.Query)
	assert.Equal(t, "mobile", *result.Response.Query)
}

func TestFetchNicheScout_ConnectionRefusedWithoutMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := createTestClient(t, server.URL, false)
	_, err := client.FetchNicheScout(context.Background(), testParams())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamUnavailable))
}

func TestFetchNicheScout_ServerErrorUsesMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := createTestClient(t, server.URL, true)
	result, err := client.FetchNicheScout(context.Background(), testParams())
	require.NoError(t, err)
	assert.True(t, result.Mock)
}

func TestFetchNicheScout_ServerErrorWithoutMock(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	client := createTestClient(t, server.URL, false)
	_, err := client.FetchNicheScout(context.Background(), testParams())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeUpstreamBadStatus))
}

func TestFetchNicheScout_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `this is not json`},
		{"missing niches", `{"query": "mobile", "category": "Gaming"}`},
		{"niches wrong type", `{"query": "mobile", "category": "Gaming", "niches": "nope"}`},
		{"niche missing name", `{"niches": [{"growth_rate": 10}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := createTestClient(t, server.URL, true)
			_, err := client.FetchNicheScout(context.Background(), testParams())
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedUpstreamResponse))
		})
	}
}

func TestMockNicheScoutResponse_Shape(t *testing.T) {
	resp := MockNicheScoutResponse(models.SearchParams{Query: "anything", Category: ""})

	assert.True(t, resp.Mock)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "All", *resp.Category)
	require.Len(t, resp.Niches, 3)

	for _, niche := range resp.Niches {
		assert.NotEmpty(t, niche.Name)
		assert.Greater(t, niche.GrowthRate, 0.0)
		assert.Len(t, niche.TopChannels, 2)
		assert.Len(t, niche.TrendingTopics, 3)
	}

	// Round-trips through the same decoder as real payloads.
	raw, err := json.Marshal(resp)
	require.NoError(t, err)
	decoded, err := decodeResponse(raw)
	require.NoError(t, err)
	assert.True(t, decoded.Mock)
}

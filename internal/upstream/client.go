// Package upstream talks to the analytics API that produces raw
// niche-scout results. The API is unreliable; with mock fallback
// enabled (the default) callers always receive a structurally valid
// response.
package upstream

import (
	"context"
	"encoding/json"
	"time"

	"niche-proxy/internal/common/config"
	"niche-proxy/internal/common/errors"
	httpclient "niche-proxy/internal/common/http"
	"niche-proxy/internal/common/logger"
	"niche-proxy/internal/models"
)

// NicheScoutEndpoint is the analytics API path for niche discovery.
const NicheScoutEndpoint = "/api/youtube/niche-scout"

// Result is a fetched upstream response plus call metadata.
type Result struct {
	Response *models.UpstreamResponse
	Raw      json.RawMessage
	Latency  time.Duration
	Mock     bool
}

// Client calls the analytics API.
type Client struct {
	http        *httpclient.Client
	baseURL     string
	apiKey      string
	timeout     time.Duration
	mockEnabled bool
	logger      logger.Logger
}

// NewClient creates an upstream client. mockEnabled controls whether
// failures produce a synthetic response instead of an error.
func NewClient(cfg config.UpstreamConfig, mockEnabled bool, log logger.Logger) *Client {
	return &Client{
		http:        httpclient.NewClient(cfg.Timeout()),
		baseURL:     cfg.BaseURL,
		apiKey:      cfg.APIKey,
		timeout:     cfg.Timeout(),
		mockEnabled: mockEnabled,
		logger:      log,
	}
}

// FetchNicheScout issues a single POST for the given search and
// returns the parsed response. Latency is populated on every path so
// callers can record it regardless of outcome. Network failures and
// bad statuses become a mock response when fallback is enabled;
// payloads that fail schema validation return
// ErrCodeMalformedUpstreamResponse so the caller can regenerate.
func (c *Client) FetchNicheScout(ctx context.Context, params models.SearchParams) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + NicheScoutEndpoint

	c.logger.Info("Calling upstream analytics API", map[string]interface{}{
		"url":      url,
		"query":    params.Query,
		"category": params.Category,
	})

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"x-api-key": c.apiKey}
	}

	start := time.Now()
	body, status, err := c.http.PostJSON(ctx, url, params, headers)
	latency := time.Since(start)

	if err != nil {
		c.logger.Error("Upstream analytics API unreachable", map[string]interface{}{
			"url":   url,
			"error": err.Error(),
		})
		if c.mockEnabled {
			return c.mockResult(params, latency), nil
		}
		if ctx.Err() == context.DeadlineExceeded {
			return &Result{Latency: latency}, errors.NewUpstreamTimeoutError(NicheScoutEndpoint, c.timeout)
		}
		return &Result{Latency: latency}, errors.NewUpstreamUnavailableError(err)
	}

	if status < 200 || status >= 300 {
		c.logger.Error("Upstream analytics API returned error status", map[string]interface{}{
			"url":    url,
			"status": status,
		})
		if c.mockEnabled {
			return c.mockResult(params, latency), nil
		}
		return &Result{Latency: latency}, errors.NewUpstreamBadStatusError(NicheScoutEndpoint, status)
	}

	c.logger.Info("Upstream analytics API response received", map[string]interface{}{
		"latencyMs": latency.Milliseconds(),
		"status":    status,
	})

	resp, err := decodeResponse(body)
	if err != nil {
		return &Result{Raw: body, Latency: latency}, err
	}

	return &Result{
		Response: resp,
		Raw:      body,
		Latency:  latency,
		Mock:     resp.Mock,
	}, nil
}

func (c *Client) mockResult(params models.SearchParams, latency time.Duration) *Result {
	c.logger.Warn("Using mock fallback for upstream analytics API", map[string]interface{}{
		"query":    params.Query,
		"category": params.Category,
	})

	resp := MockNicheScoutResponse(params)
	raw, _ := json.Marshal(resp)

	return &Result{
		Response: resp,
		Raw:      raw,
		Latency:  latency,
		Mock:     true,
	}
}

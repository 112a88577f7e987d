// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"niche-proxy/internal/common/errors"
	"niche-proxy/internal/models"
)

// handleNicheScout serves the search endpoint. Responses are cached
// whole; a hit skips the upstream call entirely.
func (s *Server) handleNicheScout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, errors.NewRequestInvalidError("method not allowed"))
		return
	}

	var params models.SearchParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		s.recorder.RecordError(r.URL.Path)
		s.writeError(w, r, http.StatusBadRequest, errors.NewRequestInvalidError("invalid request body: "+err.Error()))
		return
	}

	key := cacheKey(params)
	var cached models.TransformedResult
	if s.cache.Get(r.Context(), key, &cached) {
		s.recorder.RecordCacheHit()
		if cached.Meta != nil {
			cached.Meta.CacheHit = true
		}
		s.logger.Info("Cache hit for niche-scout request", map[string]interface{}{
			"requestId": requestIDFrom(r.Context()),
			"cacheKey":  key,
		})
		s.writeJSON(w, http.StatusOK, &cached)
		return
	}

	result, err := s.transformer.Process(r.Context(), params)
	if err != nil {
		if _, ok := errors.AsStandard(err); !ok {
			err = errors.NewTransformationFailedError(err)
		}
		s.recorder.RecordError(r.URL.Path)
		s.logger.Error("Niche-scout request failed", map[string]interface{}{
			"requestId": requestIDFrom(r.Context()),
			"query":     params.Query,
			"category":  params.Category,
			"error":     err.Error(),
		})
		s.writeError(w, r, statusForError(err), err)
		return
	}

	if err := s.cache.Set(r.Context(), key, result, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to cache niche-scout response", map[string]interface{}{
			"cacheKey": key,
			"error":    err.Error(),
		})
	}
	stats := s.cache.MemoryStats()
	s.recorder.RecordCacheOperation("set", "success", &stats)

	s.writeJSON(w, http.StatusOK, result)
}

// handleCacheInvalidate removes cached responses by key or glob
// pattern and reports how many entries went away.
func (s *Server) handleCacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		s.writeError(w, r, http.StatusMethodNotAllowed, errors.NewRequestInvalidError("method not allowed"))
		return
	}

	pattern := r.URL.Query().Get("pattern")
	if pattern == "" {
		s.writeError(w, r, http.StatusBadRequest, errors.NewRequestInvalidError("pattern query parameter is required"))
		return
	}

	count := s.cache.Invalidate(r.Context(), pattern)
	s.logger.Info("Cache invalidation requested", map[string]interface{}{
		"requestId":   requestIDFrom(r.Context()),
		"pattern":     pattern,
		"invalidated": count,
	})

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"pattern":     pattern,
		"invalidated": count,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleReady reports readiness. A degraded primary cache does not
// fail the probe; the memory tier keeps the proxy serving.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{
		"status": "ready",
		"cache":  "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
	if err := s.cache.Ping(r.Context()); err != nil {
		status["cache"] = "degraded"
	}
	s.writeJSON(w, http.StatusOK, status)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	body := map[string]interface{}{
		"error":     err.Error(),
		"requestId": requestIDFrom(r.Context()),
	}
	if stdErr, ok := errors.AsStandard(err); ok {
		body["code"] = stdErr.Code
		body["category"] = errors.GetErrorCategory(stdErr.Code)
		body["retryable"] = stdErr.Retryable
		body["timestamp"] = stdErr.Timestamp.Format(time.RFC3339)
	}
	s.writeJSON(w, status, body)
}

// statusForError maps the error taxonomy onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.IsCode(err, errors.ErrCodeRequestInvalid):
		return http.StatusBadRequest
	case errors.IsCode(err, errors.ErrCodeUpstreamTimeout):
		return http.StatusGatewayTimeout
	case errors.IsCode(err, errors.ErrCodeUpstreamUnavailable),
		errors.IsCode(err, errors.ErrCodeUpstreamBadStatus),
		errors.IsCode(err, errors.ErrCodeMalformedUpstreamResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// cacheKey builds the per-request cache key. Subcategories are encoded
// as JSON so distinct lists never collide.
func cacheKey(params models.SearchParams) string {
	subcats, _ := json.Marshal(params.Subcategories)
	return "niche-scout:" + params.Query + ":" + params.Category + ":" + string(subcats)
}

// Package server exposes the proxy over HTTP: the niche-scout search
// endpoint, cache administration, and health probes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"niche-proxy/internal/common/cache"
	"niche-proxy/internal/common/config"
	"niche-proxy/internal/common/logger"
	"niche-proxy/internal/common/metrics"
	"niche-proxy/internal/models"

	"github.com/google/uuid"
)

// Processor is the slice of the transformer the server needs; tests
// substitute a stub.
type Processor interface {
	Process(ctx context.Context, params models.SearchParams) (*models.TransformedResult, error)
}

// Server serves the proxy API.
type Server struct {
	cfg         config.ServerConfig
	cacheTTL    time.Duration
	transformer Processor
	cache       *cache.Service
	recorder    *metrics.Recorder
	logger      logger.Logger

	httpSrv *http.Server
}

// New builds a Server. Call Start to begin serving.
func New(
	cfg config.ServerConfig,
	cacheTTL time.Duration,
	transformer Processor,
	cacheSvc *cache.Service,
	recorder *metrics.Recorder,
	log logger.Logger,
) *Server {
	s := &Server{
		cfg:         cfg,
		cacheTTL:    cacheTTL,
		transformer: transformer,
		cache:       cacheSvc,
		recorder:    recorder,
		logger:      log,
	}
	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Routes builds the API handler. Exposed so tests can drive the mux
// through httptest without binding a port.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/youtube/niche-scout", s.handleNicheScout)
	mux.HandleFunc("/api/cache", s.handleCacheInvalidate)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	return s.withRequestID(mux)
}

// Start blocks serving HTTP until Shutdown is called or the listener
// fails.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", map[string]interface{}{
		"addr": s.httpSrv.Addr,
	})
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// withRequestID tags every request with an ID for log correlation.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

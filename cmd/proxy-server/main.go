// cmd/proxy-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"niche-proxy/internal/common/cache"
	"niche-proxy/internal/common/config"
	"niche-proxy/internal/common/database"
	"niche-proxy/internal/common/logger"
	"niche-proxy/internal/common/metrics"
	"niche-proxy/internal/common/observability"
	"niche-proxy/internal/server"
	"niche-proxy/internal/transform"
	"niche-proxy/internal/transform/candidates"
	"niche-proxy/internal/transform/similarity"
	"niche-proxy/internal/transform/topics"
	"niche-proxy/internal/upstream"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting niche proxy...",
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs := observability.New("niche-proxy")
	defer obs.Shutdown()

	tracing, err := observability.NewTracing("niche-proxy", cfg.Tracing.JaegerEndpoint)
	if err != nil {
		zapLog.Warn("Tracing init failed, continuing without traces", zap.Error(err))
		tracing = nil
	} else {
		defer tracing.Shutdown()
	}

	ctx := context.Background()

	// --- Init Redis, degrading to the in-memory tier when it is down ---
	var backend cache.Backend
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 3, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Warn("Redis unreachable, serving from memory cache only", zap.Error(err))
		backend = cache.NewMemoryBackend()
	} else {
		defer redis.Close()
		zapLog.Info("Redis connected successfully")
		backend = cache.NewRedisBackend(redis)
	}

	cacheSvc := cache.NewService(backend, cfg.Cache.FallbackTTL(), log)
	recorder := metrics.NewRecorder(log, cfg.Features.MetricsEnabled)

	// --- Transformation pipeline ---
	scorer := similarity.NewScorer(cfg.Transformation.Weights)
	vocab := candidates.NewVocabStore(cacheSvc, cfg.Cache.VocabTTL(), log)
	generator := candidates.NewGenerator(scorer, vocab, log)
	enricher := topics.NewEnricher()
	upstreamClient := upstream.NewClient(cfg.Upstream, cfg.Features.MockFallbackEnabled, log)

	transformer := transform.NewTransformer(
		cfg.Transformation,
		upstreamClient,
		generator,
		enricher,
		scorer,
		recorder,
		obs,
		tracing,
		log,
	)

	srv := server.New(cfg.Server, cfg.Cache.TTL(), transformer, cacheSvc, recorder, log)

	// --- Metrics Server ---
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		addr := fmt.Sprintf(":%d", cfg.Server.MetricsPort)
		zapLog.Info("Metrics server listening", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			zapLog.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// --- API Server ---
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, draining requests...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("Niche proxy stopped gracefully")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/config"
	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/db/raw"
	dbRedis "github.com/kailas-cloud/searchgate/internal/db/redis"
	"github.com/kailas-cloud/searchgate/internal/db/typed"
	logpkg "github.com/kailas-cloud/searchgate/internal/logger"
	"github.com/kailas-cloud/searchgate/internal/metrics"
	clusterrepo "github.com/kailas-cloud/searchgate/internal/repository/cluster"
	"github.com/kailas-cloud/searchgate/internal/repository/doccache"
	documentrepo "github.com/kailas-cloud/searchgate/internal/repository/document"
	indexrepo "github.com/kailas-cloud/searchgate/internal/repository/index"
	searchrepo "github.com/kailas-cloud/searchgate/internal/repository/search"
	chiTransport "github.com/kailas-cloud/searchgate/internal/transport/chi"
	osclient "github.com/kailas-cloud/searchgate/internal/transport/opensearch"
	batchuc "github.com/kailas-cloud/searchgate/internal/usecase/batch"
	clusteruc "github.com/kailas-cloud/searchgate/internal/usecase/cluster"
	documentuc "github.com/kailas-cloud/searchgate/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	indexuc "github.com/kailas-cloud/searchgate/internal/usecase/index"
	searchuc "github.com/kailas-cloud/searchgate/internal/usecase/search"
	"github.com/kailas-cloud/searchgate/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, logpkg.Options{
		Level: cfg.Logging.Level,
		File: logpkg.FileOptions{
			Path:       cfg.Logging.File.Path,
			MaxSizeMB:  cfg.Logging.File.MaxSizeMB,
			MaxBackups: cfg.Logging.File.MaxBackups,
			MaxAgeDays: cfg.Logging.File.MaxAgeDays,
			Compress:   cfg.Logging.File.Compress,
		},
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchgate API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("opensearch_driver", cfg.OpenSearch.Driver),
		zap.Strings("opensearch_addresses", cfg.OpenSearch.Addresses),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register upstream metrics explicitly (no init())
	metrics.RegisterOpenSearchMetrics()

	ctx := context.Background()
	client, err := osclient.NewClient(ctx, &osclient.Config{
		Addresses:           cfg.OpenSearch.Addresses,
		Auth:                cfg.OpenSearch.Auth,
		Username:            cfg.OpenSearch.Username,
		Password:            cfg.OpenSearch.Password,
		AWSRegion:           cfg.OpenSearch.AWSRegion,
		InsecureSkipVerify:  cfg.OpenSearch.InsecureSkipVerify,
		MaxRetries:          cfg.OpenSearch.MaxRetries,
		DisableRetry:        cfg.OpenSearch.DisableRetry,
		CompressRequestBody: cfg.OpenSearch.CompressRequestBody,
		LogBodies:           cfg.OpenSearch.LogBodies,
		Logger:              logger,
	})
	if err != nil {
		logger.Fatal("Failed to create OpenSearch client", zap.Error(err))
	}

	// Both drivers share the client; they differ in how requests are built
	var store db.Store
	switch cfg.OpenSearch.Driver {
	case config.DriverTyped:
		store = typed.NewStore(client, typed.Config{
			Workers:       cfg.Bulk.Workers,
			FlushBytes:    cfg.Bulk.FlushBytes,
			FlushInterval: time.Duration(cfg.Bulk.FlushIntervalMS) * time.Millisecond,
		})
	case config.DriverRaw:
		store = raw.NewStore(client)
	default:
		logger.Fatal("Unknown OpenSearch driver", zap.String("driver", cfg.OpenSearch.Driver))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.OpenSearch.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("OpenSearch not ready", zap.Error(err))
	}
	logger.Info("Connected to OpenSearch")

	// Repositories
	clusterRepo := clusterrepo.New(store)
	indexRepo := indexrepo.New(store)
	searchRepo := searchrepo.New(store)

	docs := documentrepo.New(store)

	// Pass nil interface (not typed nil pointer!) when the cache is disabled.
	var docRepo documentuc.Repository = docs
	var bulkRepo batchuc.BulkIndexer = docs
	var cachePinger healthuc.Pinger
	if cfg.Cache.Driver == config.CacheRedis {
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer kv.Close()

		if err := kv.WaitForReady(ctx, time.Duration(cfg.OpenSearch.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to document cache", zap.Strings("addrs", cfg.Cache.Addrs))

		cached := doccache.New(
			docs, kv, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.DocumentCacheTotal, logger,
		)
		docRepo = cached
		bulkRepo = cached
		cachePinger = kv
	}

	// Use case services
	services := chiTransport.Services{
		Cluster:   clusteruc.New(clusterRepo),
		Indices:   indexuc.New(indexRepo),
		Documents: documentuc.New(docRepo),
		Batch: batchuc.New(bulkRepo).
			WithMaxBatchSize(cfg.Bulk.MaxBatchSize).
			WithItemsCounter(metrics.BulkItemsTotal),
		Search: searchuc.New(searchRepo).WithLimits(cfg.Search.DefaultSize, cfg.Search.MaxSize),
		Health: healthuc.New(clusterRepo, cachePinger),
	}

	server := chiTransport.NewServer(services)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("index", chi.URLParamFromCtx(ctx, "index")),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}

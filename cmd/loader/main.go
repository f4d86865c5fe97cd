// NDJSON bulk loader for OpenSearch through the searchgate SDK.
// Reads one JSON document per line from files or a directory, indexes them in
// parallel batches, and resumes from a cursor file after a restart.
//
// Usage:
//
//	loader -index books -input /data/books.ndjson -workers 4 -batch-size 500
//
// Env vars:
//
//	OPENSEARCH_URL       cluster address (default: http://localhost:9200)
//	OPENSEARCH_USERNAME  basic auth user
//	OPENSEARCH_PASSWORD  basic auth password
//	OPENSEARCH_DRIVER    typed or raw (default: typed)
//	OPENSEARCH_INSECURE  "true" skips TLS verification
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/config"
	logpkg "github.com/kailas-cloud/searchgate/internal/logger"
	searchgate "github.com/kailas-cloud/searchgate/pkg/sdk"
)

func main() {
	cfg := parseFlags()

	logger, err := logpkg.New(config.GetEnv(), logpkg.Options{Level: cfg.logLevel})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, cfg, logger); err != nil {
		cancel()
		logger.Fatal("Load failed", zap.Error(err))
	}
}

type loaderConfig struct {
	index          string
	input          string
	idField        string
	dataDir        string
	workers        int
	batchSize      int
	metricsPort    string
	cursorInterval int
	createIndex    bool
	refresh        string
	reset          bool
	logLevel       string
}

func parseFlags() loaderConfig {
	cfg := loaderConfig{}
	flag.StringVar(&cfg.index, "index", "", "target index (required)")
	flag.StringVar(&cfg.input, "input", "", "NDJSON file or directory of *.ndjson/*.jsonl files (required)")
	flag.StringVar(&cfg.idField, "id-field", "id", "top-level field used as document id; empty lets the cluster generate ids")
	flag.StringVar(&cfg.dataDir, "data-dir", ".", "directory for the cursor file")
	flag.IntVar(&cfg.workers, "workers", 4, "number of parallel bulk workers")
	flag.IntVar(&cfg.batchSize, "batch-size", 500, "documents per bulk request")
	flag.StringVar(&cfg.metricsPort, "metrics-port", "9090", "Prometheus metrics port; empty disables")
	flag.IntVar(&cfg.cursorInterval, "cursor-interval", 10000, "save cursor every N lines")
	flag.BoolVar(&cfg.createIndex, "create-index", false, "create the index when it does not exist")
	flag.StringVar(&cfg.refresh, "refresh", "", "refresh policy for bulk requests: true, false, wait_for")
	flag.BoolVar(&cfg.reset, "reset", false, "reset cursor and start from scratch")
	flag.StringVar(&cfg.logLevel, "log-level", "", "debug, info, warn, error")
	flag.Parse()
	return cfg
}

func (c loaderConfig) validate() error {
	switch {
	case c.index == "":
		return errors.New("-index is required")
	case c.input == "":
		return errors.New("-input is required")
	case c.workers <= 0:
		return errors.New("-workers must be positive")
	case c.batchSize <= 0:
		return errors.New("-batch-size must be positive")
	case c.cursorInterval <= 0:
		return errors.New("-cursor-interval must be positive")
	}
	switch searchgate.Refresh(c.refresh) {
	case searchgate.RefreshDefault, searchgate.RefreshTrue, searchgate.RefreshFalse, searchgate.RefreshWaitFor:
		return nil
	default:
		return fmt.Errorf("-refresh must be one of true, false, wait_for, got %q", c.refresh)
	}
}

func run(ctx context.Context, cfg loaderConfig, logger *zap.Logger) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	start := time.Now()

	reg := prometheus.NewRegistry()
	metrics := newLoaderMetrics(reg)
	if cfg.metricsPort != "" {
		metricsSrv := serveMetrics(cfg.metricsPort, reg, logger)
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutCancel()
			_ = metricsSrv.Shutdown(shutCtx)
		}()
	}

	cursor, err := newCursorTracker(cfg.dataDir, cfg.index, cfg.cursorInterval, logger)
	if err != nil {
		return fmt.Errorf("cursor: %w", err)
	}
	if cfg.reset {
		cursor.Reset()
		logger.Info("Cursor reset, starting from scratch")
	}
	if cursor.Get().Done {
		logger.Info("Load already completed, use -reset to run again", zap.String("index", cfg.index))
		return nil
	}

	reader, err := newNDJSONReader(cfg.input, cfg.idField)
	if err != nil {
		return fmt.Errorf("init reader: %w", err)
	}
	logger.Info("Found input files", zap.Int("files", len(reader.files)), zap.String("input", cfg.input))

	client, err := connect(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer client.Close()

	if cfg.createIndex {
		if err := ensureIndex(ctx, client, cfg.index); err != nil {
			return err
		}
	}

	pollCtx, stopPoll := context.WithCancel(ctx)
	defer stopPoll()
	startCountPoller(pollCtx, client.Search(cfg.index), cfg.index, metrics, 30*time.Second, logger)

	ing := &ingester{
		docs:      client.Documents(cfg.index).WithRefresh(searchgate.Refresh(cfg.refresh)),
		index:     cfg.index,
		workers:   cfg.workers,
		batchSize: cfg.batchSize,
		metrics:   metrics,
		cursor:    cursor,
		logger:    logger,
	}

	result, err := ing.Run(ctx, reader)
	if err != nil {
		cursor.Flush()
		return fmt.Errorf("ingest: %w", err)
	}
	cursor.Done()

	report(ctx, client, cfg.index, result, start, logger)
	return nil
}

func connect(ctx context.Context, cfg loaderConfig, reg prometheus.Registerer) (*searchgate.Client, error) {
	opts := []searchgate.Option{
		searchgate.WithAddresses(env("OPENSEARCH_URL", "http://localhost:9200")),
		searchgate.WithDriver(searchgate.Driver(env("OPENSEARCH_DRIVER", string(searchgate.DriverTyped)))),
		searchgate.WithMaxBatchSize(cfg.batchSize),
		searchgate.WithPrometheus(reg),
	}
	if user := os.Getenv("OPENSEARCH_USERNAME"); user != "" {
		opts = append(opts, searchgate.WithBasicAuth(user, os.Getenv("OPENSEARCH_PASSWORD")))
	}
	if os.Getenv("OPENSEARCH_INSECURE") == "true" {
		opts = append(opts, searchgate.WithInsecureSkipVerify())
	}

	client, err := searchgate.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("searchgate connect: %w", err)
	}
	return client, nil
}

func ensureIndex(ctx context.Context, client *searchgate.Client, index string) error {
	exists, err := client.Indices().Exists(ctx, index)
	if err != nil {
		return fmt.Errorf("check index %s: %w", index, err)
	}
	if exists {
		return nil
	}
	err = client.Indices().Create(ctx, index, nil)
	if err != nil && !errors.Is(err, searchgate.ErrIndexAlreadyExists) {
		return fmt.Errorf("create index %s: %w", index, err)
	}
	return nil
}

func report(
	ctx context.Context,
	client *searchgate.Client,
	index string,
	result ingestResult,
	start time.Time,
	logger *zap.Logger,
) {
	elapsed := time.Since(start)
	count, err := client.Search(index).Count(ctx)
	if err != nil {
		logger.Warn("Count after load failed", zap.Error(err))
	}

	logger.Info("Load done",
		zap.String("index", index),
		zap.Duration("elapsed", elapsed.Round(time.Second)),
		zap.Int64("processed", result.Processed),
		zap.Int64("failed", result.Failed),
		zap.Int64("index_docs", count),
		zap.Float64("rate_per_sec", float64(result.Processed)/elapsed.Seconds()),
	)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

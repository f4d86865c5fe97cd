// Prometheus metrics for the loader: progress, batch latency, index size.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// loaderMetrics holds every loader metric.
type loaderMetrics struct {
	docsProcessed *prometheus.CounterVec
	docsFailed    *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	batchDuration *prometheus.HistogramVec

	cursorLine prometheus.Gauge
	indexDocs  *prometheus.GaugeVec
}

func newLoaderMetrics(reg prometheus.Registerer) *loaderMetrics {
	m := &loaderMetrics{
		docsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchgate_loader",
			Name:      "documents_processed_total",
			Help:      "Total documents indexed",
		}, []string{"index"}),

		docsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchgate_loader",
			Name:      "documents_failed_total",
			Help:      "Total documents rejected",
		}, []string{"index", "reason"}), // invalid_json / item_error

		batchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "searchgate_loader",
			Name:      "batches_total",
			Help:      "Total bulk requests sent",
		}, []string{"index"}),

		batchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "searchgate_loader",
			Name:      "batch_duration_seconds",
			Help:      "Bulk request duration",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"index"}),

		cursorLine: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "searchgate_loader",
			Name:      "cursor_line",
			Help:      "Line offset of the last finished batch",
		}),

		indexDocs: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "searchgate_loader",
			Name:      "index_docs_total",
			Help:      "Documents in the target index as reported by _count",
		}, []string{"index"}),
	}

	reg.MustRegister(
		m.docsProcessed, m.docsFailed,
		m.batchesTotal, m.batchDuration,
		m.cursorLine, m.indexDocs,
	)
	return m
}

// serveMetrics starts the scrape endpoint for reg.
func serveMetrics(port string, reg prometheus.Gatherer, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return srv
}

// counter is the consumer interface for the index search service.
type counter interface {
	Count(ctx context.Context) (int64, error)
}

// startCountPoller refreshes indexDocs until ctx is done.
func startCountPoller(
	ctx context.Context,
	c counter,
	index string,
	m *loaderMetrics,
	interval time.Duration,
	logger *zap.Logger,
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// First poll right away.
		pollCount(ctx, c, index, m, logger)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				pollCount(ctx, c, index, m, logger)
			}
		}
	}()
}

func pollCount(ctx context.Context, c counter, index string, m *loaderMetrics, logger *zap.Logger) {
	n, err := c.Count(ctx)
	if err != nil {
		logger.Debug("Count poll failed", zap.Error(err))
		return
	}
	m.indexDocs.WithLabelValues(index).Set(float64(n))
}

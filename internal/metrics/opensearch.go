package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// OpenSearch and cache Prometheus metrics.
var (
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "opensearch_requests_total",
			Help:      "Total number of OpenSearch round trips",
		},
		[]string{"method", "status"}, // status is "error" when no response arrived
	)

	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "opensearch_request_duration_seconds",
			Help:      "OpenSearch round trip duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method"},
	)

	BulkItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bulk_items_total",
			Help:      "Bulk items processed by outcome",
		},
		[]string{"status"}, // "ok" / "error"
	)

	DocumentCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_cache_total",
			Help:      "Document cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var registerOnce sync.Once

// RegisterOpenSearchMetrics registers upstream, bulk and cache metrics. Called from main.
func RegisterOpenSearchMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(UpstreamRequestsTotal)
		prometheus.MustRegister(UpstreamRequestDuration)
		prometheus.MustRegister(BulkItemsTotal)
		prometheus.MustRegister(DocumentCacheTotal)
	})
}

package searchgate

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Driver selects how requests are built.
type Driver string

// Drivers.
const (
	// DriverTyped uses the high-level opensearchapi requests and the bulk indexer.
	DriverTyped Driver = "typed"
	// DriverRaw hand-builds HTTP requests against the low-level client.
	DriverRaw Driver = "raw"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver    Driver
	addresses []string
	username  string
	password  string
	insecure  bool
	transport http.RoundTripper

	maxRetries       int
	readinessTimeout time.Duration
	maxBatchSize     int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithAddresses sets the cluster node URLs, e.g. "https://localhost:9200".
func WithAddresses(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addresses = append([]string(nil), addrs...)
	})
}

// WithBasicAuth sets HTTP basic credentials.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.username = username
		c.password = password
	})
}

// WithDriver picks the request driver. Default: DriverTyped.
func WithDriver(d Driver) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = d
	})
}

// WithInsecureSkipVerify disables TLS certificate verification.
// Use only against local clusters with self-signed certificates.
func WithInsecureSkipVerify() Option {
	return optionFunc(func(c *clientConfig) {
		c.insecure = true
	})
}

// WithTransport replaces the HTTP transport used for every cluster call.
func WithTransport(rt http.RoundTripper) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = rt
	})
}

// WithMaxRetries sets the client library retry count. Default: library default (3).
func WithMaxRetries(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = n
	})
}

// WithReadinessTimeout bounds the startup wait for the cluster. Default: 10s.
func WithReadinessTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readinessTimeout = d
	})
}

// WithMaxBatchSize sets the maximum number of documents per bulk call.
// Default: 500.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

package opensearch

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/opensearch-project/opensearch-go/v2/opensearchtransport"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/metrics"
)

var _ opensearchtransport.Logger = (*Logger)(nil)

// maxLoggedBody caps request and response bodies written to the log.
const maxLoggedBody = 4 << 10

// Logger records every cluster round trip as a debug log line and in Prometheus.
type Logger struct {
	logger *zap.Logger
	bodies bool
}

// NewLogger wraps a zap logger. With bodies=true request and response payloads are logged too.
func NewLogger(l *zap.Logger, bodies bool) *Logger {
	return &Logger{logger: l.Named("opensearch"), bodies: bodies}
}

// LogRoundTrip implements opensearchtransport.Logger.
func (l *Logger) LogRoundTrip(req *http.Request, res *http.Response, err error, start time.Time, dur time.Duration) error {
	status := "error"
	code := 0
	if err == nil && res != nil && res.StatusCode > 0 {
		code = res.StatusCode
		status = strconv.Itoa(code)
	}
	metrics.UpstreamRequestsTotal.WithLabelValues(req.Method, status).Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(req.Method).Observe(dur.Seconds())

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", code),
		zap.Duration("duration", dur),
		zap.Time("start", start),
	}
	if l.bodies {
		if req.Body != nil && req.Body != http.NoBody {
			fields = append(fields, zap.ByteString("request_body", readCapped(req.Body)))
		}
		if res != nil && res.Body != nil && res.Body != http.NoBody {
			fields = append(fields, zap.ByteString("response_body", readCapped(res.Body)))
		}
	}

	switch {
	case err != nil:
		l.logger.Warn("opensearch round trip failed", append(fields, zap.Error(err))...)
	case code >= http.StatusInternalServerError:
		l.logger.Warn("opensearch round trip", fields...)
	default:
		l.logger.Debug("opensearch round trip", fields...)
	}
	return nil
}

// RequestBodyEnabled implements opensearchtransport.Logger.
func (l *Logger) RequestBodyEnabled() bool { return l.bodies }

// ResponseBodyEnabled implements opensearchtransport.Logger.
func (l *Logger) ResponseBodyEnabled() bool { return l.bodies }

func readCapped(r io.Reader) []byte {
	b, _ := io.ReadAll(io.LimitReader(r, maxLoggedBody))
	return b
}

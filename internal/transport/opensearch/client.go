// Package opensearch builds the shared OpenSearch client used by both drivers.
package opensearch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/opensearch-project/opensearch-go/v2"
	requestsigner "github.com/opensearch-project/opensearch-go/v2/signer/awsv2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/version"
)

// Auth modes.
const (
	AuthBasic    = "basic"
	AuthAWSSigV4 = "aws_sigv4"
)

// Config holds the cluster connection settings.
type Config struct {
	Addresses           []string
	Auth                string // AuthBasic (default) or AuthAWSSigV4
	Username            string
	Password            string
	AWSRegion           string
	InsecureSkipVerify  bool
	MaxRetries          int
	DisableRetry        bool
	CompressRequestBody bool
	LogBodies           bool
	Logger              *zap.Logger
	// Transport overrides the HTTP transport. Tests plug httpmock in here.
	Transport http.RoundTripper
}

// NewClient creates an OpenSearch client. SigV4 credentials come from the default AWS chain.
func NewClient(ctx context.Context, cfg *Config) (*opensearch.Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("opensearch: at least one address is required")
	}

	osCfg := opensearch.Config{
		Addresses:           cfg.Addresses,
		Transport:           cfg.Transport,
		MaxRetries:          cfg.MaxRetries,
		DisableRetry:        cfg.DisableRetry,
		CompressRequestBody: cfg.CompressRequestBody,
		Header:              http.Header{"User-Agent": []string{version.UserAgent()}},
	}
	if osCfg.Transport == nil {
		osCfg.Transport = defaultTransport(cfg.InsecureSkipVerify)
	}
	if cfg.Logger != nil {
		osCfg.Logger = NewLogger(cfg.Logger, cfg.LogBodies)
	}

	switch cfg.Auth {
	case "", AuthBasic:
		osCfg.Username = cfg.Username
		osCfg.Password = cfg.Password
	case AuthAWSSigV4:
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		signer, err := requestsigner.NewSigner(awsCfg)
		if err != nil {
			return nil, fmt.Errorf("create request signer: %w", err)
		}
		osCfg.Signer = signer
	default:
		return nil, fmt.Errorf("opensearch: unknown auth mode %q", cfg.Auth)
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return client, nil
}

func defaultTransport(insecure bool) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 10
	t.ResponseHeaderTimeout = 60 * time.Second
	t.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: insecure, //nolint:gosec // opt-in for self-signed dev clusters
		MinVersion:         tls.VersionTLS12,
	}
	return t
}

package searchgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/db/raw"
	"github.com/kailas-cloud/searchgate/internal/db/typed"
	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	clusterrepo "github.com/kailas-cloud/searchgate/internal/repository/cluster"
	documentrepo "github.com/kailas-cloud/searchgate/internal/repository/document"
	indexrepo "github.com/kailas-cloud/searchgate/internal/repository/index"
	searchrepo "github.com/kailas-cloud/searchgate/internal/repository/search"
	osclient "github.com/kailas-cloud/searchgate/internal/transport/opensearch"
	batchuc "github.com/kailas-cloud/searchgate/internal/usecase/batch"
	clusteruc "github.com/kailas-cloud/searchgate/internal/usecase/cluster"
	documentuc "github.com/kailas-cloud/searchgate/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	indexuc "github.com/kailas-cloud/searchgate/internal/usecase/index"
	searchuc "github.com/kailas-cloud/searchgate/internal/usecase/search"
)

const defaultReadinessTimeout = 10 * time.Second

// Внутренние интерфейсы для подмены в тестах.
type clusterUseCase interface {
	Info(ctx context.Context) (domcluster.Info, error)
	Health(ctx context.Context) (domcluster.Health, error)
}

type indexUseCase interface {
	List(ctx context.Context, pattern string) ([]domindex.Info, error)
	Create(ctx context.Context, name string, body []byte) error
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

type documentUseCase interface {
	Create(ctx context.Context, index, id string, source []byte, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	Get(ctx context.Context, index, id string) (domdoc.Document, error)
	Update(ctx context.Context, index, id string, partial []byte, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	Delete(ctx context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error)
}

type batchUseCase interface {
	Index(ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh) ([]dombatch.Result, error)
}

type searchUseCase interface {
	Search(ctx context.Context, index string, query []byte, from, size int) (result.Result, error)
	Count(ctx context.Context, index string) (int64, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the searchgate SDK entry point. It talks to the cluster directly,
// without the HTTP gateway in between.
type Client struct {
	store      db.Store
	clusterSvc clusterUseCase
	indexSvc   indexUseCase
	docSvc     documentUseCase
	batchSvc   batchUseCase
	searchSvc  searchUseCase
	healthSvc  healthUseCase
	obs        *observer
}

// New creates a Client and waits until the cluster answers a ping.
// The provided context is used for the readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		driver:           DriverTyped,
		readinessTimeout: defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addresses) == 0 {
		return nil, errors.New("searchgate: cluster address required (use WithAddresses)")
	}

	store, err := createStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, cfg.readinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("searchgate: cluster not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func createStore(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	client, err := osclient.NewClient(ctx, &osclient.Config{
		Addresses:          cfg.addresses,
		Auth:               osclient.AuthBasic,
		Username:           cfg.username,
		Password:           cfg.password,
		InsecureSkipVerify: cfg.insecure,
		MaxRetries:         cfg.maxRetries,
		Transport:          cfg.transport,
	})
	if err != nil {
		return nil, fmt.Errorf("searchgate: %w", err)
	}
	return newStore(cfg.driver, client)
}

func newStore(driver Driver, client *opensearch.Client) (db.Store, error) {
	switch driver {
	case DriverTyped:
		return typed.NewStore(client, typed.Config{}), nil
	case DriverRaw:
		return raw.NewStore(client), nil
	default:
		return nil, fmt.Errorf("searchgate: unknown driver %q", driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	clusterRepo := clusterrepo.New(store)
	docRepo := documentrepo.New(store)

	batchSvc := batchuc.New(docRepo)
	if cfg.maxBatchSize > 0 {
		batchSvc = batchSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	return &Client{
		store:      store,
		clusterSvc: clusteruc.New(clusterRepo),
		indexSvc:   indexuc.New(indexrepo.New(store)),
		docSvc:     documentuc.New(docRepo),
		batchSvc:   batchSvc,
		searchSvc:  searchuc.New(searchrepo.New(store)),
		healthSvc:  healthuc.New(clusterRepo, nil), // no cache in the SDK
		obs:        obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks cluster connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Info returns the cluster's root document.
func (c *Client) Info(ctx context.Context) (_ ClusterInfo, err error) {
	start := time.Now()
	defer func() { c.obs.observe("info", "", start, err) }()

	info, err := c.clusterSvc.Info(ctx)
	if err != nil {
		return ClusterInfo{}, fmt.Errorf("info: %w", err)
	}
	return ClusterInfo{
		Name:          info.Name,
		ClusterName:   info.ClusterName,
		ClusterUUID:   info.ClusterUUID,
		VersionNumber: info.VersionNumber,
		Distribution:  info.Distribution,
		Raw:           info.Raw,
	}, nil
}

// ClusterHealth returns the cluster's shard allocation summary.
func (c *Client) ClusterHealth(ctx context.Context) (_ ClusterHealth, err error) {
	start := time.Now()
	defer func() { c.obs.observe("cluster_health", "", start, err) }()

	h, err := c.clusterSvc.Health(ctx)
	if err != nil {
		return ClusterHealth{}, fmt.Errorf("cluster health: %w", err)
	}
	return ClusterHealth{
		ClusterName:         h.ClusterName,
		Status:              h.Status,
		TimedOut:            h.TimedOut,
		NumberOfNodes:       h.NumberOfNodes,
		NumberOfDataNodes:   h.NumberOfDataNodes,
		ActivePrimaryShards: h.ActivePrimaryShards,
		ActiveShards:        h.ActiveShards,
		RelocatingShards:    h.RelocatingShards,
		InitializingShards:  h.InitializingShards,
		UnassignedShards:    h.UnassignedShards,
	}, nil
}

// Health checks the availability of the cluster.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}
	return HealthStatus{
		Status: string(report.Status),
		Checks: checks,
	}
}

// Indices returns the index management service.
func (c *Client) Indices() *IndexService {
	return &IndexService{svc: c.indexSvc, obs: c.obs}
}

// Documents returns the document service for a given index.
func (c *Client) Documents(index string) *DocumentService {
	return &DocumentService{
		index:    index,
		docSvc:   c.docSvc,
		batchSvc: c.batchSvc,
		obs:      c.obs,
	}
}

// Search returns the search service for a given index.
func (c *Client) Search(index string) *SearchService {
	return &SearchService{index: index, svc: c.searchSvc, obs: c.obs}
}

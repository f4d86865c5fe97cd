package batch

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/logger"
)

// DefaultMaxBatchSize is the default maximum number of items per bulk request.
const DefaultMaxBatchSize = 500

// Service handles bulk indexing with per-item error reporting.
type Service struct {
	repo         BulkIndexer
	maxBatchSize int
	itemsTotal   *prometheus.CounterVec
}

// New creates a batch service.
func New(repo BulkIndexer) *Service {
	return &Service{repo: repo, maxBatchSize: DefaultMaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// WithItemsCounter counts processed items by status ("ok"/"error").
func (s *Service) WithItemsCounter(c *prometheus.CounterVec) *Service {
	s.itemsTotal = c
	return s
}

// MaxBatchSize returns the configured limit.
func (s *Service) MaxBatchSize() int { return s.maxBatchSize }

// Index writes items into index and returns one result per item, in input order.
// A failure of the whole request is reported on every item.
func (s *Service) Index(
	ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh,
) ([]dombatch.Result, error) {
	if err := domindex.ValidateName(index); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if _, err := domdoc.ParseRefresh(string(refresh)); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("batch is empty: %w", domain.ErrInvalidRequest)
	}
	if len(items) > s.maxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds %d: %w", len(items), s.maxBatchSize, domain.ErrInvalidRequest)
	}

	results, err := s.repo.Bulk(ctx, index, items, refresh)
	if err != nil {
		results = make([]dombatch.Result, len(items))
		for i, it := range items {
			results[i] = dombatch.NewError(it.ID(), 0, fmt.Errorf("bulk: %w", err))
		}
	}

	log := logger.FromContext(ctx)
	for i, r := range results {
		if r.Status() != dombatch.StatusError {
			s.inc(string(dombatch.StatusOK))
			continue
		}
		s.inc(string(dombatch.StatusError))
		log.Warn("bulk item failed",
			zap.String("index", index),
			zap.Int("position", i),
			zap.String("id", r.ID()),
			zap.Int("status", r.HTTPStatus()),
			zap.Error(r.Err()),
		)
	}
	return results, nil
}

func (s *Service) inc(status string) {
	if s.itemsTotal != nil {
		s.itemsTotal.WithLabelValues(status).Inc()
	}
}

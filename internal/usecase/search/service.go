package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
)

// Service runs query DSL searches and counts.
type Service struct {
	repo   Repository
	limits request.Limits
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{repo: repo, limits: request.Limits{DefaultSize: request.DefaultSize, MaxSize: request.MaxSize}}
}

// WithLimits configures page size limits.
func (s *Service) WithLimits(defaultSize, maxSize int) *Service {
	if defaultSize > 0 {
		s.limits.DefaultSize = defaultSize
	}
	if maxSize > 0 {
		s.limits.MaxSize = maxSize
	}
	return s
}

// Search runs query against index. An empty query matches everything.
func (s *Service) Search(ctx context.Context, index string, query []byte, from, size int) (result.Result, error) {
	if err := domindex.ValidateName(index); err != nil {
		return result.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	req, err := request.New(query, from, size, s.limits)
	if err != nil {
		return result.Result{}, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}

	res, err := s.repo.Search(ctx, index, &req)
	if err != nil {
		return result.Result{}, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// Count returns the number of documents in index.
func (s *Service) Count(ctx context.Context, index string) (int64, error) {
	if err := domindex.ValidateName(index); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	n, err := s.repo.Count(ctx, index)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

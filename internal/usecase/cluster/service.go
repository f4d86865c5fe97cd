package cluster

import (
	"context"
	"fmt"

	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
)

// Service exposes cluster info and health.
type Service struct {
	repo Repository
}

// New creates a cluster service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Info returns the cluster root document.
func (s *Service) Info(ctx context.Context) (domcluster.Info, error) {
	info, err := s.repo.Info(ctx)
	if err != nil {
		return domcluster.Info{}, fmt.Errorf("get cluster info: %w", err)
	}
	return info, nil
}

// Health returns the cluster health summary.
func (s *Service) Health(ctx context.Context) (domcluster.Health, error) {
	h, err := s.repo.Health(ctx)
	if err != nil {
		return domcluster.Health{}, fmt.Errorf("get cluster health: %w", err)
	}
	return h, nil
}

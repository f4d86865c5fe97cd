package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
)

// Service handles index listing and lifecycle.
type Service struct {
	repo Repository
}

// New creates an index service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the indices matching pattern; an empty pattern lists all of them.
func (s *Service) List(ctx context.Context, pattern string) ([]domindex.Info, error) {
	if pattern != "" {
		if err := domindex.ValidateName(pattern); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
	}
	list, err := s.repo.List(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}
	return list, nil
}

// Create creates an index. body holds optional settings and mappings.
func (s *Service) Create(ctx context.Context, name string, body []byte) error {
	if err := domindex.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	body, err := normalizeBody(body)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, name, body); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Delete removes an index with all its documents.
func (s *Service) Delete(ctx context.Context, name string) error {
	if err := domindex.ValidateName(name); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

// Exists reports whether an index exists.
func (s *Service) Exists(ctx context.Context, name string) (bool, error) {
	if err := domindex.ValidateName(name); err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
	}
	ok, err := s.repo.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("index exists: %w", err)
	}
	return ok, nil
}

// normalizeBody returns nil for an empty body and requires a JSON object otherwise.
func normalizeBody(body []byte) ([]byte, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("index body must be a JSON object: %w", domain.ErrInvalidRequest)
	}
	return body, nil
}

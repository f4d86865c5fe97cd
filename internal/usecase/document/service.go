package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
)

// Service handles single-document CRUD.
type Service struct {
	repo Repository
}

// New creates a document service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create indexes source under id, or under a cluster-generated id when id is empty.
func (s *Service) Create(
	ctx context.Context, index, id string, source []byte, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	if err := domindex.ValidateName(index); err != nil {
		return domdoc.WriteResult{}, invalid(err)
	}
	if err := checkRefresh(refresh); err != nil {
		return domdoc.WriteResult{}, err
	}
	if id != "" {
		if err := domdoc.ValidateID(id); err != nil {
			return domdoc.WriteResult{}, invalid(err)
		}
	}
	doc, err := domdoc.New(index, id, source)
	if err != nil {
		return domdoc.WriteResult{}, invalid(err)
	}

	res, err := s.repo.Create(ctx, &doc, refresh)
	if err != nil {
		return domdoc.WriteResult{}, fmt.Errorf("create document: %w", err)
	}
	return res, nil
}

// Get retrieves a document by index and ID.
func (s *Service) Get(ctx context.Context, index, id string) (domdoc.Document, error) {
	if err := validateAddress(index, id); err != nil {
		return domdoc.Document{}, err
	}
	doc, err := s.repo.Get(ctx, index, id)
	if err != nil {
		return domdoc.Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// Update merges partial into the stored document.
func (s *Service) Update(
	ctx context.Context, index, id string, partial []byte, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	if err := validateAddress(index, id); err != nil {
		return domdoc.WriteResult{}, err
	}
	if err := checkRefresh(refresh); err != nil {
		return domdoc.WriteResult{}, err
	}
	p, err := domdoc.NormalizeSource(partial)
	if err != nil {
		return domdoc.WriteResult{}, invalid(err)
	}
	if p[0] != '{' {
		return domdoc.WriteResult{}, invalid(errors.New("partial document must be a JSON object"))
	}

	res, err := s.repo.Update(ctx, index, id, p, refresh)
	if err != nil {
		return domdoc.WriteResult{}, fmt.Errorf("update document: %w", err)
	}
	return res, nil
}

// Delete removes a document.
func (s *Service) Delete(ctx context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
	if err := validateAddress(index, id); err != nil {
		return domdoc.WriteResult{}, err
	}
	if err := checkRefresh(refresh); err != nil {
		return domdoc.WriteResult{}, err
	}
	res, err := s.repo.Delete(ctx, index, id, refresh)
	if err != nil {
		return domdoc.WriteResult{}, fmt.Errorf("delete document: %w", err)
	}
	return res, nil
}

func checkRefresh(refresh domdoc.Refresh) error {
	if _, err := domdoc.ParseRefresh(string(refresh)); err != nil {
		return invalid(err)
	}
	return nil
}

func validateAddress(index, id string) error {
	if err := domindex.ValidateName(index); err != nil {
		return invalid(err)
	}
	if err := domdoc.ValidateID(id); err != nil {
		return invalid(err)
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
}

package searchgate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
)

// IndexService manages index lifecycle.
type IndexService struct {
	svc indexUseCase
	obs *observer
}

// List returns indices matching pattern (wildcards allowed). Empty pattern lists all.
func (s *IndexService) List(ctx context.Context, pattern string) (_ []IndexInfo, err error) {
	start := time.Now()
	defer func() { s.obs.observe("list_indices", "", start, err) }()

	list, err := s.svc.List(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("list indices: %w", err)
	}
	out := make([]IndexInfo, len(list))
	for i, info := range list {
		out[i] = fromInternalIndex(info)
	}
	return out, nil
}

// Create creates an index. body holds optional settings and mappings; nil uses cluster defaults.
func (s *IndexService) Create(ctx context.Context, name string, body json.RawMessage) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("create_index", name, start, err) }()

	if err = s.svc.Create(ctx, name, body); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Delete drops an index with all its documents.
func (s *IndexService) Delete(ctx context.Context, name string) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete_index", name, start, err) }()

	if err = s.svc.Delete(ctx, name); err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	return nil
}

// Exists reports whether the index exists.
func (s *IndexService) Exists(ctx context.Context, name string) (_ bool, err error) {
	start := time.Now()
	defer func() { s.obs.observe("index_exists", name, start, err) }()

	ok, err := s.svc.Exists(ctx, name)
	if err != nil {
		return false, fmt.Errorf("index exists: %w", err)
	}
	return ok, nil
}

func fromInternalIndex(i domindex.Info) IndexInfo {
	return IndexInfo{
		Name:             i.Name,
		Health:           i.Health,
		Status:           i.Status,
		UUID:             i.UUID,
		Primaries:        i.Primaries,
		Replicas:         i.Replicas,
		DocsCount:        i.DocsCount,
		DocsDeleted:      i.DocsDeleted,
		StoreSize:        i.StoreSize,
		PrimaryStoreSize: i.PrimaryStoreSize,
	}
}

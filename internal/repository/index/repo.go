package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/repository/upstream"
)

// store is the consumer interface for index lifecycle (ISP).
type store interface {
	CatIndices(ctx context.Context, pattern string) ([]byte, error)
	CreateIndex(ctx context.Context, name string, body []byte) ([]byte, error)
	DeleteIndex(ctx context.Context, name string) ([]byte, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Repo implements usecase/index.Repository.
type Repo struct {
	store store
}

// New creates an index repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// List returns the _cat/indices records matching pattern, in cluster order.
func (r *Repo) List(ctx context.Context, pattern string) ([]domindex.Info, error) {
	raw, err := r.store.CatIndices(ctx, pattern)
	if err != nil {
		return nil, upstream.Wrap(err)
	}
	var records []catIndexDTO
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode cat indices: %w", err)
	}
	out := make([]domindex.Info, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.toDomain())
	}
	return out, nil
}

// Create creates an index. body carries optional settings and mappings.
func (r *Repo) Create(ctx context.Context, name string, body []byte) error {
	if _, err := r.store.CreateIndex(ctx, name, body); err != nil {
		return upstream.Wrap(err)
	}
	return nil
}

// Delete removes an index.
func (r *Repo) Delete(ctx context.Context, name string) error {
	if _, err := r.store.DeleteIndex(ctx, name); err != nil {
		return upstream.Wrap(err)
	}
	return nil
}

// Exists checks whether an index exists.
func (r *Repo) Exists(ctx context.Context, name string) (bool, error) {
	ok, err := r.store.IndexExists(ctx, name)
	if err != nil {
		return false, upstream.Wrap(err)
	}
	return ok, nil
}

// catIndexDTO is one _cat/indices?format=json record. Every value arrives as a string, null for closed indices.
type catIndexDTO struct {
	Health           string `json:"health"`
	Status           string `json:"status"`
	Index            string `json:"index"`
	UUID             string `json:"uuid"`
	Pri              string `json:"pri"`
	Rep              string `json:"rep"`
	DocsCount        string `json:"docs.count"`
	DocsDeleted      string `json:"docs.deleted"`
	StoreSize        string `json:"store.size"`
	PrimaryStoreSize string `json:"pri.store.size"`
}

func (d catIndexDTO) toDomain() domindex.Info {
	return domindex.Info{
		Health:           d.Health,
		Status:           d.Status,
		Name:             d.Index,
		UUID:             d.UUID,
		Primaries:        atoi(d.Pri),
		Replicas:         atoi(d.Rep),
		DocsCount:        atoi64(d.DocsCount),
		DocsDeleted:      atoi64(d.DocsDeleted),
		StoreSize:        d.StoreSize,
		PrimaryStoreSize: d.PrimaryStoreSize,
	}
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func atoi64(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	"github.com/kailas-cloud/searchgate/internal/repository/upstream"
)

// store is the consumer interface for search (ISP).
type store interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
	Count(ctx context.Context, index string) ([]byte, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs req against index and returns one page of hits.
func (r *Repo) Search(ctx context.Context, index string, req *request.Request) (result.Result, error) {
	body, err := json.Marshal(searchBody{Query: req.Query(), From: req.From(), Size: req.Size()})
	if err != nil {
		return result.Result{}, fmt.Errorf("marshal search body: %w", err)
	}

	raw, err := r.store.Search(ctx, index, body)
	if err != nil {
		return result.Result{}, upstream.Wrap(err)
	}

	var d searchResponse
	if err := json.Unmarshal(raw, &d); err != nil {
		return result.Result{}, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]result.Hit, 0, len(d.Hits.Hits))
	for _, h := range d.Hits.Hits {
		hits = append(hits, result.NewHit(h.Index, h.ID, deref(h.Score), h.Source))
	}
	return result.New(d.Hits.Total.Value, d.Hits.Total.Relation, deref(d.Hits.MaxScore), d.Took, hits), nil
}

// Count returns the number of documents in index.
func (r *Repo) Count(ctx context.Context, index string) (int64, error) {
	raw, err := r.store.Count(ctx, index)
	if err != nil {
		return 0, upstream.Wrap(err)
	}
	var d countResponse
	if err := json.Unmarshal(raw, &d); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return d.Count, nil
}

type searchBody struct {
	Query json.RawMessage `json:"query"`
	From  int             `json:"from"`
	Size  int             `json:"size"`
}

type searchResponse struct {
	Took int64 `json:"took"`
	Hits struct {
		Total struct {
			Value    int64  `json:"value"`
			Relation string `json:"relation"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Index  string          `json:"_index"`
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type countResponse struct {
	Count int64 `json:"count"`
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

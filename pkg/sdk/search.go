package searchgate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
)

// SearchService runs queries against a single index.
type SearchService struct {
	index string
	svc   searchUseCase
	obs   *observer
}

// Query runs a query DSL clause, e.g. {"match":{"title":"go"}}.
// Nil query matches everything; size 0 uses the default page size.
func (s *SearchService) Query(ctx context.Context, query json.RawMessage, from, size int) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("search", s.index, start, err) }()

	res, err := s.svc.Search(ctx, s.index, query, from, size)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	return fromInternalResult(&res), nil
}

// Count returns the number of documents in the index.
func (s *SearchService) Count(ctx context.Context) (_ int64, err error) {
	start := time.Now()
	defer func() { s.obs.observe("count", s.index, start, err) }()

	n, err := s.svc.Count(ctx, s.index)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

func fromInternalResult(r *result.Result) SearchResult {
	hits := make([]Hit, len(r.Hits()))
	for i, h := range r.Hits() {
		hits[i] = Hit{Index: h.Index(), ID: h.ID(), Score: h.Score(), Source: h.Source()}
	}
	return SearchResult{
		Total:    r.Total(),
		Relation: r.Relation(),
		MaxScore: r.MaxScore(),
		Took:     time.Duration(r.TookMS()) * time.Millisecond,
		Hits:     hits,
	}
}

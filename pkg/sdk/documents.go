package searchgate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
)

// DocumentService manages documents within a single index.
type DocumentService struct {
	index    string
	refresh  Refresh
	docSvc   documentUseCase
	batchSvc batchUseCase
	obs      *observer
}

// WithRefresh returns a copy of the service that applies refresh to every write.
func (s *DocumentService) WithRefresh(refresh Refresh) *DocumentService {
	cp := *s
	cp.refresh = refresh
	return &cp
}

// Create indexes source under id. Empty id lets the cluster generate one.
// An existing document with the same id is replaced.
func (s *DocumentService) Create(ctx context.Context, id string, source json.RawMessage) (_ WriteResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("create_document", s.index, start, err) }()

	res, err := s.docSvc.Create(ctx, s.index, id, source, s.refresh)
	if err != nil {
		return WriteResult{}, fmt.Errorf("create document: %w", err)
	}
	return fromInternalWrite(&res), nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, id string) (_ Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_document", s.index, start, err) }()

	d, err := s.docSvc.Get(ctx, s.index, id)
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return fromInternalDocument(&d), nil
}

// Update merges partial into the stored source.
func (s *DocumentService) Update(ctx context.Context, id string, partial json.RawMessage) (_ WriteResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("update_document", s.index, start, err) }()

	res, err := s.docSvc.Update(ctx, s.index, id, partial, s.refresh)
	if err != nil {
		return WriteResult{}, fmt.Errorf("update document: %w", err)
	}
	return fromInternalWrite(&res), nil
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, id string) (_ WriteResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete_document", s.index, start, err) }()

	res, err := s.docSvc.Delete(ctx, s.index, id, s.refresh)
	if err != nil {
		return WriteResult{}, fmt.Errorf("delete document: %w", err)
	}
	return fromInternalWrite(&res), nil
}

// Bulk indexes docs in one round trip. The error is set only when the call as a
// whole was rejected; per-document failures are reported in the results.
func (s *DocumentService) Bulk(ctx context.Context, docs []BulkDocument) (_ []BulkResult, err error) {
	start := time.Now()
	defer func() { s.obs.observe("bulk", s.index, start, err) }()

	items := make([]dombatch.Item, len(docs))
	for i, d := range docs {
		items[i], err = dombatch.NewItem(d.ID, d.Source)
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}

	res, err := s.batchSvc.Index(ctx, s.index, items, s.refresh)
	if err != nil {
		return nil, fmt.Errorf("bulk: %w", err)
	}
	out := fromBatchResults(res)
	s.obs.observeBulk(s.index, out)
	return out, nil
}

func fromInternalDocument(d *domdoc.Document) Document {
	return Document{
		Index:       d.Index(),
		ID:          d.ID(),
		Version:     d.Version(),
		SeqNo:       d.SeqNo(),
		PrimaryTerm: d.PrimaryTerm(),
		Source:      d.Source(),
	}
}

func fromInternalWrite(w *domdoc.WriteResult) WriteResult {
	return WriteResult{
		Index:       w.Index(),
		ID:          w.ID(),
		Version:     w.Version(),
		Result:      w.Result(),
		SeqNo:       w.SeqNo(),
		PrimaryTerm: w.PrimaryTerm(),
	}
}

func fromBatchResults(results []dombatch.Result) []BulkResult {
	out := make([]BulkResult, len(results))
	for i, r := range results {
		out[i] = BulkResult{
			ID:         r.ID(),
			OK:         r.Status() == dombatch.StatusOK,
			Result:     r.Result(),
			HTTPStatus: r.HTTPStatus(),
			Err:        r.Err(),
		}
	}
	return out
}

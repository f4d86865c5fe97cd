package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/searchgate/internal/db"
	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	"github.com/kailas-cloud/searchgate/internal/repository/upstream"
)

// store is the consumer interface for documents (ISP).
type store interface {
	IndexDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error)
	GetDocument(ctx context.Context, index, id string) ([]byte, error)
	UpdateDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error)
	DeleteDocument(ctx context.Context, index, id, refresh string) ([]byte, error)
	Bulk(ctx context.Context, index string, items []db.BulkItem, refresh string) ([]db.BulkItemResult, error)
}

// Repo implements usecase/document.Repository and usecase/batch.Repository.
type Repo struct {
	store store
}

// New creates a document repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Create indexes doc. An empty doc ID lets the cluster generate one.
func (r *Repo) Create(ctx context.Context, doc *domdoc.Document, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
	raw, err := r.store.IndexDocument(ctx, doc.Index(), doc.ID(), doc.Source(), string(refresh))
	if err != nil {
		return domdoc.WriteResult{}, upstream.Wrap(err)
	}
	return decodeWrite(raw)
}

// Get returns a document by ID.
func (r *Repo) Get(ctx context.Context, index, id string) (domdoc.Document, error) {
	raw, err := r.store.GetDocument(ctx, index, id)
	if err != nil {
		return domdoc.Document{}, upstream.Wrap(err)
	}
	var d getDTO
	if err := json.Unmarshal(raw, &d); err != nil {
		return domdoc.Document{}, fmt.Errorf("decode document: %w", err)
	}
	return domdoc.Reconstruct(d.Index, d.ID, d.Version, d.SeqNo, d.PrimaryTerm, d.Found, d.Source), nil
}

// Update applies partial as a {"doc": ...} merge.
func (r *Repo) Update(
	ctx context.Context, index, id string, partial json.RawMessage, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	body, err := json.Marshal(updateDTO{Doc: partial})
	if err != nil {
		return domdoc.WriteResult{}, fmt.Errorf("marshal update: %w", err)
	}
	raw, err := r.store.UpdateDocument(ctx, index, id, body, string(refresh))
	if err != nil {
		return domdoc.WriteResult{}, upstream.Wrap(err)
	}
	return decodeWrite(raw)
}

// Delete removes a document.
func (r *Repo) Delete(ctx context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
	raw, err := r.store.DeleteDocument(ctx, index, id, string(refresh))
	if err != nil {
		return domdoc.WriteResult{}, upstream.Wrap(err)
	}
	return decodeWrite(raw)
}

// Bulk indexes items in one round trip. Results follow input order.
func (r *Repo) Bulk(
	ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh,
) ([]dombatch.Result, error) {
	req := make([]db.BulkItem, len(items))
	for i, it := range items {
		req[i] = db.BulkItem{Action: db.ActionIndex, ID: it.ID(), Body: it.Source()}
	}

	res, err := r.store.Bulk(ctx, index, req, string(refresh))
	if err != nil {
		return nil, upstream.Wrap(err)
	}

	out := make([]dombatch.Result, len(res))
	for i, br := range res {
		if br.Err != nil {
			status := br.Status
			var se *db.StatusError
			if errors.As(br.Err, &se) {
				status = se.StatusCode
			}
			out[i] = dombatch.NewError(br.ID, status, upstream.Wrap(br.Err))
			continue
		}
		out[i] = dombatch.NewOK(br.ID, br.Result, br.Status)
	}
	return out, nil
}

func decodeWrite(raw []byte) (domdoc.WriteResult, error) {
	var d writeDTO
	if err := json.Unmarshal(raw, &d); err != nil {
		return domdoc.WriteResult{}, fmt.Errorf("decode write result: %w", err)
	}
	return domdoc.NewWriteResult(d.Index, d.ID, d.Version, d.Result, d.SeqNo, d.PrimaryTerm), nil
}

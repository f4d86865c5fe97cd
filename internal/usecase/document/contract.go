package document

import (
	"context"
	"encoding/json"

	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
)

// Repository defines the storage contract for single documents.
type Repository interface {
	Create(ctx context.Context, doc *domdoc.Document, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	Get(ctx context.Context, index, id string) (domdoc.Document, error)
	Update(ctx context.Context, index, id string, partial json.RawMessage, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	Delete(ctx context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error)
}

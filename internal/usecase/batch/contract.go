package batch

import (
	"context"

	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
)

// BulkIndexer indexes many documents in one round trip.
type BulkIndexer interface {
	Bulk(ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh) ([]dombatch.Result, error)
}

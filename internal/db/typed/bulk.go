package typed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/opensearch-project/opensearch-go/v2/opensearchutil"

	"github.com/kailas-cloud/searchgate/internal/db"
)

var errNoResponse = errors.New("no response for item")

// Bulk streams items through a short-lived BulkIndexer bound to index.
// Results are written by position from the indexer callbacks, so input order is kept.
func (s *Store) Bulk(ctx context.Context, index string, items []db.BulkItem, refresh string) ([]db.BulkItemResult, error) {
	results := make([]db.BulkItemResult, len(items))
	for i, it := range items {
		results[i] = db.BulkItemResult{ID: it.ID, Err: &db.Error{Op: db.OpBulk, Err: errNoResponse}}
	}
	if len(items) == 0 {
		return results, nil
	}

	var (
		mu       sync.Mutex
		flushErr error
	)
	bi, err := opensearchutil.NewBulkIndexer(opensearchutil.BulkIndexerConfig{
		Client:        s.client,
		Index:         url.PathEscape(index),
		NumWorkers:    s.cfg.Workers,
		FlushBytes:    s.cfg.FlushBytes,
		FlushInterval: s.cfg.FlushInterval,
		Refresh:       refresh,
		OnError: func(_ context.Context, err error) {
			mu.Lock()
			flushErr = err
			mu.Unlock()
		},
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("create bulk indexer: %w", err)}
	}

	for i, it := range items {
		pos := i
		item := opensearchutil.BulkIndexerItem{
			Action:     it.Action,
			DocumentID: it.ID,
			OnSuccess: func(_ context.Context, _ opensearchutil.BulkIndexerItem, res opensearchutil.BulkIndexerResponseItem) {
				id := res.DocumentID
				if id == "" {
					id = items[pos].ID
				}
				results[pos] = db.BulkItemResult{
					ID:      id,
					Status:  res.Status,
					Result:  res.Result,
					Version: res.Version,
				}
			},
			OnFailure: func(_ context.Context, _ opensearchutil.BulkIndexerItem, res opensearchutil.BulkIndexerResponseItem, err error) {
				results[pos] = failedItem(items[pos].ID, res, err)
			},
		}
		if item.Action == "" {
			item.Action = db.ActionIndex
		}
		if item.Action != db.ActionDelete {
			item.Body = bytes.NewReader(it.Body)
		}
		if err := bi.Add(ctx, item); err != nil {
			for j := pos; j < len(items); j++ {
				results[j].Err = &db.Error{Op: db.OpBulk, Err: err}
			}
			break
		}
	}

	if err := bi.Close(ctx); err != nil {
		return results, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("close bulk indexer: %w", err)}
	}

	// Items a failed flush never reported on share the flush error.
	if flushErr != nil {
		for i := range results {
			if errors.Is(results[i].Err, errNoResponse) {
				results[i].Err = &db.Error{Op: db.OpBulk, Err: flushErr}
			}
		}
	}
	return results, nil
}

func failedItem(id string, res opensearchutil.BulkIndexerResponseItem, err error) db.BulkItemResult {
	if res.DocumentID != "" {
		id = res.DocumentID
	}
	if err != nil {
		return db.BulkItemResult{ID: id, Err: &db.Error{Op: db.OpBulk, Err: err}}
	}
	return db.BulkItemResult{
		ID:     id,
		Status: res.Status,
		Result: res.Result,
		Err: &db.StatusError{
			Op:         db.OpBulk,
			StatusCode: res.Status,
			Type:       res.Error.Type,
			Reason:     res.Error.Reason,
		},
	}
}

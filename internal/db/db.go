package db

import (
	"context"
	"fmt"
	"time"
)

// Store is the OpenSearch facade combining all sub-interfaces.
// Every method returns the raw success body; non-2xx answers come back as *StatusError.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	ClusterReader
	IndexManager
	DocumentStore
	BulkWriter
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks cluster connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClusterReader reads cluster-level metadata.
type ClusterReader interface {
	Info(ctx context.Context) ([]byte, error)
	ClusterHealth(ctx context.Context) ([]byte, error)
}

// IndexManager provides index lifecycle operations.
type IndexManager interface {
	// CatIndices returns the _cat/indices records as a JSON array. Empty pattern lists all indices.
	CatIndices(ctx context.Context, pattern string) ([]byte, error)
	CreateIndex(ctx context.Context, name string, body []byte) ([]byte, error)
	DeleteIndex(ctx context.Context, name string) ([]byte, error)
	IndexExists(ctx context.Context, name string) (bool, error)
}

// DocumentStore provides single-document operations.
type DocumentStore interface {
	// IndexDocument stores body under id, or under a generated id when id is empty.
	IndexDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error)
	GetDocument(ctx context.Context, index, id string) ([]byte, error)
	// UpdateDocument sends body to the _update endpoint as is.
	UpdateDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error)
	DeleteDocument(ctx context.Context, index, id, refresh string) ([]byte, error)
}

// BulkWriter sends many documents in one round trip.
type BulkWriter interface {
	// Bulk returns one result per item in input order. The error is set only
	// when the request as a whole could not be performed.
	Bulk(ctx context.Context, index string, items []BulkItem, refresh string) ([]BulkItemResult, error)
}

// Searcher runs queries against an index.
type Searcher interface {
	Search(ctx context.Context, index string, body []byte) ([]byte, error)
	Count(ctx context.Context, index string) ([]byte, error)
}

// Bulk actions.
const (
	ActionIndex  = "index"
	ActionDelete = "delete"
)

// BulkItem is one line pair of a _bulk request.
type BulkItem struct {
	Action string // default ActionIndex
	ID     string // empty lets the cluster generate one
	Body   []byte
}

// BulkItemResult is the cluster's answer for one bulk item.
type BulkItemResult struct {
	ID      string
	Status  int
	Result  string
	Version int64
	Err     error // *StatusError for item-level rejections, transport error otherwise
}

// KeyValue is the cache backend used for read-through document caching.
type KeyValue interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Close()
}

// PollReady calls Ping every 100ms until it succeeds or timeout expires.
func PollReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := p.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

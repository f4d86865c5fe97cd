// Package typed implements db.Store on top of the opensearchapi request structs.
package typed

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kailas-cloud/searchgate/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config tunes the bulk indexer created for every Bulk call.
type Config struct {
	Workers       int
	FlushBytes    int
	FlushInterval time.Duration
}

// Store implements db.Store with typed opensearchapi requests.
type Store struct {
	client *opensearch.Client
	cfg    Config
}

// NewStore wraps a shared client. Zero Config values fall back to opensearchutil defaults.
func NewStore(client *opensearch.Client, cfg Config) *Store {
	return &Store{client: client, cfg: cfg}
}

// Ping sends HEAD /.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.do(ctx, db.OpPing, opensearchapi.PingRequest{})
	return err
}

// Close is a no-op: the shared client is owned by the caller.
func (s *Store) Close() {}

// WaitForReady polls Ping until the cluster responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return db.PollReady(ctx, s, timeout)
}

// Info sends GET /.
func (s *Store) Info(ctx context.Context) ([]byte, error) {
	return s.do(ctx, db.OpInfo, opensearchapi.InfoRequest{})
}

// ClusterHealth sends GET /_cluster/health.
func (s *Store) ClusterHealth(ctx context.Context) ([]byte, error) {
	return s.do(ctx, db.OpClusterHealth, opensearchapi.ClusterHealthRequest{})
}

// CatIndices sends GET /_cat/indices[/{pattern}]?format=json.
func (s *Store) CatIndices(ctx context.Context, pattern string) ([]byte, error) {
	req := opensearchapi.CatIndicesRequest{Format: "json"}
	if pattern != "" {
		req.Index = []string{url.PathEscape(pattern)}
	}
	return s.do(ctx, db.OpCatIndices, req)
}

// CreateIndex sends PUT /{index}.
func (s *Store) CreateIndex(ctx context.Context, name string, body []byte) ([]byte, error) {
	req := opensearchapi.IndicesCreateRequest{Index: url.PathEscape(name)}
	if len(body) > 0 {
		req.Body = bytes.NewReader(body)
	}
	return s.do(ctx, db.OpCreateIndex, req)
}

// DeleteIndex sends DELETE /{index}.
func (s *Store) DeleteIndex(ctx context.Context, name string) ([]byte, error) {
	return s.do(ctx, db.OpDeleteIndex, opensearchapi.IndicesDeleteRequest{Index: []string{url.PathEscape(name)}})
}

// IndexExists sends HEAD /{index}.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.do(ctx, db.OpIndexExists, opensearchapi.IndicesExistsRequest{Index: []string{url.PathEscape(name)}})
	if err == nil {
		return true, nil
	}
	if db.IsStatus(err, http.StatusNotFound) {
		return false, nil
	}
	return false, err
}

// IndexDocument sends PUT /{index}/_doc/{id}, or POST /{index}/_doc when id is empty.
func (s *Store) IndexDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error) {
	return s.do(ctx, db.OpIndex, opensearchapi.IndexRequest{
		Index:      url.PathEscape(index),
		DocumentID: url.PathEscape(id),
		Body:       bytes.NewReader(body),
		Refresh:    refresh,
	})
}

// GetDocument sends GET /{index}/_doc/{id}.
func (s *Store) GetDocument(ctx context.Context, index, id string) ([]byte, error) {
	return s.do(ctx, db.OpGet, opensearchapi.GetRequest{Index: url.PathEscape(index), DocumentID: url.PathEscape(id)})
}

// UpdateDocument sends POST /{index}/_update/{id}.
func (s *Store) UpdateDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error) {
	return s.do(ctx, db.OpUpdate, opensearchapi.UpdateRequest{
		Index:      url.PathEscape(index),
		DocumentID: url.PathEscape(id),
		Body:       bytes.NewReader(body),
		Refresh:    refresh,
	})
}

// DeleteDocument sends DELETE /{index}/_doc/{id}.
func (s *Store) DeleteDocument(ctx context.Context, index, id, refresh string) ([]byte, error) {
	return s.do(ctx, db.OpDelete, opensearchapi.DeleteRequest{
		Index:      url.PathEscape(index),
		DocumentID: url.PathEscape(id),
		Refresh:    refresh,
	})
}

// Search sends the query DSL body to /{index}/_search.
func (s *Store) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	return s.do(ctx, db.OpSearch, opensearchapi.SearchRequest{
		Index: []string{url.PathEscape(index)},
		Body:  bytes.NewReader(body),
	})
}

// Count asks /{index}/_count for the number of documents.
func (s *Store) Count(ctx context.Context, index string) ([]byte, error) {
	return s.do(ctx, db.OpCount, opensearchapi.CountRequest{Index: []string{url.PathEscape(index)}})
}

// The request structs concatenate path parts verbatim, so every caller-supplied
// index name and id is escaped before it goes into a struct.
func (s *Store) do(ctx context.Context, op string, req opensearchapi.Request) ([]byte, error) {
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	if res.Body != nil {
		defer res.Body.Close() //nolint:errcheck // body fully drained by ReadBody
	}
	return db.ReadBody(op, res.StatusCode, res.Body)
}

// Package raw implements db.Store with hand-built requests sent through Client.Perform.
package raw

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/kailas-cloud/searchgate/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	contentTypeJSON   = "application/json"
	contentTypeNDJSON = "application/x-ndjson"
)

// Store implements db.Store over the low-level transport.
type Store struct {
	client *opensearch.Client
}

// NewStore wraps a shared client.
func NewStore(client *opensearch.Client) *Store {
	return &Store{client: client}
}

// Ping sends HEAD /.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.do(ctx, db.OpPing, http.MethodHead, "/", nil, nil, "")
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
	return s.do(ctx, db.OpInfo, http.MethodGet, "/", nil, nil, "")
}

// ClusterHealth sends GET /_cluster/health.
func (s *Store) ClusterHealth(ctx context.Context) ([]byte, error) {
	return s.do(ctx, db.OpClusterHealth, http.MethodGet, "/_cluster/health", nil, nil, "")
}

// CatIndices sends GET /_cat/indices[/{pattern}]?format=json.
func (s *Store) CatIndices(ctx context.Context, pattern string) ([]byte, error) {
	p := "/_cat/indices"
	if pattern != "" {
		p += "/" + url.PathEscape(pattern)
	}
	return s.do(ctx, db.OpCatIndices, http.MethodGet, p, url.Values{"format": {"json"}}, nil, "")
}

// CreateIndex sends PUT /{index}.
func (s *Store) CreateIndex(ctx context.Context, name string, body []byte) ([]byte, error) {
	return s.do(ctx, db.OpCreateIndex, http.MethodPut, segments(name), nil, body, contentTypeJSON)
}

// DeleteIndex sends DELETE /{index}.
func (s *Store) DeleteIndex(ctx context.Context, name string) ([]byte, error) {
	return s.do(ctx, db.OpDeleteIndex, http.MethodDelete, segments(name), nil, nil, "")
}

// IndexExists sends HEAD /{index}.
func (s *Store) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.do(ctx, db.OpIndexExists, http.MethodHead, segments(name), nil, nil, "")
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
	method, p := http.MethodPost, segments(index, "_doc")
	if id != "" {
		method, p = http.MethodPut, segments(index, "_doc", id)
	}
	return s.do(ctx, db.OpIndex, method, p, refreshQuery(refresh), body, contentTypeJSON)
}

// GetDocument sends GET /{index}/_doc/{id}.
func (s *Store) GetDocument(ctx context.Context, index, id string) ([]byte, error) {
	return s.do(ctx, db.OpGet, http.MethodGet, segments(index, "_doc", id), nil, nil, "")
}

// UpdateDocument sends POST /{index}/_update/{id}.
func (s *Store) UpdateDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error) {
	return s.do(ctx, db.OpUpdate, http.MethodPost, segments(index, "_update", id), refreshQuery(refresh), body, contentTypeJSON)
}

// DeleteDocument sends DELETE /{index}/_doc/{id}.
func (s *Store) DeleteDocument(ctx context.Context, index, id, refresh string) ([]byte, error) {
	return s.do(ctx, db.OpDelete, http.MethodDelete, segments(index, "_doc", id), refreshQuery(refresh), nil, "")
}

// Search sends POST /{index}/_search.
func (s *Store) Search(ctx context.Context, index string, body []byte) ([]byte, error) {
	return s.do(ctx, db.OpSearch, http.MethodPost, segments(index, "_search"), nil, body, contentTypeJSON)
}

// Count sends GET /{index}/_count.
func (s *Store) Count(ctx context.Context, index string) ([]byte, error) {
	return s.do(ctx, db.OpCount, http.MethodGet, segments(index, "_count"), nil, nil, "")
}

func (s *Store) do(
	ctx context.Context, op, method, path string, query url.Values, body []byte, contentType string,
) ([]byte, error) {
	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var rd io.Reader = http.NoBody
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, &db.Error{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	if contentType != "" && body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := s.client.Perform(req)
	if err != nil {
		return nil, &db.Error{Op: op, Err: err}
	}
	if res.Body != nil {
		defer res.Body.Close() //nolint:errcheck // body fully drained by ReadBody
	}
	return db.ReadBody(op, res.StatusCode, res.Body)
}

// segments joins path parts, escaping each one so ids with slashes stay a single segment.
func segments(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}

func refreshQuery(refresh string) url.Values {
	if refresh == "" {
		return nil
	}
	return url.Values{"refresh": {refresh}}
}

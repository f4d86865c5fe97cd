package request

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Search size limits.
const (
	DefaultSize = 10
	MaxSize     = 1000
)

var matchAll = json.RawMessage(`{"match_all":{}}`)

// Limits bounds the page size. Zero fields fall back to DefaultSize and MaxSize.
type Limits struct {
	DefaultSize int
	MaxSize     int
}

// Request is a validated search query.
type Request struct {
	query json.RawMessage
	from  int
	size  int
}

// New validates and normalizes search parameters.
// An empty query becomes match_all; size is defaulted and clamped to the limits.
func New(query []byte, from, size int, lim Limits) (Request, error) {
	if lim.DefaultSize <= 0 {
		lim.DefaultSize = DefaultSize
	}
	if lim.MaxSize <= 0 {
		lim.MaxSize = MaxSize
	}

	q := matchAll
	if trimmed := bytes.TrimSpace(query); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if trimmed[0] != '{' {
			return Request{}, errors.New("query must be a JSON object")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return Request{}, fmt.Errorf("query is not valid JSON: %w", err)
		}
		q = buf.Bytes()
	}

	if from < 0 {
		return Request{}, errors.New("from must not be negative")
	}
	if size < 0 {
		return Request{}, errors.New("size must not be negative")
	}
	if size == 0 {
		size = lim.DefaultSize
	}
	if size > lim.MaxSize {
		size = lim.MaxSize
	}

	return Request{query: q, from: from, size: size}, nil
}

// Query returns the query DSL clause.
func (r *Request) Query() json.RawMessage { return r.query }

// From returns the hit offset.
func (r *Request) From() int { return r.from }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

package batch

import (
	"encoding/json"

	"github.com/kailas-cloud/searchgate/internal/domain/document"
)

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Item is one document of a bulk request. An empty id lets the cluster generate one.
type Item struct {
	id     string
	source json.RawMessage
}

// NewItem validates and normalizes a bulk item.
func NewItem(id string, source []byte) (Item, error) {
	if id != "" {
		if err := document.ValidateID(id); err != nil {
			return Item{}, err
		}
	}
	src, err := document.NormalizeSource(source)
	if err != nil {
		return Item{}, err
	}
	return Item{id: id, source: src}, nil
}

// ID returns the caller-supplied id, possibly empty.
func (i Item) ID() string { return i.id }

// Source returns the compacted JSON source.
func (i Item) Source() json.RawMessage { return i.source }

// Result is the outcome of processing one item in a batch operation.
type Result struct {
	id         string
	status     ItemStatus
	httpStatus int
	result     string
	err        error
}

// NewOK creates a successful batch result.
func NewOK(id, result string, httpStatus int) Result {
	return Result{id: id, status: StatusOK, result: result, httpStatus: httpStatus}
}

// NewError creates a failed batch result. httpStatus is 0 when the cluster never answered.
func NewError(id string, httpStatus int, err error) Result {
	return Result{id: id, status: StatusError, httpStatus: httpStatus, err: err}
}

// ID returns the item identifier.
func (r Result) ID() string { return r.id }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// HTTPStatus returns the per-item status reported by the cluster.
func (r Result) HTTPStatus() int { return r.httpStatus }

// Result returns the write outcome, e.g. "created".
func (r Result) Result() string { return r.result }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

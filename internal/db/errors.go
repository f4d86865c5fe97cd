package db

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Sentinel errors for key-value cache operations.
var (
	ErrKeyNotFound = errors.New("db: key not found")
)

// Op constants name OpenSearch REST APIs and cache commands for error context.
const (
	OpPing          = "ping"
	OpInfo          = "info"
	OpClusterHealth = "cluster.health"
	OpCatIndices    = "cat.indices"
	OpCreateIndex   = "indices.create"
	OpDeleteIndex   = "indices.delete"
	OpIndexExists   = "indices.exists"
	OpIndex         = "index"
	OpGet           = "get"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpBulk          = "bulk"
	OpSearch        = "search"
	OpCount         = "count"

	OpCacheGet = "GET"
	OpCacheSet = "SET"
	OpCacheDel = "DEL"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// maxErrorBody caps how much of a failed response is kept for diagnostics.
const maxErrorBody = 64 << 10

// StatusError is a non-2xx answer from the cluster.
type StatusError struct {
	Op         string
	StatusCode int
	Type       string // error.type, e.g. index_not_found_exception
	Reason     string // error.reason
	Body       []byte // raw response body, truncated
}

func (e *StatusError) Error() string {
	msg := e.Op + ": status " + strconv.Itoa(e.StatusCode)
	switch {
	case e.Type != "" && e.Reason != "":
		return msg + ": " + e.Type + ": " + e.Reason
	case e.Reason != "":
		return msg + ": " + e.Reason
	case e.Type != "":
		return msg + ": " + e.Type
	case len(e.Body) > 0:
		return msg + ": " + string(e.Body)
	default:
		return msg + ": " + http.StatusText(e.StatusCode)
	}
}

// errorEnvelope covers both {"error":{...}} and {"error":"..."} shapes.
type errorEnvelope struct {
	Error json.RawMessage `json:"error"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// NewStatusError builds a StatusError, extracting error.type and error.reason when the body carries them.
func NewStatusError(op string, status int, body []byte) *StatusError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	e := &StatusError{Op: op, StatusCode: status, Body: body}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 {
		return e
	}

	var cause errorCause
	if err := json.Unmarshal(env.Error, &cause); err == nil {
		e.Type, e.Reason = cause.Type, cause.Reason
		return e
	}
	var reason string
	if err := json.Unmarshal(env.Error, &reason); err == nil {
		e.Reason = reason
	}
	return e
}

// ReadBody drains a response body and turns non-2xx statuses into *StatusError.
func ReadBody(op string, status int, body io.Reader) ([]byte, error) {
	if body == nil {
		if status > 299 {
			return nil, NewStatusError(op, status, nil)
		}
		return nil, nil
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &Error{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}
	if status > 299 {
		return nil, NewStatusError(op, status, data)
	}
	return data, nil
}

// IsStatus reports whether err carries a *StatusError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == status
}

package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrIndexNotFound signals a missing index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrIndexAlreadyExists signals a duplicate index.
	ErrIndexAlreadyExists = errors.New("index already exists")
	// ErrVersionConflict signals a concurrent write to the same document.
	ErrVersionConflict = errors.New("version conflict")
	// ErrInvalidRequest signals a request the cluster or the gateway rejected as malformed.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUpstream signals any other non-2xx cluster answer.
	ErrUpstream = errors.New("upstream error")
	// ErrUnavailable signals that the cluster could not be reached.
	ErrUnavailable = errors.New("upstream unavailable")
)

// Cluster error types that select a specific sentinel.
const (
	TypeIndexNotFound      = "index_not_found_exception"
	TypeResourceExists     = "resource_already_exists_exception"
	TypeVersionConflict    = "version_conflict_engine_exception"
	TypeMapperParsing      = "mapper_parsing_exception"
	TypeIllegalArgument    = "illegal_argument_exception"
	TypeSearchPhaseFailure = "search_phase_execution_exception"
)

// UpstreamError is a failed cluster call. StatusCode is 0 when no response arrived.
type UpstreamError struct {
	Op         string
	StatusCode int
	Type       string
	Reason     string
	Body       []byte

	kind  error
	cause error
}

// NewUpstreamError classifies a non-2xx cluster answer.
func NewUpstreamError(op string, status int, typ, reason string, body []byte) *UpstreamError {
	return &UpstreamError{
		Op:         op,
		StatusCode: status,
		Type:       typ,
		Reason:     reason,
		Body:       body,
		kind:       classify(status, typ),
	}
}

// NewUnavailable wraps a transport failure.
func NewUnavailable(op string, cause error) *UpstreamError {
	return &UpstreamError{Op: op, kind: ErrUnavailable, cause: cause}
}

func classify(status int, typ string) error {
	switch {
	case typ == TypeIndexNotFound:
		return ErrIndexNotFound
	case typ == TypeResourceExists:
		return ErrIndexAlreadyExists
	case status == http.StatusNotFound:
		return ErrDocumentNotFound
	case status == http.StatusConflict:
		return ErrVersionConflict
	case status == http.StatusBadRequest:
		return ErrInvalidRequest
	case status == 0:
		return ErrUnavailable
	default:
		return ErrUpstream
	}
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		if e.cause != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.kind, e.cause)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.kind)
	}
	msg := fmt.Sprintf("%s: upstream status %d", e.Op, e.StatusCode)
	if e.Type != "" {
		msg += ": " + e.Type
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap exposes both the sentinel and the transport cause to errors.Is.
func (e *UpstreamError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Message is the cluster's "type: reason", falling back to a non-JSON body, then to the sentinel text.
func (e *UpstreamError) Message() string {
	switch {
	case e.Type != "" && e.Reason != "":
		return e.Type + ": " + e.Reason
	case e.Reason != "":
		return e.Reason
	case e.Type != "":
		return e.Type
	}
	if b := bytes.TrimSpace(e.Body); len(b) > 0 && !json.Valid(b) {
		return string(b)
	}
	return e.kind.Error()
}

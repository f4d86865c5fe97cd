package searchgate

import "github.com/kailas-cloud/searchgate/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrIndexNotFound      = domain.ErrIndexNotFound
	ErrDocumentNotFound   = domain.ErrDocumentNotFound
	ErrIndexAlreadyExists = domain.ErrIndexAlreadyExists
	ErrVersionConflict    = domain.ErrVersionConflict
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrUpstream           = domain.ErrUpstream
	ErrUnavailable        = domain.ErrUnavailable
)

// UpstreamError carries the cluster's status, error type and body.
// Use errors.As() to inspect it.
type UpstreamError = domain.UpstreamError

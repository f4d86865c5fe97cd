package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/domain"
	"github.com/kailas-cloud/searchgate/internal/logger"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

func defaultErrorHandlers() []errorHandler {
	return []errorHandler{
		upstreamHandler,
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
	}
}

// upstreamHandler relays a cluster failure with the cluster's own status.
// Failures without a status (connection refused, timeout) become 500.
func upstreamHandler(w http.ResponseWriter, err error) bool {
	var ue *domain.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.StatusCode == 0 {
		writeError(w, http.StatusInternalServerError, ErrorResponseCodeUpstreamUnavailable, ue.Message())
		return true
	}
	resp := ErrorResponse{Code: upstreamCode(err), Message: ue.Message()}
	if json.Valid(ue.Body) {
		resp.Upstream = ue.Body
	}
	writeJSON(w, ue.StatusCode, resp)
	return true
}

func upstreamCode(err error) ErrorResponseCode {
	switch {
	case errors.Is(err, domain.ErrIndexNotFound):
		return ErrorResponseCodeIndexNotFound
	case errors.Is(err, domain.ErrDocumentNotFound):
		return ErrorResponseCodeDocumentNotFound
	case errors.Is(err, domain.ErrIndexAlreadyExists):
		return ErrorResponseCodeIndexAlreadyExists
	case errors.Is(err, domain.ErrVersionConflict):
		return ErrorResponseCodeVersionConflict
	case errors.Is(err, domain.ErrInvalidRequest):
		return ErrorResponseCodeBadRequest
	case errors.Is(err, domain.ErrUnavailable):
		return ErrorResponseCodeUpstreamUnavailable
	default:
		return ErrorResponseCodeUpstreamError
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

// bulkItemError renders a failed bulk item the way a single call would have failed.
func bulkItemError(err error) *ErrorResponse {
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		resp := &ErrorResponse{Code: upstreamCode(err), Message: ue.Message()}
		if ue.StatusCode == 0 {
			resp.Code = ErrorResponseCodeUpstreamUnavailable
		}
		return resp
	}
	return &ErrorResponse{Code: ErrorResponseCodeInternalError, Message: "internal error"}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// ParamErrorHandler answers parameter binding failures.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, err.Error())
}

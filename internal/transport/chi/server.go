package chi

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	batchuc "github.com/kailas-cloud/searchgate/internal/usecase/batch"
	clusteruc "github.com/kailas-cloud/searchgate/internal/usecase/cluster"
	documentuc "github.com/kailas-cloud/searchgate/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	indexuc "github.com/kailas-cloud/searchgate/internal/usecase/index"
	searchuc "github.com/kailas-cloud/searchgate/internal/usecase/search"
)

// Services bundles the use cases behind the HTTP API.
type Services struct {
	Cluster   *clusteruc.Service
	Indices   *indexuc.Service
	Documents *documentuc.Service
	Batch     *batchuc.Service
	Search    *searchuc.Service
	Health    *healthuc.Service
}

// Server implements ServerInterface.
type Server struct {
	svc           Services
	errorHandlers []errorHandler
	metrics       http.Handler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(svc Services) *Server {
	return &Server{
		svc:           svc,
		errorHandlers: defaultErrorHandlers(),
		metrics:       promhttp.Handler(),
	}
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.svc.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, HealthResponse{Status: string(report.Status), Checks: checks})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	s.metrics.ServeHTTP(w, r)
}

// GetInfo handles GET /api/v1/info. The cluster's root document is relayed as is.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.svc.Cluster.Info(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if len(info.Raw) > 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(info.Raw)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// GetClusterHealth handles GET /api/v1/cluster/health.
func (s *Server) GetClusterHealth(w http.ResponseWriter, r *http.Request) {
	h, err := s.svc.Cluster.Health(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clusterHealthToResponse(h))
}

// ListIndices handles GET /api/v1/indices.
func (s *Server) ListIndices(w http.ResponseWriter, r *http.Request, params ListIndicesParams) {
	pattern := ""
	if params.Pattern != nil {
		pattern = *params.Pattern
	}
	list, err := s.svc.Indices.List(r.Context(), pattern)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	items := make([]IndexResponse, len(list))
	for i, info := range list {
		items[i] = indexToResponse(info)
	}
	writeJSON(w, http.StatusOK, IndexListResponse{Items: items})
}

// CreateIndex handles PUT /api/v1/indices/{index}.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request, index IndexName) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.svc.Indices.Create(r.Context(), index, body); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/v1/indices/"+url.PathEscape(index))
	writeJSON(w, http.StatusCreated, AcknowledgedResponse{Acknowledged: true, Index: index})
}

// DeleteIndex handles DELETE /api/v1/indices/{index}.
func (s *Server) DeleteIndex(w http.ResponseWriter, r *http.Request, index IndexName) {
	if err := s.svc.Indices.Delete(r.Context(), index); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AcknowledgedResponse{Acknowledged: true, Index: index})
}

// IndexExists handles HEAD /api/v1/indices/{index}: 200 when present, 404 otherwise.
func (s *Server) IndexExists(w http.ResponseWriter, r *http.Request, index IndexName) {
	ok, err := s.svc.Indices.Exists(r.Context(), index)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// CreateDocument handles POST /api/v1/indices/{index}/documents.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request, index IndexName, params CreateDocumentParams) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	id := ""
	if params.ID != nil {
		id = *params.ID
	}

	res, err := s.svc.Documents.Create(r.Context(), index, id, body, refreshParam(params.Refresh))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/indices/%s/documents/%s",
		url.PathEscape(res.Index()), url.PathEscape(res.ID())))
	writeJSON(w, http.StatusCreated, writeResultToResponse(&res))
}

// GetDocument handles GET /api/v1/indices/{index}/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, index IndexName, id DocumentID) {
	doc, err := s.svc.Documents.Get(r.Context(), index, id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// UpdateDocument handles PUT /api/v1/indices/{index}/documents/{id}.
func (s *Server) UpdateDocument(
	w http.ResponseWriter, r *http.Request, index IndexName, id DocumentID, params WriteParams,
) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	res, err := s.svc.Documents.Update(r.Context(), index, id, body, refreshParam(params.Refresh))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, writeResultToResponse(&res))
}

// DeleteDocument handles DELETE /api/v1/indices/{index}/documents/{id}.
func (s *Server) DeleteDocument(
	w http.ResponseWriter, r *http.Request, index IndexName, id DocumentID, params WriteParams,
) {
	res, err := s.svc.Documents.Delete(r.Context(), index, id, refreshParam(params.Refresh))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, writeResultToResponse(&res))
}

// BulkIndex handles POST /api/v1/indices/{index}/documents/bulk.
func (s *Server) BulkIndex(w http.ResponseWriter, r *http.Request, index IndexName, params WriteParams) {
	var req BulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, validationMessage(err))
		return
	}
	if limit := s.svc.Batch.MaxBatchSize(); len(req.Documents) > limit {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed,
			fmt.Sprintf("documents count must be between 1 and %d", limit))
		return
	}

	items, err := bulkItemsFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	results, err := s.svc.Batch.Index(r.Context(), index, items, refreshParam(params.Refresh))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := BulkResponse{Items: make([]BulkResultItem, len(results))}
	for i, res := range results {
		item := BulkResultItem{
			ID:     res.ID(),
			Status: string(res.Status()),
			Result: res.Result(),
			HTTP:   res.HTTPStatus(),
		}
		if res.Status() == dombatch.StatusOK {
			resp.Succeeded++
		} else {
			resp.Failed++
			item.Error = bulkItemError(res.Err())
		}
		resp.Items[i] = item
	}
	writeJSON(w, http.StatusOK, resp)
}

// SearchDocuments handles POST /api/v1/indices/{index}/search.
func (s *Server) SearchDocuments(w http.ResponseWriter, r *http.Request, index IndexName) {
	var req SearchRequest
	body, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(body) > 0 {
		if err := decodeBytes(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, validationMessage(err))
		return
	}

	res, err := s.svc.Search.Search(r.Context(), index, req.Query, req.From, req.Size)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResultToResponse(&res))
}

// CountDocuments handles GET /api/v1/indices/{index}/count.
func (s *Server) CountDocuments(w http.ResponseWriter, r *http.Request, index IndexName) {
	n, err := s.svc.Search.Count(r.Context(), index)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: n})
}

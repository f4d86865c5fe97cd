package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
)

// maxBodyBytes caps request bodies; bulk payloads are the largest.
const maxBodyBytes = 32 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponseCode is a machine-readable error code.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest          ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed    ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized        ErrorResponseCode = "unauthorized"
	ErrorResponseCodeIndexNotFound       ErrorResponseCode = "index_not_found"
	ErrorResponseCodeDocumentNotFound    ErrorResponseCode = "document_not_found"
	ErrorResponseCodeIndexAlreadyExists  ErrorResponseCode = "index_already_exists"
	ErrorResponseCodeVersionConflict     ErrorResponseCode = "version_conflict"
	ErrorResponseCodeUpstreamError       ErrorResponseCode = "upstream_error"
	ErrorResponseCodeUpstreamUnavailable ErrorResponseCode = "upstream_unavailable"
	ErrorResponseCodeInternalError       ErrorResponseCode = "internal_error"
)

// ErrorResponse is the error body. Upstream holds the cluster's JSON error when there was one.
type ErrorResponse struct {
	Code     ErrorResponseCode `json:"code"`
	Message  string            `json:"message"`
	Upstream json.RawMessage   `json:"upstream,omitempty"`
}

// --- Requests ---

// BulkRequest is the body of POST .../documents/bulk.
type BulkRequest struct {
	Documents []BulkDocument `json:"documents" validate:"required,min=1,dive"`
}

// BulkDocument is one bulk item. An empty id lets the cluster generate one.
type BulkDocument struct {
	ID     string          `json:"id,omitempty" validate:"max=512"`
	Source json.RawMessage `json:"source" validate:"required"`
}

// SearchRequest is the body of POST .../search.
type SearchRequest struct {
	Query json.RawMessage `json:"query,omitempty"`
	From  int             `json:"from" validate:"min=0"`
	Size  int             `json:"size" validate:"min=0"`
}

// --- Responses ---

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ClusterHealthResponse is the body of GET /api/v1/cluster/health.
type ClusterHealthResponse struct {
	ClusterName         string `json:"cluster_name"`
	Status              string `json:"status"`
	TimedOut            bool   `json:"timed_out"`
	NumberOfNodes       int    `json:"number_of_nodes"`
	NumberOfDataNodes   int    `json:"number_of_data_nodes"`
	ActivePrimaryShards int    `json:"active_primary_shards"`
	ActiveShards        int    `json:"active_shards"`
	RelocatingShards    int    `json:"relocating_shards"`
	InitializingShards  int    `json:"initializing_shards"`
	UnassignedShards    int    `json:"unassigned_shards"`
}

// IndexResponse is one entry of GET /api/v1/indices.
type IndexResponse struct {
	Health           string `json:"health"`
	Status           string `json:"status"`
	Name             string `json:"index"`
	UUID             string `json:"uuid"`
	Primaries        int    `json:"primaries"`
	Replicas         int    `json:"replicas"`
	DocsCount        int64  `json:"docs_count"`
	DocsDeleted      int64  `json:"docs_deleted"`
	StoreSize        string `json:"store_size"`
	PrimaryStoreSize string `json:"primary_store_size"`
}

// IndexListResponse wraps the index list.
type IndexListResponse struct {
	Items []IndexResponse `json:"items"`
}

// AcknowledgedResponse confirms an index lifecycle call.
type AcknowledgedResponse struct {
	Acknowledged bool   `json:"acknowledged"`
	Index        string `json:"index"`
}

// DocumentResponse is the body of GET .../documents/{id}.
type DocumentResponse struct {
	Index       string          `json:"index"`
	ID          string          `json:"id"`
	Version     int64           `json:"version"`
	SeqNo       int64           `json:"seq_no"`
	PrimaryTerm int64           `json:"primary_term"`
	Source      json.RawMessage `json:"source"`
}

// WriteResponse acknowledges a single-document write.
type WriteResponse struct {
	Index       string `json:"index"`
	ID          string `json:"id"`
	Version     int64  `json:"version"`
	Result      string `json:"result"`
	SeqNo       int64  `json:"seq_no"`
	PrimaryTerm int64  `json:"primary_term"`
}

// BulkResultItem is the outcome of one bulk item.
type BulkResultItem struct {
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status"`
	Result string         `json:"result,omitempty"`
	HTTP   int            `json:"http_status,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// BulkResponse is the body of POST .../documents/bulk.
type BulkResponse struct {
	Items     []BulkResultItem `json:"items"`
	Succeeded int              `json:"succeeded"`
	Failed    int              `json:"failed"`
}

// SearchHit is one search hit.
type SearchHit struct {
	Index  string          `json:"index"`
	ID     string          `json:"id"`
	Score  float64         `json:"score"`
	Source json.RawMessage `json:"source"`
}

// SearchResponse is the body of POST .../search.
type SearchResponse struct {
	Total    int64       `json:"total"`
	Relation string      `json:"relation"`
	MaxScore float64     `json:"max_score"`
	TookMS   int64       `json:"took_ms"`
	Hits     []SearchHit `json:"hits"`
}

// CountResponse is the body of GET .../count.
type CountResponse struct {
	Count int64 `json:"count"`
}

// --- Decoding ---

// readBody reads a capped request body.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}
	return body, nil
}

// decodeJSON decodes a JSON body into dst.
func decodeJSON(r *http.Request, dst any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	return decodeBytes(body, dst)
}

func decodeBytes(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func refreshParam(p *string) domdoc.Refresh {
	if p == nil {
		return domdoc.RefreshDefault
	}
	return domdoc.Refresh(*p)
}

// --- Converters ---

func clusterHealthToResponse(h domcluster.Health) ClusterHealthResponse {
	return ClusterHealthResponse{
		ClusterName:         h.ClusterName,
		Status:              h.Status,
		TimedOut:            h.TimedOut,
		NumberOfNodes:       h.NumberOfNodes,
		NumberOfDataNodes:   h.NumberOfDataNodes,
		ActivePrimaryShards: h.ActivePrimaryShards,
		ActiveShards:        h.ActiveShards,
		RelocatingShards:    h.RelocatingShards,
		InitializingShards:  h.InitializingShards,
		UnassignedShards:    h.UnassignedShards,
	}
}

func indexToResponse(i domindex.Info) IndexResponse {
	return IndexResponse{
		Health:           i.Health,
		Status:           i.Status,
		Name:             i.Name,
		UUID:             i.UUID,
		Primaries:        i.Primaries,
		Replicas:         i.Replicas,
		DocsCount:        i.DocsCount,
		DocsDeleted:      i.DocsDeleted,
		StoreSize:        i.StoreSize,
		PrimaryStoreSize: i.PrimaryStoreSize,
	}
}

func documentToResponse(d *domdoc.Document) DocumentResponse {
	return DocumentResponse{
		Index:       d.Index(),
		ID:          d.ID(),
		Version:     d.Version(),
		SeqNo:       d.SeqNo(),
		PrimaryTerm: d.PrimaryTerm(),
		Source:      d.Source(),
	}
}

func writeResultToResponse(w *domdoc.WriteResult) WriteResponse {
	return WriteResponse{
		Index:       w.Index(),
		ID:          w.ID(),
		Version:     w.Version(),
		Result:      w.Result(),
		SeqNo:       w.SeqNo(),
		PrimaryTerm: w.PrimaryTerm(),
	}
}

func bulkItemsFromRequest(req BulkRequest) ([]dombatch.Item, error) {
	items := make([]dombatch.Item, 0, len(req.Documents))
	for i, d := range req.Documents {
		it, err := dombatch.NewItem(d.ID, d.Source)
		if err != nil {
			return nil, fmt.Errorf("documents[%d]: %w", i, err)
		}
		items = append(items, it)
	}
	return items, nil
}

func searchResultToResponse(res *result.Result) SearchResponse {
	hits := make([]SearchHit, 0, len(res.Hits()))
	for _, h := range res.Hits() {
		hits = append(hits, SearchHit{Index: h.Index(), ID: h.ID(), Score: h.Score(), Source: h.Source()})
	}
	return SearchResponse{
		Total:    res.Total(),
		Relation: res.Relation(),
		MaxScore: res.MaxScore(),
		TookMS:   res.TookMS(),
		Hits:     hits,
	}
}

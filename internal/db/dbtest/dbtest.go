// Package dbtest holds httpmock helpers shared by the driver tests (test-only).
package dbtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/opensearch-project/opensearch-go/v2"
)

// Addr is the cluster address the mock transport answers for.
const Addr = "http://localhost:9200"

// NewClient builds an OpenSearch client that sends every request to transport.
func NewClient(t testing.TB, transport http.RoundTripper) *opensearch.Client {
	t.Helper()
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:    []string{Addr},
		Transport:    transport,
		DisableRetry: true,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return client
}

// NewTransport returns a mock transport that fails the test on unregistered routes.
func NewTransport(t testing.TB) *httpmock.MockTransport {
	t.Helper()
	transport := httpmock.NewMockTransport()
	transport.RegisterNoResponder(func(req *http.Request) (*http.Response, error) {
		t.Errorf("unexpected request: %s %s", req.Method, req.URL.String())
		return httpmock.NewStringResponse(http.StatusNotFound, "no responder"), nil
	})
	return transport
}

// RejectMarker makes BulkResponder reject the document that contains it.
const RejectMarker = `"reject":true`

// BulkResponder answers _bulk requests item by item, the way the cluster does.
// Documents containing RejectMarker come back as 400 mapper_parsing_exception.
func BulkResponder() httpmock.Responder {
	return func(req *http.Request) (*http.Response, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, fmt.Errorf("read bulk body: %w", err)
		}
		index := strings.Split(strings.TrimPrefix(req.URL.Path, "/"), "/")[0]

		lines := bytes.Split(bytes.TrimSpace(body), []byte("\n"))
		items := make([]map[string]any, 0, len(lines)/2)
		hasErrors := false

		for i := 0; i < len(lines); i++ {
			var meta map[string]map[string]any
			if err := json.Unmarshal(lines[i], &meta); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":{"type":"parse_exception","reason":"bad action line"}}`), nil
			}
			for action, m := range meta {
				id, _ := m["_id"].(string)
				if id == "" {
					id = fmt.Sprintf("gen-%d", len(items))
				}
				var src []byte
				if action != "delete" && i+1 < len(lines) {
					i++
					src = lines[i]
				}

				res := map[string]any{"_index": index, "_id": id, "_version": 1, "result": "created", "status": http.StatusCreated}
				if action == "delete" {
					res["result"], res["status"] = "deleted", http.StatusOK
				}
				if bytes.Contains(src, []byte(RejectMarker)) {
					hasErrors = true
					res = map[string]any{
						"_index": index,
						"_id":    id,
						"status": http.StatusBadRequest,
						"error":  map[string]any{"type": "mapper_parsing_exception", "reason": "failed to parse"},
					}
				}
				items = append(items, map[string]any{action: res})
			}
		}

		return httpmock.NewJsonResponse(http.StatusOK, map[string]any{
			"took":   1,
			"errors": hasErrors,
			"items":  items,
		})
	}
}

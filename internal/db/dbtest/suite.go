package dbtest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/kailas-cloud/searchgate/internal/db"
)

// StoreFactory builds the driver under test on top of a mocked client.
type StoreFactory func(client *opensearch.Client) db.Store

const indexNotFound = `{"error":{"root_cause":[{"type":"index_not_found_exception","reason":"no such index [missing]"}],` +
	`"type":"index_not_found_exception","reason":"no such index [missing]","index":"missing"},"status":404}`

// RunStoreSuite checks that a driver speaks the REST protocol the same way as every other driver.
func RunStoreSuite(t *testing.T, newStore StoreFactory) {
	t.Helper()

	setup := func(t *testing.T) (*httpmock.MockTransport, db.Store) {
		transport := NewTransport(t)
		return transport, newStore(NewClient(t, transport))
	}
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodHead, Addr+"/", httpmock.NewStringResponder(http.StatusOK, ""))
		if err := s.Ping(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Ping_Unavailable", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodHead, Addr+"/", httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))
		if !db.IsStatus(s.Ping(ctx), http.StatusServiceUnavailable) {
			t.Fatal("expected 503 status error")
		}
	})

	t.Run("Ping_TransportError", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodHead, Addr+"/", httpmock.NewErrorResponder(errors.New("connection refused")))
		err := s.Ping(ctx)
		var dbErr *db.Error
		if !errors.As(err, &dbErr) || dbErr.Op != db.OpPing {
			t.Fatalf("expected *db.Error with op ping, got %v", err)
		}
	})

	t.Run("Info", func(t *testing.T) {
		tr, s := setup(t)
		body := `{"name":"node-1","cluster_name":"docker-cluster","version":{"number":"2.11.0","distribution":"opensearch"}}`
		tr.RegisterResponder(http.MethodGet, Addr+"/", httpmock.NewStringResponder(http.StatusOK, body))
		got, err := s.Info(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(got) != body {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("ClusterHealth", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodGet, Addr+"/_cluster/health",
			httpmock.NewStringResponder(http.StatusOK, `{"cluster_name":"docker-cluster","status":"green"}`))
		got, err := s.ClusterHealth(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"green"`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("CatIndices_All", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodGet, Addr+"/_cat/indices",
			func(req *http.Request) (*http.Response, error) {
				if req.URL.Query().Get("format") != "json" {
					return httpmock.NewStringResponse(http.StatusOK, "green open books"), nil
				}
				return httpmock.NewStringResponse(http.StatusOK, `[{"index":"books"},{"index":"films"}]`), nil
			})
		got, err := s.CatIndices(ctx, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var records []map[string]string
		if err := json.Unmarshal(got, &records); err != nil {
			t.Fatalf("expected json array, got %s", got)
		}
		if len(records) != 2 {
			t.Errorf("expected 2 records, got %d", len(records))
		}
	})

	t.Run("CatIndices_Pattern", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodGet, Addr+"/_cat/indices/books",
			httpmock.NewStringResponder(http.StatusOK, `[{"index":"books"}]`))
		if _, err := s.CatIndices(ctx, "books"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("CreateIndex", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPut, Addr+"/books",
			func(req *http.Request) (*http.Response, error) {
				var settings map[string]any
				if err := json.NewDecoder(req.Body).Decode(&settings); err != nil {
					return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"no body"}`), nil
				}
				return httpmock.NewStringResponse(http.StatusOK, `{"acknowledged":true,"index":"books"}`), nil
			})
		got, err := s.CreateIndex(ctx, "books", []byte(`{"settings":{"number_of_shards":1}}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"acknowledged":true`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("CreateIndex_AlreadyExists", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPut, Addr+"/books",
			httpmock.NewStringResponder(http.StatusBadRequest,
				`{"error":{"type":"resource_already_exists_exception","reason":"index [books] already exists"},"status":400}`))
		_, err := s.CreateIndex(ctx, "books", nil)
		var se *db.StatusError
		if !errors.As(err, &se) {
			t.Fatalf("expected *db.StatusError, got %v", err)
		}
		if se.Type != "resource_already_exists_exception" || se.StatusCode != http.StatusBadRequest {
			t.Errorf("got %+v", se)
		}
	})

	t.Run("DeleteIndex", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodDelete, Addr+"/books",
			httpmock.NewStringResponder(http.StatusOK, `{"acknowledged":true}`))
		if _, err := s.DeleteIndex(ctx, "books"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("IndexExists", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodHead, Addr+"/books", httpmock.NewStringResponder(http.StatusOK, ""))
		tr.RegisterResponder(http.MethodHead, Addr+"/missing", httpmock.NewStringResponder(http.StatusNotFound, ""))

		ok, err := s.IndexExists(ctx, "books")
		if err != nil || !ok {
			t.Fatalf("books: got %v, %v", ok, err)
		}
		ok, err = s.IndexExists(ctx, "missing")
		if err != nil || ok {
			t.Fatalf("missing: got %v, %v", ok, err)
		}
	})

	t.Run("IndexDocument_WithID", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPut, Addr+"/books/_doc/1",
			func(req *http.Request) (*http.Response, error) {
				if req.URL.Query().Get("refresh") != "wait_for" {
					return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"refresh not forwarded"}`), nil
				}
				return httpmock.NewStringResponse(http.StatusCreated,
					`{"_index":"books","_id":"1","_version":1,"result":"created"}`), nil
			})
		got, err := s.IndexDocument(ctx, "books", "1", []byte(`{"title":"Dune"}`), "wait_for")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"created"`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("IndexDocument_GeneratedID", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPost, Addr+"/books/_doc",
			httpmock.NewStringResponder(http.StatusCreated,
				`{"_index":"books","_id":"aBc123","_version":1,"result":"created"}`))
		got, err := s.IndexDocument(ctx, "books", "", []byte(`{"title":"Dune"}`), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"aBc123"`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("GetDocument", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodGet, Addr+"/books/_doc/1",
			httpmock.NewStringResponder(http.StatusOK,
				`{"_index":"books","_id":"1","_version":1,"found":true,"_source":{"title":"Dune"}}`))
		got, err := s.GetDocument(ctx, "books", "1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"Dune"`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("GetDocument_NotFound", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodGet, Addr+"/books/_doc/2",
			httpmock.NewStringResponder(http.StatusNotFound, `{"_index":"books","_id":"2","found":false}`))
		_, err := s.GetDocument(ctx, "books", "2")
		var se *db.StatusError
		if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound || se.Type != "" {
			t.Fatalf("expected bare 404, got %v", err)
		}
	})

	t.Run("GetDocument_EscapedID", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodGet, Addr+"/books/_doc/a%2Fb",
			func(req *http.Request) (*http.Response, error) {
				if req.URL.EscapedPath() != "/books/_doc/a%2Fb" {
					return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"wrong path"}`), nil
				}
				return httpmock.NewStringResponse(http.StatusOK,
					`{"_index":"books","_id":"a/b","_version":1,"found":true,"_source":{}}`), nil
			})
		got, err := s.GetDocument(ctx, "books", "a/b")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"a/b"`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("DeleteDocument_EscapedID", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodDelete, Addr+"/books/_doc/a%3Fx",
			func(req *http.Request) (*http.Response, error) {
				if req.URL.EscapedPath() != "/books/_doc/a%3Fx" || req.URL.Query().Has("x") {
					return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"wrong path"}`), nil
				}
				return httpmock.NewStringResponse(http.StatusOK,
					`{"_index":"books","_id":"a?x","_version":2,"result":"deleted"}`), nil
			})
		if _, err := s.DeleteDocument(ctx, "books", "a?x", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("UpdateDocument_EscapedIndexAndID", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPost, Addr+"/bo%23oks/_update/1%2F2",
			httpmock.NewStringResponder(http.StatusOK,
				`{"_index":"bo#oks","_id":"1/2","_version":2,"result":"updated"}`))
		if _, err := s.UpdateDocument(ctx, "bo#oks", "1/2", []byte(`{"doc":{}}`), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("IndexDocument_EscapedID", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPut, Addr+"/books/_doc/..%2Fadmin",
			httpmock.NewStringResponder(http.StatusCreated,
				`{"_index":"books","_id":"../admin","_version":1,"result":"created"}`))
		if _, err := s.IndexDocument(ctx, "books", "../admin", []byte(`{}`), ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("GetDocument_IndexMissing", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodGet, Addr+"/missing/_doc/1",
			httpmock.NewStringResponder(http.StatusNotFound, indexNotFound))
		_, err := s.GetDocument(ctx, "missing", "1")
		var se *db.StatusError
		if !errors.As(err, &se) || se.Type != "index_not_found_exception" {
			t.Fatalf("expected index_not_found_exception, got %v", err)
		}
	})

	t.Run("UpdateDocument", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPost, Addr+"/books/_update/1",
			func(req *http.Request) (*http.Response, error) {
				var body struct {
					Doc map[string]any `json:"doc"`
				}
				if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Doc == nil {
					return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"missing doc"}`), nil
				}
				return httpmock.NewStringResponse(http.StatusOK,
					`{"_index":"books","_id":"1","_version":2,"result":"updated"}`), nil
			})
		got, err := s.UpdateDocument(ctx, "books", "1", []byte(`{"doc":{"year":1965}}`), "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"updated"`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("UpdateDocument_VersionConflict", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPost, Addr+"/books/_update/1",
			httpmock.NewStringResponder(http.StatusConflict,
				`{"error":{"type":"version_conflict_engine_exception","reason":"version conflict"},"status":409}`))
		_, err := s.UpdateDocument(ctx, "books", "1", []byte(`{"doc":{}}`), "")
		if !db.IsStatus(err, http.StatusConflict) {
			t.Fatalf("expected 409, got %v", err)
		}
	})

	t.Run("DeleteDocument", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodDelete, Addr+"/books/_doc/1",
			httpmock.NewStringResponder(http.StatusOK,
				`{"_index":"books","_id":"1","_version":3,"result":"deleted"}`))
		if _, err := s.DeleteDocument(ctx, "books", "1", "true"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Search", func(t *testing.T) {
		tr, s := setup(t)
		responder := func(req *http.Request) (*http.Response, error) {
			var body map[string]any
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body["query"] == nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, `{"error":"missing query"}`), nil
			}
			return httpmock.NewStringResponse(http.StatusOK,
				`{"took":2,"hits":{"total":{"value":1,"relation":"eq"},"max_score":1.2,"hits":[{"_index":"books","_id":"1","_score":1.2,"_source":{"title":"Dune"}}]}}`), nil
		}
		tr.RegisterResponder(http.MethodPost, Addr+"/books/_search", responder)
		tr.RegisterResponder(http.MethodGet, Addr+"/books/_search", responder)

		got, err := s.Search(ctx, "books", []byte(`{"query":{"match_all":{}},"from":0,"size":10}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"max_score":1.2`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("Count", func(t *testing.T) {
		tr, s := setup(t)
		responder := httpmock.NewStringResponder(http.StatusOK, `{"count":42,"_shards":{"total":1}}`)
		tr.RegisterResponder(http.MethodGet, Addr+"/books/_count", responder)
		tr.RegisterResponder(http.MethodPost, Addr+"/books/_count", responder)

		got, err := s.Count(ctx, "books")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(string(got), `"count":42`) {
			t.Errorf("body = %s", got)
		}
	})

	t.Run("Bulk_PerItemResults", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPost, Addr+"/books/_bulk", BulkResponder())

		items := []db.BulkItem{
			{ID: "1", Body: []byte(`{"title":"Dune"}`)},
			{ID: "2", Body: []byte(`{"title":"Bad",` + RejectMarker + `}`)},
			{ID: "3", Body: []byte(`{"title":"Emma"}`)},
		}
		results, err := s.Bulk(ctx, "books", items, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		for _, i := range []int{0, 2} {
			if results[i].Err != nil {
				t.Errorf("item %d: unexpected error %v", i, results[i].Err)
			}
			if results[i].ID != items[i].ID || results[i].Status != http.StatusCreated {
				t.Errorf("item %d: got %+v", i, results[i])
			}
		}
		var se *db.StatusError
		if !errors.As(results[1].Err, &se) {
			t.Fatalf("item 1: expected *db.StatusError, got %v", results[1].Err)
		}
		if se.StatusCode != http.StatusBadRequest || se.Type != "mapper_parsing_exception" {
			t.Errorf("item 1: got %+v", se)
		}
		if results[1].ID != "2" {
			t.Errorf("item 1: id = %q", results[1].ID)
		}
	})

	t.Run("Bulk_TransportError", func(t *testing.T) {
		tr, s := setup(t)
		tr.RegisterResponder(http.MethodPost, Addr+"/books/_bulk", httpmock.NewErrorResponder(errors.New("connection reset")))

		items := []db.BulkItem{{ID: "1", Body: []byte(`{}`)}, {ID: "2", Body: []byte(`{}`)}}
		results, err := s.Bulk(ctx, "books", items, "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i, r := range results {
			if r.Err == nil {
				t.Errorf("item %d: expected error", i)
			}
			if r.ID != items[i].ID {
				t.Errorf("item %d: id = %q", i, r.ID)
			}
		}
	})

	t.Run("Bulk_Empty", func(t *testing.T) {
		_, s := setup(t)
		results, err := s.Bulk(ctx, "books", nil, "")
		if err != nil || len(results) != 0 {
			t.Fatalf("got %v, %v", results, err)
		}
	})
}

package raw

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/opensearch-project/opensearch-go/v2"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/db/dbtest"
)

func TestStore(t *testing.T) {
	dbtest.RunStoreSuite(t, func(client *opensearch.Client) db.Store {
		return NewStore(client)
	})
}

func TestSegments_EscapesSlashes(t *testing.T) {
	got := segments("books", "_doc", "a/b")
	if got != "/books/_doc/a%2Fb" {
		t.Errorf("segments = %q", got)
	}
}

func TestEncodeBulk(t *testing.T) {
	body, err := encodeBulk([]db.BulkItem{
		{ID: "1", Body: []byte(`{"a":1}`)},
		{Body: []byte(`{"b":2}`)},
		{Action: db.ActionDelete, ID: "3"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"index":{"_id":"1"}}` + "\n" + `{"a":1}` + "\n" +
		`{"index":{}}` + "\n" + `{"b":2}` + "\n" +
		`{"delete":{"_id":"3"}}` + "\n"
	if string(body) != want {
		t.Errorf("body =\n%s\nwant\n%s", body, want)
	}
}

func TestBulk_SetsNDJSONContentType(t *testing.T) {
	transport := dbtest.NewTransport(t)
	transport.RegisterResponder(http.MethodPost, dbtest.Addr+"/books/_bulk",
		func(req *http.Request) (*http.Response, error) {
			if !strings.HasPrefix(req.Header.Get("Content-Type"), contentTypeNDJSON) {
				return httpmock.NewStringResponse(http.StatusNotAcceptable, `{"error":"wrong content type"}`), nil
			}
			return dbtest.BulkResponder()(req)
		})
	s := NewStore(dbtest.NewClient(t, transport))

	results, err := s.Bulk(context.Background(), "books", []db.BulkItem{{ID: "1", Body: []byte(`{}`)}}, "true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Err != nil {
		t.Fatalf("unexpected item error: %v", results[0].Err)
	}
}

func TestBulk_WholeRequestRejected(t *testing.T) {
	transport := dbtest.NewTransport(t)
	transport.RegisterResponder(http.MethodPost, dbtest.Addr+"/books/_bulk",
		httpmock.NewStringResponder(http.StatusUnauthorized, "Unauthorized"))
	s := NewStore(dbtest.NewClient(t, transport))

	results, err := s.Bulk(context.Background(), "books", []db.BulkItem{{ID: "1", Body: []byte(`{}`)}, {ID: "2", Body: []byte(`{}`)}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, r := range results {
		var se *db.StatusError
		if !errors.As(r.Err, &se) || se.StatusCode != http.StatusUnauthorized {
			t.Errorf("item %d: expected 401 status error, got %v", i, r.Err)
		}
	}
}

func TestBulk_ShortResponse(t *testing.T) {
	transport := dbtest.NewTransport(t)
	transport.RegisterResponder(http.MethodPost, dbtest.Addr+"/books/_bulk",
		httpmock.NewStringResponder(http.StatusOK,
			`{"errors":false,"items":[{"index":{"_id":"1","status":201,"result":"created"}}]}`))
	s := NewStore(dbtest.NewClient(t, transport))

	results, err := s.Bulk(context.Background(), "books", []db.BulkItem{{ID: "1", Body: []byte(`{}`)}, {ID: "2", Body: []byte(`{}`)}}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Err != nil {
		t.Errorf("item 0: unexpected error %v", results[0].Err)
	}
	if !errors.Is(results[1].Err, errMissingItem) {
		t.Errorf("item 1: expected errMissingItem, got %v", results[1].Err)
	}
}

package searchgate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/searchgate/internal/domain"
	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
)

// --- IndexService ---

func TestIndexService_List(t *testing.T) {
	mock := &mockIndexUC{
		listFn: func(_ context.Context, pattern string) ([]domindex.Info, error) {
			if pattern != "logs-*" {
				t.Errorf("pattern = %q, want logs-*", pattern)
			}
			return []domindex.Info{{Name: "logs-1", Health: "green", DocsCount: 7}}, nil
		},
	}

	svc := &IndexService{svc: mock}
	list, err := svc.List(context.Background(), "logs-*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "logs-1" || list[0].DocsCount != 7 {
		t.Errorf("list = %+v", list)
	}
}

func TestIndexService_Create_PassesBody(t *testing.T) {
	mock := &mockIndexUC{
		createFn: func(_ context.Context, name string, body []byte) error {
			if name != "books" || string(body) != `{"settings":{}}` {
				t.Errorf("name = %q, body = %s", name, body)
			}
			return nil
		},
	}

	svc := &IndexService{svc: mock}
	if err := svc.Create(context.Background(), "books", []byte(`{"settings":{}}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexService_Delete_KeepsSentinel(t *testing.T) {
	mock := &mockIndexUC{
		deleteFn: func(context.Context, string) error {
			return domain.NewUpstreamError("delete_index", http.StatusNotFound, domain.TypeIndexNotFound, "no such index", nil)
		},
	}

	svc := &IndexService{svc: mock}
	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
	var ue *UpstreamError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusNotFound {
		t.Errorf("expected upstream error with 404, got %v", err)
	}
}

func TestIndexService_Exists(t *testing.T) {
	mock := &mockIndexUC{
		existsFn: func(_ context.Context, name string) (bool, error) {
			return name == "books", nil
		},
	}

	svc := &IndexService{svc: mock}
	ok, err := svc.Exists(context.Background(), "books")
	if err != nil || !ok {
		t.Fatalf("books: got %v, %v", ok, err)
	}
	ok, err = svc.Exists(context.Background(), "films")
	if err != nil || ok {
		t.Fatalf("films: got %v, %v", ok, err)
	}
}

// --- DocumentService ---

func TestDocumentService_Create_UsesRefresh(t *testing.T) {
	mock := &mockDocumentUC{
		createFn: func(_ context.Context, index, id string, source []byte, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
			if index != "books" || id != "1" || string(source) != `{"title":"Go"}` {
				t.Errorf("index = %q, id = %q, source = %s", index, id, source)
			}
			if refresh != domdoc.RefreshWaitFor {
				t.Errorf("refresh = %q, want wait_for", refresh)
			}
			return domdoc.NewWriteResult(index, id, 1, "created", 0, 1), nil
		},
	}

	svc := (&DocumentService{index: "books", docSvc: mock}).WithRefresh(RefreshWaitFor)
	res, err := svc.Create(context.Background(), "1", []byte(`{"title":"Go"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Result != "created" || res.Version != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestDocumentService_WithRefresh_Copies(t *testing.T) {
	base := &DocumentService{index: "books"}
	waiting := base.WithRefresh(RefreshTrue)
	if base.refresh != RefreshDefault {
		t.Errorf("base refresh changed to %q", base.refresh)
	}
	if waiting.refresh != RefreshTrue {
		t.Errorf("copy refresh = %q", waiting.refresh)
	}
}

func TestDocumentService_Get(t *testing.T) {
	mock := &mockDocumentUC{
		getFn: func(_ context.Context, index, id string) (domdoc.Document, error) {
			return domdoc.Reconstruct(index, id, 3, 10, 1, true, []byte(`{"a":1}`)), nil
		},
	}

	svc := &DocumentService{index: "books", docSvc: mock}
	doc, err := svc.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID != "1" || doc.Version != 3 || doc.SeqNo != 10 || string(doc.Source) != `{"a":1}` {
		t.Errorf("doc = %+v", doc)
	}
}

func TestDocumentService_Get_NotFound(t *testing.T) {
	mock := &mockDocumentUC{
		getFn: func(context.Context, string, string) (domdoc.Document, error) {
			return domdoc.Document{}, domain.NewUpstreamError("get", http.StatusNotFound, "", "", []byte(`{"found":false}`))
		},
	}

	svc := &DocumentService{index: "books", docSvc: mock}
	_, err := svc.Get(context.Background(), "nope")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestDocumentService_UpdateAndDelete(t *testing.T) {
	mock := &mockDocumentUC{
		updateFn: func(_ context.Context, _, id string, partial []byte, _ domdoc.Refresh) (domdoc.WriteResult, error) {
			if string(partial) != `{"year":2024}` {
				t.Errorf("partial = %s", partial)
			}
			return domdoc.NewWriteResult("books", id, 2, "updated", 1, 1), nil
		},
		deleteFn: func(_ context.Context, _, id string, _ domdoc.Refresh) (domdoc.WriteResult, error) {
			return domdoc.NewWriteResult("books", id, 3, "deleted", 2, 1), nil
		},
	}

	svc := &DocumentService{index: "books", docSvc: mock}
	upd, err := svc.Update(context.Background(), "1", []byte(`{"year":2024}`))
	if err != nil || upd.Result != "updated" {
		t.Fatalf("update: %+v, %v", upd, err)
	}
	del, err := svc.Delete(context.Background(), "1")
	if err != nil || del.Result != "deleted" || del.Version != 3 {
		t.Fatalf("delete: %+v, %v", del, err)
	}
}

func TestDocumentService_Bulk(t *testing.T) {
	mock := &mockBatchUC{
		indexFn: func(_ context.Context, index string, items []dombatch.Item, _ domdoc.Refresh) ([]dombatch.Result, error) {
			if index != "books" || len(items) != 2 {
				t.Fatalf("index = %q, items = %d", index, len(items))
			}
			return []dombatch.Result{
				dombatch.NewOK("1", "created", http.StatusCreated),
				dombatch.NewError(items[1].ID(), http.StatusBadRequest, errors.New("mapper_parsing_exception")),
			}, nil
		},
	}

	svc := &DocumentService{index: "books", batchSvc: mock}
	res, err := svc.Bulk(context.Background(), []BulkDocument{
		{ID: "1", Source: []byte(`{"a":1}`)},
		{ID: "2", Source: []byte(`{"a":"x"}`)},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res[0].OK || res[0].HTTPStatus != http.StatusCreated {
		t.Errorf("item 0 = %+v", res[0])
	}
	if res[1].OK || res[1].ID != "2" || res[1].Err == nil {
		t.Errorf("item 1 = %+v", res[1])
	}
}

func TestDocumentService_Bulk_InvalidSource(t *testing.T) {
	called := false
	mock := &mockBatchUC{
		indexFn: func(context.Context, string, []dombatch.Item, domdoc.Refresh) ([]dombatch.Result, error) {
			called = true
			return nil, nil
		},
	}

	svc := &DocumentService{index: "books", batchSvc: mock}
	_, err := svc.Bulk(context.Background(), []BulkDocument{{ID: "1", Source: []byte(`not json`)}})
	if err == nil || !strings.Contains(err.Error(), "document 0") {
		t.Fatalf("expected error for document 0, got %v", err)
	}
	if called {
		t.Error("batch use case must not be called for invalid input")
	}
}

// --- SearchService ---

func TestSearchService_Query(t *testing.T) {
	mock := &mockSearchUC{
		searchFn: func(_ context.Context, index string, query []byte, from, size int) (result.Result, error) {
			if index != "books" || string(query) != `{"match_all":{}}` || from != 10 || size != 5 {
				t.Errorf("index = %q, query = %s, from = %d, size = %d", index, query, from, size)
			}
			hits := []result.Hit{result.NewHit("books", "1", 1.5, []byte(`{"t":1}`))}
			return result.New(1, "eq", 1.5, 4, hits), nil
		},
	}

	svc := &SearchService{index: "books", svc: mock}
	res, err := svc.Query(context.Background(), []byte(`{"match_all":{}}`), 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 1 || res.Took != 4*time.Millisecond || len(res.Hits) != 1 || res.Hits[0].Score != 1.5 {
		t.Errorf("res = %+v", res)
	}
}

func TestSearchService_Count(t *testing.T) {
	mock := &mockSearchUC{
		countFn: func(context.Context, string) (int64, error) { return 42, nil },
	}

	svc := &SearchService{index: "books", svc: mock}
	n, err := svc.Count(context.Background())
	if err != nil || n != 42 {
		t.Fatalf("count = %d, err = %v", n, err)
	}
}

func TestSearchService_Count_Error(t *testing.T) {
	mock := &mockSearchUC{
		countFn: func(context.Context, string) (int64, error) {
			return 0, domain.NewUnavailable("count", errors.New("connection refused"))
		},
	}

	svc := &SearchService{index: "books", svc: mock}
	if _, err := svc.Count(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

// --- Client cluster calls ---

func TestClient_Info(t *testing.T) {
	c := &Client{clusterSvc: &mockClusterUC{
		infoFn: func(context.Context) (domcluster.Info, error) {
			return domcluster.Info{ClusterName: "docker-cluster", VersionNumber: "2.13.0", Raw: []byte(`{"x":1}`)}, nil
		},
	}}

	info, err := c.Info(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.ClusterName != "docker-cluster" || info.VersionNumber != "2.13.0" || string(info.Raw) != `{"x":1}` {
		t.Errorf("info = %+v", info)
	}
}

func TestClient_ClusterHealth(t *testing.T) {
	c := &Client{clusterSvc: &mockClusterUC{
		healthFn: func(context.Context) (domcluster.Health, error) {
			return domcluster.Health{Status: "yellow", NumberOfNodes: 1, UnassignedShards: 2}, nil
		},
	}}

	h, err := c.ClusterHealth(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Status != "yellow" || h.UnassignedShards != 2 {
		t.Errorf("health = %+v", h)
	}
}

func TestClient_Health(t *testing.T) {
	c := &Client{healthSvc: &mockHealthUC{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{healthuc.ComponentOpenSearch: healthuc.CheckError},
	}}}

	h := c.Health(context.Background())
	if h.Status != "degraded" || h.Checks["opensearch"] != "error" {
		t.Errorf("health = %+v", h)
	}
}

// --- observer ---

func TestObserver_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	obs.observe("get_document", "books", time.Now(), nil)
	obs.observe("get_document", "books", time.Now(), errors.New("boom"))
	obs.observeBulk("books", []BulkResult{{OK: true}, {OK: true}, {OK: false}})

	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("get_document", "ok")); got != 1 {
		t.Errorf("ok = %f, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.operations.WithLabelValues("get_document", "error")); got != 1 {
		t.Errorf("error = %f, want 1", got)
	}
	if got := testutil.ToFloat64(obs.metrics.bulkDocs.WithLabelValues("ok")); got != 2 {
		t.Errorf("bulk ok = %f, want 2", got)
	}
	if got := testutil.ToFloat64(obs.metrics.bulkDocs.WithLabelValues("error")); got != 1 {
		t.Errorf("bulk error = %f, want 1", got)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second: %v", err)
	}

	second.observe("ping", "", time.Now(), nil)
	if got := testutil.ToFloat64(first.metrics.operations.WithLabelValues("ping", "ok")); got != 1 {
		t.Errorf("shared counter = %f, want 1", got)
	}
}

func TestObserver_LogsFailures(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	obs, _ := newObserver(logger, nil)

	obs.observe("search", "books", time.Now(), fmt.Errorf("search: %w", ErrIndexNotFound))

	out := buf.String()
	if !strings.Contains(out, "operation failed") || !strings.Contains(out, "index=books") {
		t.Errorf("log output = %q", out)
	}
}

func TestObserver_NilIsNoop(t *testing.T) {
	var obs *observer
	obs.observe("ping", "", time.Now(), nil)
	obs.observeBulk("books", []BulkResult{{OK: false}})
}

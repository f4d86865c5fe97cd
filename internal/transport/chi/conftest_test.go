package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	batchuc "github.com/kailas-cloud/searchgate/internal/usecase/batch"
	clusteruc "github.com/kailas-cloud/searchgate/internal/usecase/cluster"
	documentuc "github.com/kailas-cloud/searchgate/internal/usecase/document"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
	indexuc "github.com/kailas-cloud/searchgate/internal/usecase/index"
	searchuc "github.com/kailas-cloud/searchgate/internal/usecase/search"
)

// fakeBackend implements every repository contract the use cases need.
type fakeBackend struct {
	err     error
	pingErr error

	info    domcluster.Info
	indices []domindex.Info
	doc     domdoc.Document
	hits    result.Result
	count   int64
	bulk    []dombatch.Result
	exists  bool

	gotIndex   string
	gotID      string
	gotBody    []byte
	gotRefresh domdoc.Refresh
	gotSearch  request.Request
	gotItems   []dombatch.Item
}

func (f *fakeBackend) Ping(context.Context) error { return f.pingErr }

func (f *fakeBackend) Info(context.Context) (domcluster.Info, error) { return f.info, f.err }

func (f *fakeBackend) Health(context.Context) (domcluster.Health, error) {
	return domcluster.Health{ClusterName: "test", Status: domcluster.StatusGreen, NumberOfNodes: 1}, f.err
}

func (f *fakeBackend) List(_ context.Context, pattern string) ([]domindex.Info, error) {
	f.gotIndex = pattern
	return f.indices, f.err
}

func (f *fakeBackend) Create(_ context.Context, name string, body []byte) error {
	f.gotIndex, f.gotBody = name, body
	return f.err
}

func (f *fakeBackend) Delete(_ context.Context, name string) error {
	f.gotIndex = name
	return f.err
}

func (f *fakeBackend) Exists(_ context.Context, name string) (bool, error) {
	f.gotIndex = name
	return f.exists, f.err
}

type fakeDocuments struct{ *fakeBackend }

func (f fakeDocuments) Create(_ context.Context, doc *domdoc.Document, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
	f.gotIndex, f.gotID, f.gotBody, f.gotRefresh = doc.Index(), doc.ID(), doc.Source(), refresh
	id := doc.ID()
	if id == "" {
		id = "auto-1"
	}
	return domdoc.NewWriteResult(doc.Index(), id, 1, domdoc.ResultCreated, 0, 1), f.err
}

func (f fakeDocuments) Get(_ context.Context, index, id string) (domdoc.Document, error) {
	f.gotIndex, f.gotID = index, id
	return f.doc, f.err
}

func (f fakeDocuments) Update(
	_ context.Context, index, id string, partial json.RawMessage, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	f.gotIndex, f.gotID, f.gotBody, f.gotRefresh = index, id, partial, refresh
	return domdoc.NewWriteResult(index, id, 2, domdoc.ResultUpdated, 1, 1), f.err
}

func (f fakeDocuments) Delete(_ context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
	f.gotIndex, f.gotID, f.gotRefresh = index, id, refresh
	return domdoc.NewWriteResult(index, id, 3, domdoc.ResultDeleted, 2, 1), f.err
}

func (f fakeDocuments) Bulk(
	_ context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh,
) ([]dombatch.Result, error) {
	f.gotIndex, f.gotItems, f.gotRefresh = index, items, refresh
	if f.bulk != nil {
		return f.bulk, f.err
	}
	out := make([]dombatch.Result, len(items))
	for i, it := range items {
		out[i] = dombatch.NewOK(it.ID(), domdoc.ResultCreated, 201)
	}
	return out, f.err
}

type fakeSearch struct{ *fakeBackend }

func (f fakeSearch) Search(_ context.Context, index string, req *request.Request) (result.Result, error) {
	f.gotIndex, f.gotSearch = index, *req
	return f.hits, f.err
}

func (f fakeSearch) Count(_ context.Context, index string) (int64, error) {
	f.gotIndex = index
	return f.count, f.err
}

func newTestRouter(t *testing.T, fb *fakeBackend) http.Handler {
	t.Helper()
	docs := fakeDocuments{fb}
	srv := NewServer(Services{
		Cluster:   clusteruc.New(fb),
		Indices:   indexuc.New(fb),
		Documents: documentuc.New(docs),
		Batch:     batchuc.New(docs).WithMaxBatchSize(3),
		Search:    searchuc.New(fakeSearch{fb}),
		Health:    healthuc.New(fb, nil),
	})
	return HandlerWithOptions(srv, ChiServerOptions{ErrorHandlerFunc: ParamErrorHandler})
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return e
}

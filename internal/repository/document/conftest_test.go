package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/searchgate/internal/db"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	indexFn  func(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error)
	getFn    func(ctx context.Context, index, id string) ([]byte, error)
	updateFn func(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error)
	deleteFn func(ctx context.Context, index, id, refresh string) ([]byte, error)
	bulkFn   func(ctx context.Context, index string, items []db.BulkItem, refresh string) ([]db.BulkItemResult, error)
}

func (m *mockStore) IndexDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error) {
	if m.indexFn != nil {
		return m.indexFn(ctx, index, id, body, refresh)
	}
	return []byte(`{"_index":"` + index + `","_id":"` + id + `","_version":1,"result":"created"}`), nil
}

func (m *mockStore) GetDocument(ctx context.Context, index, id string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, index, id)
	}
	return []byte(`{"_index":"` + index + `","_id":"` + id + `","found":true,"_source":{}}`), nil
}

func (m *mockStore) UpdateDocument(ctx context.Context, index, id string, body []byte, refresh string) ([]byte, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, index, id, body, refresh)
	}
	return []byte(`{"_index":"` + index + `","_id":"` + id + `","_version":2,"result":"updated"}`), nil
}

func (m *mockStore) DeleteDocument(ctx context.Context, index, id, refresh string) ([]byte, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, index, id, refresh)
	}
	return []byte(`{"_index":"` + index + `","_id":"` + id + `","_version":3,"result":"deleted"}`), nil
}

func (m *mockStore) Bulk(ctx context.Context, index string, items []db.BulkItem, refresh string) ([]db.BulkItemResult, error) {
	if m.bulkFn != nil {
		return m.bulkFn(ctx, index, items, refresh)
	}
	out := make([]db.BulkItemResult, len(items))
	for i, it := range items {
		out[i] = db.BulkItemResult{ID: it.ID, Status: 201, Result: "created", Version: 1}
	}
	return out, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func testDocument(t *testing.T, id, source string) domdoc.Document {
	t.Helper()
	doc, err := domdoc.New("books", id, []byte(source))
	if err != nil {
		t.Fatalf("create test document: %v", err)
	}
	return doc
}

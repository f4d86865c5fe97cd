package index

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/searchgate/internal/db"
	"github.com/kailas-cloud/searchgate/internal/domain"
)

type mockStore struct {
	catFn    func(ctx context.Context, pattern string) ([]byte, error)
	createFn func(ctx context.Context, name string, body []byte) ([]byte, error)
	deleteFn func(ctx context.Context, name string) ([]byte, error)
	existsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockStore) CatIndices(ctx context.Context, pattern string) ([]byte, error) {
	if m.catFn != nil {
		return m.catFn(ctx, pattern)
	}
	return []byte(`[]`), nil
}

func (m *mockStore) CreateIndex(ctx context.Context, name string, body []byte) ([]byte, error) {
	if m.createFn != nil {
		return m.createFn(ctx, name, body)
	}
	return []byte(`{"acknowledged":true}`), nil
}

func (m *mockStore) DeleteIndex(ctx context.Context, name string) ([]byte, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, name)
	}
	return []byte(`{"acknowledged":true}`), nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, name)
	}
	return true, nil
}

func TestList(t *testing.T) {
	ms := &mockStore{catFn: func(_ context.Context, pattern string) ([]byte, error) {
		if pattern != "b*" {
			t.Errorf("pattern = %q", pattern)
		}
		return []byte(`[
			{"health":"yellow","status":"open","index":"books","uuid":"u1","pri":"1","rep":"1",
			 "docs.count":"42","docs.deleted":"3","store.size":"10kb","pri.store.size":"10kb"},
			{"health":null,"status":"close","index":"archive","uuid":"u2","pri":"1","rep":"0",
			 "docs.count":null,"docs.deleted":null,"store.size":null,"pri.store.size":null}
		]`), nil
	}}

	got, err := New(ms).List(context.Background(), "b*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	if got[0].Name != "books" || got[0].DocsCount != 42 || got[0].DocsDeleted != 3 || got[0].Replicas != 1 {
		t.Errorf("unexpected first record: %+v", got[0])
	}
	if got[1].Name != "archive" || got[1].Status != "close" || got[1].DocsCount != 0 {
		t.Errorf("unexpected closed record: %+v", got[1])
	}
}

func TestList_Empty(t *testing.T) {
	got, err := New(&mockStore{}).List(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	ms := &mockStore{createFn: func(context.Context, string, []byte) ([]byte, error) {
		return nil, db.NewStatusError(db.OpCreateIndex, 400,
			[]byte(`{"error":{"type":"resource_already_exists_exception","reason":"index [books/u1] already exists"}}`))
	}}
	err := New(ms).Create(context.Background(), "books", nil)
	if !errors.Is(err, domain.ErrIndexAlreadyExists) {
		t.Fatalf("expected ErrIndexAlreadyExists, got %v", err)
	}
}

func TestDelete_NotFound(t *testing.T) {
	ms := &mockStore{deleteFn: func(context.Context, string) ([]byte, error) {
		return nil, db.NewStatusError(db.OpDeleteIndex, 404,
			[]byte(`{"error":{"type":"index_not_found_exception","reason":"no such index [books]"}}`))
	}}
	err := New(ms).Delete(context.Background(), "books")
	if !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	ms := &mockStore{existsFn: func(context.Context, string) (bool, error) { return false, nil }}
	ok, err := New(ms).Exists(context.Background(), "books")
	if err != nil || ok {
		t.Fatalf("got %v, %v", ok, err)
	}
}

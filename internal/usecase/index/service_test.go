package index

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/searchgate/internal/domain"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
)

type mockRepo struct {
	list        []domindex.Info
	err         error
	gotPattern  string
	gotName     string
	gotBody     []byte
	createCalls int
	deleteCalls int
	exists      bool
}

func (m *mockRepo) List(_ context.Context, pattern string) ([]domindex.Info, error) {
	m.gotPattern = pattern
	return m.list, m.err
}

func (m *mockRepo) Create(_ context.Context, name string, body []byte) error {
	m.createCalls++
	m.gotName, m.gotBody = name, body
	return m.err
}

func (m *mockRepo) Delete(_ context.Context, name string) error {
	m.deleteCalls++
	m.gotName = name
	return m.err
}

func (m *mockRepo) Exists(_ context.Context, name string) (bool, error) {
	m.gotName = name
	return m.exists, m.err
}

func TestList(t *testing.T) {
	repo := &mockRepo{list: []domindex.Info{{Name: "books", DocsCount: 3}}}
	list, err := New(repo).List(context.Background(), "boo*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "books" {
		t.Errorf("unexpected list: %+v", list)
	}
	if repo.gotPattern != "boo*" {
		t.Errorf("pattern = %q", repo.gotPattern)
	}
}

func TestList_InvalidPattern(t *testing.T) {
	_, err := New(&mockRepo{}).List(context.Background(), "a/b")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestCreate_WithBody(t *testing.T) {
	repo := &mockRepo{}
	body := []byte(`  {"settings":{"number_of_shards":1}}  `)
	if err := New(repo).Create(context.Background(), "books", body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotName != "books" || string(repo.gotBody) != `{"settings":{"number_of_shards":1}}` {
		t.Errorf("unexpected call: %s %s", repo.gotName, repo.gotBody)
	}
}

func TestCreate_EmptyBody(t *testing.T) {
	repo := &mockRepo{}
	if err := New(repo).Create(context.Background(), "books", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.gotBody != nil {
		t.Errorf("expected nil body, got %s", repo.gotBody)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name  string
		index string
		body  string
	}{
		{"empty name", "", ""},
		{"long name", strings.Repeat("x", domindex.MaxNameLength+1), ""},
		{"array body", "books", `[1,2]`},
		{"broken body", "books", `{"settings":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			err := New(repo).Create(context.Background(), tt.index, []byte(tt.body))
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if repo.createCalls != 0 {
				t.Error("repository must not be called")
			}
		})
	}
}

func TestCreate_AlreadyExists(t *testing.T) {
	repo := &mockRepo{err: domain.NewUpstreamError("CREATE_INDEX", 400, domain.TypeResourceExists, "exists", nil)}
	err := New(repo).Create(context.Background(), "books", nil)
	if !errors.Is(err, domain.ErrIndexAlreadyExists) {
		t.Fatalf("expected ErrIndexAlreadyExists, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	if err := New(repo).Delete(context.Background(), "books"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deleteCalls != 1 || repo.gotName != "books" {
		t.Errorf("unexpected call: %d %s", repo.deleteCalls, repo.gotName)
	}
}

func TestDelete_NotFound(t *testing.T) {
	repo := &mockRepo{err: domain.NewUpstreamError("DELETE_INDEX", 404, domain.TypeIndexNotFound, "no such index", nil)}
	if err := New(repo).Delete(context.Background(), "x"); !errors.Is(err, domain.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	repo := &mockRepo{exists: true}
	ok, err := New(repo).Exists(context.Background(), "books")
	if err != nil || !ok {
		t.Fatalf("got %v, %v", ok, err)
	}
	if repo.gotName != "books" {
		t.Errorf("name = %q", repo.gotName)
	}
}

func TestExists_InvalidName(t *testing.T) {
	repo := &mockRepo{exists: true}
	_, err := New(repo).Exists(context.Background(), "a/b")
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
	if repo.gotName != "" {
		t.Error("repository must not be called")
	}
}

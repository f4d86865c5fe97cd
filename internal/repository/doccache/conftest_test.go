package doccache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/db"
	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
)

type mockDocuments struct {
	getCalls int
	getErr   error
	writeErr error
	// duringGet runs once inside the next Get, before it returns.
	duringGet func()
}

func (m *mockDocuments) Create(_ context.Context, doc *domdoc.Document, _ domdoc.Refresh) (domdoc.WriteResult, error) {
	return domdoc.NewWriteResult(doc.Index(), doc.ID(), 1, domdoc.ResultCreated, 0, 1), m.writeErr
}

func (m *mockDocuments) Get(_ context.Context, index, id string) (domdoc.Document, error) {
	m.getCalls++
	if hook := m.duringGet; hook != nil {
		m.duringGet = nil
		hook()
	}
	if m.getErr != nil {
		return domdoc.Document{}, m.getErr
	}
	return domdoc.Reconstruct(index, id, 3, 7, 1, true, []byte(`{"title":"Dune"}`)), nil
}

func (m *mockDocuments) Update(_ context.Context, index, id string, _ json.RawMessage, _ domdoc.Refresh) (domdoc.WriteResult, error) {
	return domdoc.NewWriteResult(index, id, 2, domdoc.ResultUpdated, 1, 1), m.writeErr
}

func (m *mockDocuments) Delete(_ context.Context, index, id string, _ domdoc.Refresh) (domdoc.WriteResult, error) {
	return domdoc.NewWriteResult(index, id, 3, domdoc.ResultDeleted, 2, 1), m.writeErr
}

func (m *mockDocuments) Bulk(_ context.Context, _ string, items []dombatch.Item, _ domdoc.Refresh) ([]dombatch.Result, error) {
	out := make([]dombatch.Result, len(items))
	for i, it := range items {
		out[i] = dombatch.NewOK(it.ID(), domdoc.ResultCreated, 201)
	}
	return out, m.writeErr
}

// mockKVStore is an in-memory cache backend with optional failure injection.
type mockKVStore struct {
	data    map[string][]byte
	ttls    map[string]time.Duration
	deleted []string
	getErr  error
	setErr  error
	delErr  error
}

func newMockKVStore() *mockKVStore {
	return &mockKVStore{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *mockKVStore) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *mockKVStore) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func (m *mockKVStore) Del(_ context.Context, keys ...string) error {
	m.deleted = append(m.deleted, keys...)
	if m.delErr != nil {
		return m.delErr
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func newTestCache(t *testing.T) (*CachedDocuments, *mockDocuments, *mockKVStore) {
	t.Helper()
	inner := &mockDocuments{}
	kv := newMockKVStore()
	return New(inner, kv, time.Minute, nil, zap.NewNop()), inner, kv
}

package searchgate

import (
	"context"

	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/searchgate/internal/usecase/health"
)

// --- clusterUseCase mock ---

type mockClusterUC struct {
	infoFn   func(ctx context.Context) (domcluster.Info, error)
	healthFn func(ctx context.Context) (domcluster.Health, error)
}

func (m *mockClusterUC) Info(ctx context.Context) (domcluster.Info, error) { return m.infoFn(ctx) }

func (m *mockClusterUC) Health(ctx context.Context) (domcluster.Health, error) { return m.healthFn(ctx) }

// --- indexUseCase mock ---

type mockIndexUC struct {
	listFn   func(ctx context.Context, pattern string) ([]domindex.Info, error)
	createFn func(ctx context.Context, name string, body []byte) error
	deleteFn func(ctx context.Context, name string) error
	existsFn func(ctx context.Context, name string) (bool, error)
}

func (m *mockIndexUC) List(ctx context.Context, pattern string) ([]domindex.Info, error) {
	return m.listFn(ctx, pattern)
}

func (m *mockIndexUC) Create(ctx context.Context, name string, body []byte) error {
	return m.createFn(ctx, name, body)
}

func (m *mockIndexUC) Delete(ctx context.Context, name string) error { return m.deleteFn(ctx, name) }

func (m *mockIndexUC) Exists(ctx context.Context, name string) (bool, error) {
	return m.existsFn(ctx, name)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	createFn func(ctx context.Context, index, id string, source []byte, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	getFn    func(ctx context.Context, index, id string) (domdoc.Document, error)
	updateFn func(ctx context.Context, index, id string, partial []byte, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	deleteFn func(ctx context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error)
}

func (m *mockDocumentUC) Create(
	ctx context.Context, index, id string, source []byte, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	return m.createFn(ctx, index, id, source, refresh)
}

func (m *mockDocumentUC) Get(ctx context.Context, index, id string) (domdoc.Document, error) {
	return m.getFn(ctx, index, id)
}

func (m *mockDocumentUC) Update(
	ctx context.Context, index, id string, partial []byte, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	return m.updateFn(ctx, index, id, partial, refresh)
}

func (m *mockDocumentUC) Delete(
	ctx context.Context, index, id string, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	return m.deleteFn(ctx, index, id, refresh)
}

// --- batchUseCase mock ---

type mockBatchUC struct {
	indexFn func(ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh) ([]dombatch.Result, error)
}

func (m *mockBatchUC) Index(
	ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh,
) ([]dombatch.Result, error) {
	return m.indexFn(ctx, index, items, refresh)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, index string, query []byte, from, size int) (result.Result, error)
	countFn  func(ctx context.Context, index string) (int64, error)
}

func (m *mockSearchUC) Search(ctx context.Context, index string, query []byte, from, size int) (result.Result, error) {
	return m.searchFn(ctx, index, query, from, size)
}

func (m *mockSearchUC) Count(ctx context.Context, index string) (int64, error) {
	return m.countFn(ctx, index)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// Package doccache is a read-through cache decorator for single-document reads.
package doccache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchgate/internal/db"
	dombatch "github.com/kailas-cloud/searchgate/internal/domain/batch"
	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
)

const keyPrefix = "searchgate:doc:"

// documents is the decorated repository.
type documents interface {
	Create(ctx context.Context, doc *domdoc.Document, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	Get(ctx context.Context, index, id string) (domdoc.Document, error)
	Update(ctx context.Context, index, id string, partial json.RawMessage, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	Delete(ctx context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error)
	Bulk(ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh) ([]dombatch.Result, error)
}

// store is the consumer interface for the cache backend (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// CachedDocuments caches Get results and drops entries on every write to the same id.
// Cache failures are logged and never fail the call.
//
// A miss registers a pending fill before reading through. A write that lands
// while the read is in flight marks the fill stale, so the reader does not put
// a document older than the write back into the cache.
type CachedDocuments struct {
	inner      documents
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger

	mu    sync.Mutex
	fills map[string]*pendingFill
}

// pendingFill is shared by the in-flight misses of one key.
type pendingFill struct {
	mu    sync.Mutex // held across the cache write and the stale mark
	stale bool
	refs  int
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner documents,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedDocuments {
	return &CachedDocuments{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
		fills:      make(map[string]*pendingFill),
	}
}

// Get returns a cached document or reads it through.
func (c *CachedDocuments) Get(ctx context.Context, index, id string) (domdoc.Document, error) {
	key := cacheKey(index, id)

	if doc, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return doc, nil
	}
	c.incCache("miss")

	fill := c.beginFill(key)
	defer c.endFill(key, fill)

	doc, err := c.inner.Get(ctx, index, id)
	if err != nil {
		return domdoc.Document{}, err //nolint:wrapcheck // decorator is transparent
	}

	fill.mu.Lock()
	if !fill.stale {
		c.putToCache(ctx, key, &doc)
	}
	fill.mu.Unlock()
	return doc, nil
}

func (c *CachedDocuments) beginFill(key string) *pendingFill {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.fills[key]
	if !ok {
		f = &pendingFill{}
		c.fills[key] = f
	}
	f.refs++
	return f
}

func (c *CachedDocuments) endFill(key string, f *pendingFill) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.refs--
	if f.refs == 0 && c.fills[key] == f {
		delete(c.fills, key)
	}
}

// markStale stops in-flight fills of keys from writing. It waits for a fill
// that is already writing, so the Del that follows removes what it wrote.
func (c *CachedDocuments) markStale(keys []string) {
	c.mu.Lock()
	pending := make([]*pendingFill, 0, len(keys))
	for _, k := range keys {
		if f, ok := c.fills[k]; ok {
			pending = append(pending, f)
		}
	}
	c.mu.Unlock()

	for _, f := range pending {
		f.mu.Lock()
		f.stale = true
		f.mu.Unlock()
	}
}

// Create writes through and drops the cached entry for an explicit id.
func (c *CachedDocuments) Create(ctx context.Context, doc *domdoc.Document, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
	res, err := c.inner.Create(ctx, doc, refresh)
	if doc.ID() != "" {
		c.invalidate(ctx, cacheKey(doc.Index(), doc.ID()))
	}
	return res, err //nolint:wrapcheck // decorator is transparent
}

// Update writes through and drops the cached entry.
func (c *CachedDocuments) Update(
	ctx context.Context, index, id string, partial json.RawMessage, refresh domdoc.Refresh,
) (domdoc.WriteResult, error) {
	res, err := c.inner.Update(ctx, index, id, partial, refresh)
	c.invalidate(ctx, cacheKey(index, id))
	return res, err //nolint:wrapcheck // decorator is transparent
}

// Delete writes through and drops the cached entry.
func (c *CachedDocuments) Delete(ctx context.Context, index, id string, refresh domdoc.Refresh) (domdoc.WriteResult, error) {
	res, err := c.inner.Delete(ctx, index, id, refresh)
	c.invalidate(ctx, cacheKey(index, id))
	return res, err //nolint:wrapcheck // decorator is transparent
}

// Bulk writes through and drops the cached entries of every item with an explicit id.
func (c *CachedDocuments) Bulk(
	ctx context.Context, index string, items []dombatch.Item, refresh domdoc.Refresh,
) ([]dombatch.Result, error) {
	res, err := c.inner.Bulk(ctx, index, items, refresh)
	keys := make([]string, 0, len(items))
	for _, it := range items {
		if it.ID() != "" {
			keys = append(keys, cacheKey(index, it.ID()))
		}
	}
	c.invalidate(ctx, keys...)
	return res, err //nolint:wrapcheck // decorator is transparent
}

func (c *CachedDocuments) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey is unambiguous because index names cannot contain ':'.
func cacheKey(index, id string) string {
	return keyPrefix + index + ":" + id
}

type entry struct {
	Index       string          `json:"index"`
	ID          string          `json:"id"`
	Version     int64           `json:"version"`
	SeqNo       int64           `json:"seq_no"`
	PrimaryTerm int64           `json:"primary_term"`
	Source      json.RawMessage `json:"source"`
}

func (c *CachedDocuments) getFromCache(ctx context.Context, key string) (domdoc.Document, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached document", zap.String("key", key), zap.Error(err))
		}
		return domdoc.Document{}, false
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		c.logger.Warn("Failed to parse cached document", zap.String("key", key), zap.Error(err))
		return domdoc.Document{}, false
	}
	return domdoc.Reconstruct(e.Index, e.ID, e.Version, e.SeqNo, e.PrimaryTerm, true, e.Source), true
}

func (c *CachedDocuments) putToCache(ctx context.Context, key string, doc *domdoc.Document) {
	if !doc.Found() {
		return
	}
	data, err := json.Marshal(entry{
		Index:       doc.Index(),
		ID:          doc.ID(),
		Version:     doc.Version(),
		SeqNo:       doc.SeqNo(),
		PrimaryTerm: doc.PrimaryTerm(),
		Source:      doc.Source(),
	})
	if err != nil {
		c.logger.Warn("Failed to encode cached document", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache document", zap.String("key", key), zap.Error(err))
	}
}

func (c *CachedDocuments) invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	c.markStale(keys)
	if err := c.store.Del(ctx, keys...); err != nil {
		c.logger.Warn("Failed to invalidate cached documents", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Worker pool for parallel bulk indexing.
// Reader -> channel(batch) -> N workers -> Bulk -> OpenSearch.
package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	searchgate "github.com/kailas-cloud/searchgate/pkg/sdk"
)

// bulkTarget is the consumer interface for the index documents service.
type bulkTarget interface {
	Bulk(ctx context.Context, docs []searchgate.BulkDocument) ([]searchgate.BulkResult, error)
}

// ingester runs bulk workers over one reader.
type ingester struct {
	docs      bulkTarget
	index     string
	workers   int
	batchSize int
	metrics   *loaderMetrics
	cursor    *cursorTracker
	logger    *zap.Logger
}

// batch is one bulk request handed to a worker.
type batch struct {
	seq        int
	docs       []searchgate.BulkDocument
	invalid    int // lines dropped before sending
	fileIndex  int
	lineOffset int
}

// ingestResult summarizes a run.
type ingestResult struct {
	Processed int64
	Failed    int64
	Duration  time.Duration
}

// Run reads from the cursor position to the end of input. It stops at the first
// batch the cluster could not take at all; the cursor stays before that batch.
func (ing *ingester) Run(ctx context.Context, reader *ndjsonReader) (ingestResult, error) {
	cur := ing.cursor.Get()

	g, gctx := errgroup.WithContext(ctx)
	batches := make(chan batch, ing.workers*2)
	var totalProcessed, totalFailed atomic.Int64
	start := time.Now()

	g.Go(func() error {
		defer close(batches)
		return ing.produce(gctx, reader, cur.FileIndex, cur.LineOffset, batches)
	})
	for i := 0; i < ing.workers; i++ {
		workerID := i
		g.Go(func() error {
			return ing.worker(gctx, workerID, batches, &totalProcessed, &totalFailed)
		})
	}

	err := g.Wait()
	result := ingestResult{
		Processed: totalProcessed.Load(),
		Failed:    totalFailed.Load(),
		Duration:  time.Since(start),
	}
	return result, err
}

func (ing *ingester) produce(
	ctx context.Context,
	reader *ndjsonReader,
	fileIndex, lineOffset int,
	out chan<- batch,
) error {
	b := batch{fileIndex: fileIndex, lineOffset: lineOffset}
	seq := 0
	lines := 0

	send := func() bool {
		b.seq = seq
		select {
		case out <- b:
		case <-ctx.Done():
			return false
		}
		seq++
		lines = 0
		b = batch{docs: make([]searchgate.BulkDocument, 0, ing.batchSize), fileIndex: b.fileIndex, lineOffset: b.lineOffset}
		return true
	}

	var stopped bool
	err := reader.Read(fileIndex, lineOffset, func(l line) bool {
		if ctx.Err() != nil {
			stopped = true
			return false
		}
		b.fileIndex, b.lineOffset = l.FileIndex, l.LineOffset
		lines++

		switch {
		case l.Err != nil:
			b.invalid++
			ing.metrics.docsFailed.WithLabelValues(ing.index, "invalid_json").Inc()
			ing.logger.Debug("Skipping invalid line",
				zap.Int("file", l.FileIndex), zap.Int("line", l.LineOffset), zap.Error(l.Err))
		case len(l.Doc.Source) > 0:
			b.docs = append(b.docs, l.Doc)
		}

		if len(b.docs) >= ing.batchSize && !send() {
			stopped = true
			return false
		}
		return true
	})
	if err != nil {
		return err
	}
	if stopped {
		return ctx.Err()
	}
	if lines > 0 && !send() {
		return ctx.Err()
	}
	return nil
}

func (ing *ingester) worker(
	ctx context.Context,
	id int,
	batches <-chan batch,
	processed, failed *atomic.Int64,
) error {
	for b := range batches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := ing.processBatch(ctx, id, b, processed, failed); err != nil {
			return err
		}
	}
	return nil
}

func (ing *ingester) processBatch(
	ctx context.Context,
	id int,
	b batch,
	processed, failed *atomic.Int64,
) error {
	ok, bad := 0, b.invalid
	if len(b.docs) > 0 {
		start := time.Now()
		results, err := ing.docs.Bulk(ctx, b.docs)
		ing.metrics.batchDuration.WithLabelValues(ing.index).Observe(time.Since(start).Seconds())
		ing.metrics.batchesTotal.WithLabelValues(ing.index).Inc()

		if err != nil {
			return fmt.Errorf("batch %d: %w", b.seq, err)
		}
		if allUnavailable(results) {
			return fmt.Errorf("batch %d: %w", b.seq, results[0].Err)
		}

		var firstErr *searchgate.BulkResult
		for i := range results {
			if results[i].OK {
				ok++
				continue
			}
			bad++
			if firstErr == nil {
				firstErr = &results[i]
			}
		}
		ing.metrics.docsProcessed.WithLabelValues(ing.index).Add(float64(ok))
		if firstErr != nil {
			ing.metrics.docsFailed.WithLabelValues(ing.index, "item_error").Add(float64(bad - b.invalid))
			// First failure only, for diagnostics.
			ing.logger.Warn("Bulk items failed",
				zap.Int("worker", id),
				zap.Int("batch", b.seq),
				zap.Int("failed", bad-b.invalid),
				zap.String("first_id", firstErr.ID),
				zap.Int("first_status", firstErr.HTTPStatus),
				zap.Error(firstErr.Err),
			)
		}
	}

	processed.Add(int64(ok))
	failed.Add(int64(bad))
	ing.cursor.Complete(b.seq, progress{
		fileIndex:  b.fileIndex,
		lineOffset: b.lineOffset,
		processed:  ok,
		failed:     bad,
	})
	ing.metrics.cursorLine.Set(float64(b.lineOffset))

	total := processed.Load()
	if total%10000 < int64(ok) {
		ing.logger.Info("Progress", zap.Int64("processed", total), zap.Int64("failed", failed.Load()))
	}
	return nil
}

// allUnavailable reports a batch that never reached the cluster.
func allUnavailable(results []searchgate.BulkResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if r.OK || !errors.Is(r.Err, searchgate.ErrUnavailable) {
			return false
		}
	}
	return true
}

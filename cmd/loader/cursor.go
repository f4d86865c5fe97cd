// Cursor: load progress for resume. Stored as a JSON file next to the data,
// rewritten through a temp file every N lines.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Cursor is the position after the last contiguous batch that finished.
type Cursor struct {
	Index          string    `json:"index"`
	FileIndex      int       `json:"file_index"`
	LineOffset     int       `json:"line_offset"`
	TotalProcessed int64     `json:"total_processed"`
	TotalFailed    int64     `json:"total_failed"`
	Done           bool      `json:"done"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// progress is what one finished batch contributes to the cursor.
type progress struct {
	fileIndex  int
	lineOffset int
	processed  int
	failed     int
}

// cursorTracker is a concurrency-safe cursor with periodic saves.
// Batches finish out of order; the cursor only moves over an unbroken run of
// finished sequence numbers, so a resume never skips an unfinished batch.
type cursorTracker struct {
	mu        sync.Mutex
	saveMu    sync.Mutex // serializes snapshot, write and rename of the file
	cursor    Cursor
	path      string
	saveEvery int
	sinceSave int
	next      int
	pending   map[int]progress
	dirty     bool
	logger    *zap.Logger
}

// newCursorTracker loads the cursor of index from dataDir if present.
func newCursorTracker(dataDir, index string, saveEvery int, logger *zap.Logger) (*cursorTracker, error) {
	path := filepath.Join(filepath.Clean(dataDir), "cursor-"+index+".json")
	ct := &cursorTracker{
		cursor:    Cursor{Index: index},
		path:      path,
		saveEvery: saveEvery,
		pending:   make(map[int]progress),
		logger:    logger,
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &ct.cursor); err != nil {
			return nil, fmt.Errorf("parse cursor %s: %w", path, err)
		}
		logger.Info("Resume from cursor",
			zap.Int("file", ct.cursor.FileIndex),
			zap.Int("line", ct.cursor.LineOffset),
			zap.Int64("processed", ct.cursor.TotalProcessed),
			zap.Bool("done", ct.cursor.Done),
		)
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read cursor %s: %w", path, err)
	}

	return ct, nil
}

// Get returns a copy of the current cursor.
func (ct *cursorTracker) Get() Cursor {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.cursor
}

// Complete records batch seq. Sequence numbers start at 0 for every run.
func (ct *cursorTracker) Complete(seq int, p progress) {
	ct.mu.Lock()
	ct.pending[seq] = p
	for {
		np, ok := ct.pending[ct.next]
		if !ok {
			break
		}
		delete(ct.pending, ct.next)
		ct.next++

		ct.cursor.FileIndex = np.fileIndex
		ct.cursor.LineOffset = np.lineOffset
		ct.cursor.TotalProcessed += int64(np.processed)
		ct.cursor.TotalFailed += int64(np.failed)
		ct.cursor.UpdatedAt = time.Now()
		ct.sinceSave += np.processed + np.failed
		ct.dirty = true
	}
	shouldSave := ct.sinceSave >= ct.saveEvery
	ct.mu.Unlock()

	if shouldSave {
		ct.forceSave()
	}
}

// Flush writes pending changes to disk.
func (ct *cursorTracker) Flush() {
	ct.forceSave()
}

// Done marks the load complete.
func (ct *cursorTracker) Done() {
	ct.mu.Lock()
	ct.cursor.Done = true
	ct.cursor.UpdatedAt = time.Now()
	ct.dirty = true
	ct.mu.Unlock()
	ct.forceSave()
}

// Reset drops all progress.
func (ct *cursorTracker) Reset() {
	ct.mu.Lock()
	ct.cursor = Cursor{Index: ct.cursor.Index}
	ct.next = 0
	ct.pending = make(map[int]progress)
	ct.dirty = true
	ct.mu.Unlock()
	ct.forceSave()
}

func (ct *cursorTracker) forceSave() {
	ct.saveMu.Lock()
	defer ct.saveMu.Unlock()

	ct.mu.Lock()
	if !ct.dirty {
		ct.mu.Unlock()
		return
	}
	data, err := json.MarshalIndent(ct.cursor, "", "  ")
	if err != nil {
		ct.mu.Unlock()
		ct.logger.Error("Cursor marshal failed", zap.Error(err))
		return
	}
	ct.dirty = false
	ct.sinceSave = 0
	ct.mu.Unlock()

	tmp := ct.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		ct.logger.Error("Cursor write failed", zap.String("path", tmp), zap.Error(err))
		ct.markDirty()
		return
	}
	if err := os.Rename(tmp, ct.path); err != nil {
		ct.logger.Error("Cursor rename failed", zap.String("path", ct.path), zap.Error(err))
		ct.markDirty()
	}
}

func (ct *cursorTracker) markDirty() {
	ct.mu.Lock()
	ct.dirty = true
	ct.mu.Unlock()
}

// Streaming NDJSON reader with line-offset skip for resume.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	searchgate "github.com/kailas-cloud/searchgate/pkg/sdk"
)

// maxLineBytes caps a single document line.
const maxLineBytes = 16 << 20

var inputPatterns = []string{"*.ndjson", "*.jsonl"}

var errNotObject = errors.New("line is not a JSON object")

// ndjsonReader reads documents from an ordered list of files.
type ndjsonReader struct {
	files   []string
	idField string
}

// newNDJSONReader accepts a single file or a directory of *.ndjson / *.jsonl files.
func newNDJSONReader(input, idField string) (*ndjsonReader, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !info.IsDir() {
		return &ndjsonReader{files: []string{input}, idField: idField}, nil
	}

	var files []string
	for _, p := range inputPatterns {
		matches, err := filepath.Glob(filepath.Join(input, p))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", p, err)
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *.ndjson or *.jsonl files found in %s", input)
	}
	sort.Strings(files)
	return &ndjsonReader{files: files, idField: idField}, nil
}

// line is one input line. Err is set when the line is not a usable document.
// Blank lines come back with an empty Doc.Source and no error.
type line struct {
	FileIndex  int
	LineOffset int // lines consumed in the file, this one included
	Doc        searchgate.BulkDocument
	Err        error
}

// Read calls fn for every line from (fileIndex, lineOffset) on. fn returns false to stop.
func (r *ndjsonReader) Read(fileIndex, lineOffset int, fn func(l line) bool) error {
	for fi := fileIndex; fi < len(r.files); fi++ {
		skip := 0
		if fi == fileIndex {
			skip = lineOffset
		}
		stopped, err := r.readFile(fi, skip, fn)
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(r.files[fi]), err)
		}
		if stopped {
			return nil
		}
	}
	return nil
}

func (r *ndjsonReader) readFile(fi, skip int, fn func(l line) bool) (bool, error) {
	f, err := os.Open(filepath.Clean(r.files[fi]))
	if err != nil {
		return false, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineBytes)

	n := 0
	for sc.Scan() {
		n++
		if n <= skip {
			continue
		}
		l := line{FileIndex: fi, LineOffset: n}
		if raw := bytes.TrimSpace(sc.Bytes()); len(raw) > 0 {
			l.Doc, l.Err = parseLine(raw, r.idField)
		}
		if !fn(l) {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, fmt.Errorf("scan line %d: %w", n+1, err)
	}
	return false, nil
}

// parseLine turns one JSON object into a bulk document. A string or number in
// idField becomes the document id; the source is kept as is.
func parseLine(raw []byte, idField string) (searchgate.BulkDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return searchgate.BulkDocument{}, fmt.Errorf("%w: %w", errNotObject, err)
	}
	if fields == nil {
		return searchgate.BulkDocument{}, errNotObject
	}

	// Scanner reuses its buffer.
	doc := searchgate.BulkDocument{Source: append(json.RawMessage(nil), raw...)}
	if idField == "" {
		return doc, nil
	}
	idRaw, ok := fields[idField]
	if !ok {
		return doc, nil
	}

	var s string
	if err := json.Unmarshal(idRaw, &s); err == nil {
		doc.ID = s
		return doc, nil
	}
	var n json.Number
	if err := json.Unmarshal(idRaw, &n); err == nil {
		doc.ID = n.String()
		return doc, nil
	}
	return searchgate.BulkDocument{}, fmt.Errorf("field %q must be a string or number", idField)
}

package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MaxIDLength mirrors the cluster's 512-byte _id limit.
const MaxIDLength = 512

// Document is a stored document with its metadata (immutable value object).
type Document struct {
	index       string
	id          string
	version     int64
	seqNo       int64
	primaryTerm int64
	found       bool
	source      json.RawMessage
}

// New validates the addressing fields and normalizes source. id may be empty (cluster-generated).
func New(index, id string, source []byte) (Document, error) {
	if index == "" {
		return Document{}, errors.New("index is required")
	}
	if len(id) > MaxIDLength {
		return Document{}, fmt.Errorf("document ID too long (max %d bytes)", MaxIDLength)
	}
	src, err := NormalizeSource(source)
	if err != nil {
		return Document{}, err
	}
	return Document{index: index, id: id, source: src}, nil
}

// Reconstruct creates a Document without validation (response hydration).
func Reconstruct(index, id string, version, seqNo, primaryTerm int64, found bool, source []byte) Document {
	return Document{
		index: index, id: id,
		version: version, seqNo: seqNo, primaryTerm: primaryTerm,
		found: found, source: source,
	}
}

// Index returns the index name.
func (d *Document) Index() string { return d.index }

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Version returns the document version.
func (d *Document) Version() int64 { return d.version }

// SeqNo returns the sequence number of the last write.
func (d *Document) SeqNo() int64 { return d.seqNo }

// PrimaryTerm returns the primary term of the last write.
func (d *Document) PrimaryTerm() int64 { return d.primaryTerm }

// Found reports whether the cluster had the document.
func (d *Document) Found() bool { return d.found }

// Source returns the raw JSON source.
func (d *Document) Source() json.RawMessage { return d.source }

// NormalizeSource checks that b is a single JSON value and compacts it onto one line.
func NormalizeSource(b []byte) (json.RawMessage, error) {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.New("document body is required")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return nil, fmt.Errorf("document body is not valid JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// ValidateID rejects ids that cannot be routed.
func ValidateID(id string) error {
	if id == "" {
		return errors.New("document ID is required")
	}
	if len(id) > MaxIDLength {
		return fmt.Errorf("document ID too long (max %d bytes)", MaxIDLength)
	}
	return nil
}

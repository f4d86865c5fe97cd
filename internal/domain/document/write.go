package document

import "fmt"

// Write outcomes reported by the cluster.
const (
	ResultCreated  = "created"
	ResultUpdated  = "updated"
	ResultDeleted  = "deleted"
	ResultNoop     = "noop"
	ResultNotFound = "not_found"
)

// WriteResult is the cluster's acknowledgement of a single-document write.
type WriteResult struct {
	index       string
	id          string
	version     int64
	result      string
	seqNo       int64
	primaryTerm int64
}

// NewWriteResult creates a write acknowledgement.
func NewWriteResult(index, id string, version int64, result string, seqNo, primaryTerm int64) WriteResult {
	return WriteResult{index: index, id: id, version: version, result: result, seqNo: seqNo, primaryTerm: primaryTerm}
}

// Index returns the index name.
func (w *WriteResult) Index() string { return w.index }

// ID returns the (possibly generated) document identifier.
func (w *WriteResult) ID() string { return w.id }

// Version returns the document version after the write.
func (w *WriteResult) Version() int64 { return w.version }

// Result returns the outcome, e.g. ResultCreated.
func (w *WriteResult) Result() string { return w.result }

// SeqNo returns the sequence number assigned to the write.
func (w *WriteResult) SeqNo() int64 { return w.seqNo }

// PrimaryTerm returns the primary term of the write.
func (w *WriteResult) PrimaryTerm() int64 { return w.primaryTerm }

// Refresh controls when a write becomes visible to search.
type Refresh string

// Refresh policies accepted by the cluster.
const (
	RefreshDefault Refresh = ""
	RefreshTrue    Refresh = "true"
	RefreshFalse   Refresh = "false"
	RefreshWaitFor Refresh = "wait_for"
)

// ParseRefresh validates a refresh query parameter. Empty keeps the cluster default.
func ParseRefresh(s string) (Refresh, error) {
	switch r := Refresh(s); r {
	case RefreshDefault, RefreshTrue, RefreshFalse, RefreshWaitFor:
		return r, nil
	default:
		return "", fmt.Errorf("refresh must be one of true, false, wait_for, got %q", s)
	}
}

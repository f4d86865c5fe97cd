package searchgate

import (
	"encoding/json"
	"time"

	domdoc "github.com/kailas-cloud/searchgate/internal/domain/document"
)

// Refresh controls when a write becomes visible to search.
type Refresh = domdoc.Refresh

// Refresh policies.
const (
	RefreshDefault = domdoc.RefreshDefault
	RefreshTrue    = domdoc.RefreshTrue
	RefreshFalse   = domdoc.RefreshFalse
	RefreshWaitFor = domdoc.RefreshWaitFor
)

// ClusterInfo is the cluster's root document.
type ClusterInfo struct {
	Name          string
	ClusterName   string
	ClusterUUID   string
	VersionNumber string
	Distribution  string
	// Raw is the body exactly as the cluster sent it.
	Raw json.RawMessage
}

// ClusterHealth summarizes shard allocation.
type ClusterHealth struct {
	ClusterName         string
	Status              string // green, yellow, red
	TimedOut            bool
	NumberOfNodes       int
	NumberOfDataNodes   int
	ActivePrimaryShards int
	ActiveShards        int
	RelocatingShards    int
	InitializingShards  int
	UnassignedShards    int
}

// IndexInfo is one index listing entry.
type IndexInfo struct {
	Name             string
	Health           string
	Status           string
	UUID             string
	Primaries        int
	Replicas         int
	DocsCount        int64
	DocsDeleted      int64
	StoreSize        string
	PrimaryStoreSize string
}

// Document is a stored document with its concurrency metadata.
type Document struct {
	Index       string
	ID          string
	Version     int64
	SeqNo       int64
	PrimaryTerm int64
	Source      json.RawMessage
}

// WriteResult acknowledges a single-document write.
type WriteResult struct {
	Index       string
	ID          string
	Version     int64
	Result      string // created, updated, deleted, noop
	SeqNo       int64
	PrimaryTerm int64
}

// BulkDocument is one document to index. Empty ID lets the cluster generate one.
type BulkDocument struct {
	ID     string
	Source json.RawMessage
}

// BulkResult is the outcome of one bulk document, in input order.
type BulkResult struct {
	ID         string
	OK         bool
	Result     string
	HTTPStatus int
	Err        error
}

// SearchResult is one page of hits.
type SearchResult struct {
	Total    int64
	Relation string // eq or gte
	MaxScore float64
	Took     time.Duration
	Hits     []Hit
}

// Hit is one matching document.
type Hit struct {
	Index  string
	ID     string
	Score  float64
	Source json.RawMessage
}

// HealthStatus represents the aggregated gateway health.
type HealthStatus struct {
	Status string            // "ok", "degraded"
	Checks map[string]string // component -> "ok"/"error"
}

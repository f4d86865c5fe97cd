// Package cluster holds the cluster-level metadata value objects.
package cluster

import "encoding/json"

// Health status colors.
const (
	StatusGreen  = "green"
	StatusYellow = "yellow"
	StatusRed    = "red"
)

// Info is the answer of GET /. Raw keeps the body exactly as the cluster sent it.
type Info struct {
	Name          string
	ClusterName   string
	ClusterUUID   string
	VersionNumber string
	Distribution  string
	Raw           json.RawMessage
}

// Health is the answer of GET /_cluster/health.
type Health struct {
	ClusterName         string
	Status              string
	TimedOut            bool
	NumberOfNodes       int
	NumberOfDataNodes   int
	ActivePrimaryShards int
	ActiveShards        int
	RelocatingShards    int
	InitializingShards  int
	UnassignedShards    int
}

// Serving reports whether every primary shard is allocated.
func (h Health) Serving() bool {
	return h.Status == StatusGreen || h.Status == StatusYellow
}

package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
	"github.com/kailas-cloud/searchgate/internal/repository/upstream"
)

// store is the consumer interface for cluster metadata (ISP).
type store interface {
	Ping(ctx context.Context) error
	Info(ctx context.Context) ([]byte, error)
	ClusterHealth(ctx context.Context) ([]byte, error)
}

// Repo implements usecase/cluster.Repository.
type Repo struct {
	store store
}

// New creates a cluster repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Ping checks that the cluster answers HEAD /.
func (r *Repo) Ping(ctx context.Context) error {
	return upstream.Wrap(r.store.Ping(ctx))
}

// Info returns the root endpoint metadata together with the untouched body.
func (r *Repo) Info(ctx context.Context) (domcluster.Info, error) {
	raw, err := r.store.Info(ctx)
	if err != nil {
		return domcluster.Info{}, upstream.Wrap(err)
	}
	var d infoDTO
	if err := json.Unmarshal(raw, &d); err != nil {
		return domcluster.Info{}, fmt.Errorf("decode info: %w", err)
	}
	return domcluster.Info{
		Name:          d.Name,
		ClusterName:   d.ClusterName,
		ClusterUUID:   d.ClusterUUID,
		VersionNumber: d.Version.Number,
		Distribution:  d.Version.Distribution,
		Raw:           raw,
	}, nil
}

// Health returns the cluster health summary.
func (r *Repo) Health(ctx context.Context) (domcluster.Health, error) {
	raw, err := r.store.ClusterHealth(ctx)
	if err != nil {
		return domcluster.Health{}, upstream.Wrap(err)
	}
	var d healthDTO
	if err := json.Unmarshal(raw, &d); err != nil {
		return domcluster.Health{}, fmt.Errorf("decode cluster health: %w", err)
	}
	return domcluster.Health{
		ClusterName:         d.ClusterName,
		Status:              d.Status,
		TimedOut:            d.TimedOut,
		NumberOfNodes:       d.NumberOfNodes,
		NumberOfDataNodes:   d.NumberOfDataNodes,
		ActivePrimaryShards: d.ActivePrimaryShards,
		ActiveShards:        d.ActiveShards,
		RelocatingShards:    d.RelocatingShards,
		InitializingShards:  d.InitializingShards,
		UnassignedShards:    d.UnassignedShards,
	}, nil
}

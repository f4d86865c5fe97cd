package cluster

import (
	"context"

	domcluster "github.com/kailas-cloud/searchgate/internal/domain/cluster"
)

// Repository reads cluster metadata.
type Repository interface {
	Info(ctx context.Context) (domcluster.Info, error)
	Health(ctx context.Context) (domcluster.Health, error)
}

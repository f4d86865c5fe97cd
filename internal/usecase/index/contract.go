package index

import (
	"context"

	domindex "github.com/kailas-cloud/searchgate/internal/domain/index"
)

// Repository manages indices.
type Repository interface {
	List(ctx context.Context, pattern string) ([]domindex.Info, error)
	Create(ctx context.Context, name string, body []byte) error
	Delete(ctx context.Context, name string) error
	Exists(ctx context.Context, name string) (bool, error)
}

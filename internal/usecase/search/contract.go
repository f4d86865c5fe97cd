package search

import (
	"context"

	"github.com/kailas-cloud/searchgate/internal/domain/search/request"
	"github.com/kailas-cloud/searchgate/internal/domain/search/result"
)

// Repository runs queries against an index.
type Repository interface {
	Search(ctx context.Context, index string, req *request.Request) (result.Result, error)
	Count(ctx context.Context, index string) (int64, error)
}

package ports

import (
	"context"
	"time"

	"github.com/skyemovie/skyemovie/internal/domain/model"
)

// CatalogClient fetches normalized movie/TV metadata from the upstream
// metadata provider. Implementations tag each item's media type at the
// boundary; nothing downstream re-derives it.
type CatalogClient interface {
	DiscoverMovies(ctx context.Context) ([]model.ContentItem, error)
	DiscoverTV(ctx context.Context) ([]model.ContentItem, error)
	SearchMulti(ctx context.Context, query string) ([]model.ContentItem, error)
}

// CacheRepository provides byte-level caching with TTLs. A nil value
// with a nil error from Get means a miss.
type CacheRepository interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Health(ctx context.Context) error
}

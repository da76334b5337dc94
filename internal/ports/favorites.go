package ports

import (
	"context"

	"github.com/skyemovie/skyemovie/internal/domain/model"
)

// FavoriteRepository persists per-user favorites. Add is a conditional
// insert: saving an already-saved title reports created=false and
// leaves the existing row untouched.
type FavoriteRepository interface {
	Add(ctx context.Context, params model.NewFavoriteParams) (fav model.Favorite, created bool, err error)
	Remove(ctx context.Context, userUID string, tmdbID int64, mediaType model.MediaType) error
	ListByUser(ctx context.Context, userUID string) ([]model.Favorite, error)
	WaitForChange(ctx context.Context, userUID string) error
}

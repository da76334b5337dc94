package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skyemovie/skyemovie/internal/domain/favorites"
	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/ports"
)

// FavoriteServiceOptions groups dependencies for FavoriteService.
type FavoriteServiceOptions struct {
	Repo     ports.FavoriteRepository
	Notifier favorites.Notifier
	Logger   *slog.Logger
}

// FavoriteService orchestrates saving, removing, listing, and live
// subscription of per-user favorites.
type FavoriteService struct {
	repo     ports.FavoriteRepository
	notifier favorites.Notifier
	logger   *slog.Logger
}

// NewFavoriteService constructs a new FavoriteService.
func NewFavoriteService(opts FavoriteServiceOptions) *FavoriteService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoriteService{
		repo:     opts.Repo,
		notifier: opts.Notifier,
		logger:   logger.With("component", "favorites"),
	}
}

// Save stores a catalog item as a favorite for userUID. Saving an
// already-saved item is a quiet no-op: the stored favorite is returned
// and created is false.
func (s *FavoriteService) Save(ctx context.Context, userUID string, item model.ContentItem) (model.Favorite, bool, error) {
	if userUID == "" {
		return model.Favorite{}, false, apperrors.Validation("user identity is required")
	}
	if item.TMDBID == 0 {
		return model.Favorite{}, false, apperrors.ValidationField("tmdb_id", "tmdb id is required")
	}
	if !item.MediaType.Valid() {
		return model.Favorite{}, false, apperrors.ValidationField("media_type", "media type must be movie or tv")
	}
	if item.Title == "" {
		return model.Favorite{}, false, apperrors.ValidationField("title", "title is required")
	}

	fav, created, err := s.repo.Add(ctx, model.NewFavoriteParams{
		UserUID:   userUID,
		TMDBID:    item.TMDBID,
		MediaType: item.MediaType,
		Title:     item.Title,
		PosterURL: item.PosterURL,
	})
	if err != nil {
		return model.Favorite{}, false, fmt.Errorf("save favorite: %w", err)
	}
	return fav, created, nil
}

// Remove deletes a favorite for userUID.
func (s *FavoriteService) Remove(ctx context.Context, userUID string, tmdbID int64, mediaType model.MediaType) error {
	if userUID == "" {
		return apperrors.Validation("user identity is required")
	}
	if err := s.repo.Remove(ctx, userUID, tmdbID, mediaType); err != nil {
		return err
	}
	return nil
}

// List returns a snapshot of userUID's favorites, newest first. The
// returned slice is owned by the caller.
func (s *FavoriteService) List(ctx context.Context, userUID string) ([]model.Favorite, error) {
	if userUID == "" {
		return nil, apperrors.Validation("user identity is required")
	}
	list, err := s.repo.ListByUser(ctx, userUID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return list, nil
}

// Subscribe registers for change signals on userUID's favorites.
// Callers receive a signal per change (coalesced under load) and fetch
// a fresh snapshot via List; signals carry no data of their own.
func (s *FavoriteService) Subscribe(userUID string) (func(), <-chan struct{}) {
	return s.notifier.Subscribe(userUID)
}

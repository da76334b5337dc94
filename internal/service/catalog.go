package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
	"github.com/skyemovie/skyemovie/internal/ports"
)

const discoverCacheKey = "catalog:discover:v1"

// CatalogServiceOptions groups dependencies for CatalogService.
type CatalogServiceOptions struct {
	Client ports.CatalogClient
	Cache  ports.CacheRepository
	// CacheTTL bounds how long the discover page is served from cache.
	// Zero disables caching.
	CacheTTL time.Duration
	Logger   *slog.Logger
}

// CatalogService fetches and caches upstream movie/TV metadata.
type CatalogService struct {
	client   ports.CatalogClient
	cache    ports.CacheRepository
	cacheTTL time.Duration
	logger   *slog.Logger

	searchGen atomic.Uint64
}

// NewCatalogService constructs a new CatalogService.
func NewCatalogService(opts CatalogServiceOptions) *CatalogService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		client:   opts.Client,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		logger:   logger.With("component", "catalog"),
	}
}

// Discover returns the landing page catalog: popular movies and TV
// shows fetched concurrently, served from cache when fresh. Cache
// failures degrade to a direct fetch rather than an error.
func (s *CatalogService) Discover(ctx context.Context) (model.DiscoverPage, error) {
	if cached, ok := s.cachedDiscover(ctx); ok {
		return cached, nil
	}

	var page model.DiscoverPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		movies, err := s.client.DiscoverMovies(gctx)
		if err != nil {
			return err
		}
		page.Movies = movies
		return nil
	})
	g.Go(func() error {
		shows, err := s.client.DiscoverTV(gctx)
		if err != nil {
			return err
		}
		page.Shows = shows
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.DiscoverPage{}, fmt.Errorf("discover: %w", err)
	}

	s.storeDiscover(ctx, page)
	return page, nil
}

// Search runs a multi search and stamps the result with a request
// generation. Each call advances the generation, so a caller holding
// results from an older call can detect they are stale.
func (s *CatalogService) Search(ctx context.Context, query string) (model.SearchResult, error) {
	gen := s.searchGen.Add(1)

	query = strings.TrimSpace(query)
	if query == "" {
		return model.SearchResult{Generation: gen}, nil
	}

	items, err := s.client.SearchMulti(ctx, query)
	if err != nil {
		return model.SearchResult{}, fmt.Errorf("search %q: %w", query, err)
	}

	return model.SearchResult{
		Query:      query,
		Generation: gen,
		Items:      items,
	}, nil
}

// CurrentSearchGeneration returns the most recently issued generation.
func (s *CatalogService) CurrentSearchGeneration() uint64 {
	return s.searchGen.Load()
}

// InvalidateDiscover drops the cached discover page.
func (s *CatalogService) InvalidateDiscover(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, discoverCacheKey); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate discover cache", "err", err)
	}
}

func (s *CatalogService) cachedDiscover(ctx context.Context) (model.DiscoverPage, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return model.DiscoverPage{}, false
	}

	raw, err := s.cache.Get(ctx, discoverCacheKey)
	if err != nil {
		s.logger.WarnContext(ctx, "discover cache read failed", "err", err)
		metrics.DiscoverCacheHits.WithLabelValues("error").Inc()
		return model.DiscoverPage{}, false
	}
	if raw == nil {
		metrics.DiscoverCacheHits.WithLabelValues("miss").Inc()
		return model.DiscoverPage{}, false
	}

	var page model.DiscoverPage
	if unmarshalErr := json.Unmarshal(raw, &page); unmarshalErr != nil {
		s.logger.WarnContext(ctx, "discover cache entry is corrupt", "err", unmarshalErr)
		metrics.DiscoverCacheHits.WithLabelValues("error").Inc()
		return model.DiscoverPage{}, false
	}
	metrics.DiscoverCacheHits.WithLabelValues("hit").Inc()
	return page, true
}

func (s *CatalogService) storeDiscover(ctx context.Context, page model.DiscoverPage) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(page)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to marshal discover page for cache", "err", err)
		return
	}
	if setErr := s.cache.Set(ctx, discoverCacheKey, raw, s.cacheTTL); setErr != nil {
		s.logger.WarnContext(ctx, "discover cache write failed", "err", setErr)
	}
}

// IsUpstreamError reports whether err came from the metadata provider
// rather than this application.
func IsUpstreamError(err error) bool {
	return apperrors.IsFetch(err) || apperrors.IsConfig(err)
}

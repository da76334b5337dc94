package bootstrap

import (
	"database/sql"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/skyemovie/skyemovie/config"
	redisadapter "github.com/skyemovie/skyemovie/internal/adapters/redis"
	"github.com/skyemovie/skyemovie/internal/adapters/tmdb"
	"github.com/skyemovie/skyemovie/internal/data"
	"github.com/skyemovie/skyemovie/internal/domain/favorites"
	"github.com/skyemovie/skyemovie/internal/service"
)

// ServiceDeps contains the shared infrastructure services are built on.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

// ServiceContainer holds the application services wired together.
type ServiceContainer struct {
	Auth      *service.AuthService
	Access    *service.AccessService
	Catalog   *service.CatalogService
	Favorites *service.FavoriteService
	Player    *service.PlayerService
	Flash     *service.FlashService

	// Notifier is exposed for shutdown (StopAll closes listen loops).
	Notifier favorites.Notifier
}

// NewServices constructs repositories, adapters, and services.
func NewServices(deps *ServiceDeps) ServiceContainer {
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sessionStore := redisadapter.NewSessionStore(deps.RedisClient)
	grantStore := redisadapter.NewGrantStore(deps.RedisClient)
	cacheRepo := data.NewRedisCacheRepo(deps.RedisClient)
	userRepo := data.NewUserRepo(deps.DB)
	favoriteRepo := data.NewFavoriteRepo(deps.DB)
	tmdbClient := tmdb.NewClient(cfg.Catalog)

	notifier, err := favorites.NewNotifier(favorites.NotifierOptions{Waiter: favoriteRepo})
	if err != nil {
		// Only reachable with a nil waiter, which cannot happen here.
		panic(err)
	}

	return ServiceContainer{
		Auth: service.NewAuthService(service.AuthServiceOptions{
			Sessions: sessionStore,
			Users:    userRepo,
			Config:   cfg.Auth,
		}),
		Access: service.NewAccessService(service.AccessServiceOptions{
			Grants: grantStore,
			Config: cfg.Access,
		}),
		Catalog: service.NewCatalogService(service.CatalogServiceOptions{
			Client:   tmdbClient,
			Cache:    cacheRepo,
			CacheTTL: cfg.Catalog.DiscoverCacheTTL,
			Logger:   logger,
		}),
		Favorites: service.NewFavoriteService(service.FavoriteServiceOptions{
			Repo:     favoriteRepo,
			Notifier: notifier,
			Logger:   logger,
		}),
		Player: service.NewPlayerService(cfg.Player),
		Flash: service.NewFlashService(service.FlashServiceOptions{
			Cache: cacheRepo,
			TTL:   cfg.Cache.NoticeTTL,
		}),
		Notifier: notifier,
	}
}

package bootstrap

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/skyemovie/skyemovie/config"
	httpx "github.com/skyemovie/skyemovie/internal/http"
)

// HTTPServerConfig contains configuration for the HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient goredis.UniversalClient
	Logger      *slog.Logger
}

type dbPinger struct{ db *sql.DB }

func (p dbPinger) Ping(ctx context.Context) error { return p.db.PingContext(ctx) }

type redisPinger struct{ client goredis.UniversalClient }

func (p redisPinger) Ping(ctx context.Context) error { return p.client.Ping(ctx).Err() }

// StartHTTPServer builds the router, wraps it in middleware, and starts
// listening. Returns the server instance for graceful shutdown.
func StartHTTPServer(cfg *HTTPServerConfig) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	appCfg := cfg.Config

	services := httpx.RouterServices{
		Auth:         cfg.Services.Auth,
		Access:       cfg.Services.Access,
		Catalog:      cfg.Services.Catalog,
		Favorites:    cfg.Services.Favorites,
		Player:       cfg.Services.Player,
		Flash:        cfg.Services.Flash,
		CookieDomain: appCfg.HTTP.CookieDomain,
		IsDev:        appCfg.IsDev,
		Logger:       logger,
	}
	if cfg.DB != nil {
		services.DB = dbPinger{db: cfg.DB}
	}
	if cfg.RedisClient != nil {
		services.Cache = redisPinger{client: cfg.RedisClient}
	}

	router, err := httpx.NewRouter(services)
	if err != nil {
		return nil, err
	}

	// Order: Recover -> Logging -> Compression -> Router
	h := router
	if appCfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", appCfg.HTTP.CompressionLevel)
		h = httpx.Compression(appCfg.HTTP.CompressionLevel)(h)
	}
	h = httpx.Logging(logger)(h)
	h = httpx.Recover(logger)(h)

	addr := appCfg.HTTP.Addr
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:        addr,
		Handler:     h,
		ReadTimeout: 30 * time.Second,
		// Caps open favorites streams too; EventSource reconnects, so the
		// limit acts as a periodic resync rather than a hard failure.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
		}
	}()

	return server, nil
}

// ShutdownHTTPServer gracefully shuts down the HTTP server and stops the
// favorites change listeners so streaming responses unblock.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, services ServiceContainer, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger != nil {
		logger.Info("shutting down HTTP server")
	}

	if services.Notifier != nil {
		services.Notifier.StopAll()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if logger != nil {
		logger.Info("HTTP server stopped")
	}
	return nil
}

// RunWithShutdown starts the HTTP server and blocks until SIGINT or
// SIGTERM, then shuts everything down in order.
func RunWithShutdown(cfg *HTTPServerConfig) error {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	server, err := StartHTTPServer(cfg)
	if err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	logger.Info("received shutdown signal", "signal", sig.String())

	return ShutdownHTTPServer(context.Background(), server, cfg.Services, logger)
}

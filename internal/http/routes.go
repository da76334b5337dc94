package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	skyemovie "github.com/skyemovie/skyemovie"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
	"github.com/skyemovie/skyemovie/internal/service"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Auth      *service.AuthService
	Access    *service.AccessService
	Catalog   *service.CatalogService
	Favorites *service.FavoriteService
	Player    *service.PlayerService
	Flash     *service.FlashService

	// Optional readiness probes for /healthz.
	DB    Pinger
	Cache Pinger

	CookieDomain string
	IsDev        bool // serve templates and assets from disk for hot reloading
	Logger       *slog.Logger
}

// NewRouter builds the complete HTTP handler: routes, session provisioning,
// the access gate, CSRF protection, and browser detection.
func NewRouter(services RouterServices) (http.Handler, error) {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer, err := NewTemplateRenderer(templateFS(services.IsDev), logger)
	if err != nil {
		return nil, err
	}

	ui := &UIHandlers{
		T:            renderer,
		Auth:         services.Auth,
		Access:       services.Access,
		Catalog:      services.Catalog,
		Favorites:    services.Favorites,
		Player:       services.Player,
		Flash:        services.Flash,
		CookieDomain: services.CookieDomain,
		Logger:       logger,
	}

	mux := http.NewServeMux()

	// Routes behind the access gate.
	gated := http.NewServeMux()
	gated.HandleFunc("GET /{$}", ui.Home)
	gated.HandleFunc("GET /search", ui.SearchPage)
	gated.HandleFunc("GET /favorites", ui.FavoritesPage)
	gated.HandleFunc("POST /favorites", ui.SaveFavorite)
	gated.HandleFunc("DELETE /favorites/{type}/{id}", ui.RemoveFavorite)
	gated.HandleFunc("POST /favorites/{type}/{id}/delete", ui.RemoveFavorite) // no-JS fallback
	gated.HandleFunc("GET /favorites/stream", ui.FavoritesStream)
	gated.HandleFunc("GET /watch/{type}/{id}", ui.Watch)
	gated.HandleFunc("GET /login", ui.LoginPage)
	gated.HandleFunc("GET /register", ui.RegisterPage)
	gated.HandleFunc("POST /login", ui.Login)
	gated.HandleFunc("POST /register", ui.Register)
	gated.HandleFunc("POST /logout", ui.Logout)

	// JSON mirror of the browser routes, for non-browser clients.
	gated.HandleFunc("GET /api/catalog/discover", ui.APIDiscover)
	gated.HandleFunc("GET /api/catalog/search", ui.APISearch)
	gated.HandleFunc("GET /api/favorites", ui.APIListFavorites)
	gated.HandleFunc("POST /api/favorites", ui.APISaveFavorite)
	gated.HandleFunc("DELETE /api/favorites/{type}/{id}", ui.APIRemoveFavorite)
	gated.HandleFunc("GET /api/auth/status", ui.APIAuthStatus)
	gated.HandleFunc("POST /api/auth/login", ui.APILogin)
	gated.HandleFunc("POST /api/auth/register", ui.APIRegister)
	gated.HandleFunc("POST /api/auth/logout", ui.APILogout)

	// Unknown paths fall through the gated mux, so the friendly 404 page
	// sits inside the gate wrapper.
	mux.Handle("/", RequireAccess(services.Access, logger)(&notFoundHandler{mux: gated, ui: ui}))

	// The gate itself and operational endpoints stay outside it.
	mux.HandleFunc("GET /gate", ui.GatePage)
	mux.HandleFunc("POST /gate", ui.SubmitAccessCode)
	mux.HandleFunc("POST /api/session/token", ui.ExchangeToken)
	mux.HandleFunc("POST /api/access/submit", ui.APISubmitAccessCode)
	mux.HandleFunc("GET /flash", ui.FlashFragment)
	mux.HandleFunc("POST /flash/dismiss", ui.DismissFlash)
	mux.Handle("GET /healthz", &HealthHandler{DB: services.DB, Cache: services.Cache})
	mux.Handle("HEAD /healthz", &HealthHandler{DB: services.DB, Cache: services.Cache})
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("GET /static/", staticHandler(services.IsDev))

	handler := CSRF()(mux)
	handler = EnsureSession(services.Auth, services.CookieDomain, logger)(handler)
	return BrowserDetection()(handler), nil
}

// templateFS picks disk templates in dev mode and the embedded tree in
// production.
func templateFS(isDev bool) fs.FS {
	if isDev {
		return os.DirFS("frontend/templates")
	}
	sub, err := fs.Sub(skyemovie.TemplateFS, "frontend/templates")
	if err != nil {
		// Embed paths are fixed at build time; reaching this means the
		// binary is broken.
		panic("templates: " + err.Error())
	}
	return sub
}

// staticHandler serves /static/ assets, from disk in dev mode and from the
// embedded filesystem in production.
func staticHandler(isDev bool) http.Handler {
	var fsys fs.FS
	if isDev {
		fsys = os.DirFS("frontend/static")
	} else {
		sub, err := fs.Sub(skyemovie.StaticFS, "frontend/static")
		if err != nil {
			panic("static assets: " + err.Error())
		}
		fsys = sub
	}
	inner := http.StripPrefix("/static/", http.FileServerFS(fsys))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isDev {
			w.Header().Set("Cache-Control", "public, max-age=86400")
		}
		inner.ServeHTTP(w, r)
	})
}

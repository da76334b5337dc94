package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skyemovie/skyemovie/config"
	"github.com/skyemovie/skyemovie/internal/data"
	"github.com/skyemovie/skyemovie/internal/domain/favorites"
	"github.com/skyemovie/skyemovie/internal/domain/model"
	"github.com/skyemovie/skyemovie/internal/mocks"
	"github.com/skyemovie/skyemovie/internal/service"
)

type routerFixture struct {
	handler   http.Handler
	sessions  *mocks.MemorySessionStore
	grants    *mocks.MemoryGrantStore
	catalog   *mocks.StubCatalogClient
	favorites *mocks.MemoryFavoriteRepo
	access    *service.AccessService
	auth      *service.AuthService
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	sessions := mocks.NewMemorySessionStore()
	users := mocks.NewMemoryUserRepo(data.ErrUserNotFound, data.ErrEmailExists)
	grants := mocks.NewMemoryGrantStore()
	favRepo := mocks.NewMemoryFavoriteRepo(data.ErrFavoriteNotFound)
	catalog := &mocks.StubCatalogClient{
		Movies: []model.ContentItem{{TMDBID: 1, MediaType: model.MediaTypeMovie, Title: "Deep Orbit", Year: "2024", PosterURL: model.PlaceholderPosterURL}},
		Shows:  []model.ContentItem{{TMDBID: 2, MediaType: model.MediaTypeTV, Title: "Harbor Lights", Year: "2023", PosterURL: model.PlaceholderPosterURL}},
	}

	notifier, err := favorites.NewNotifier(favorites.NotifierOptions{Waiter: favRepo})
	require.NoError(t, err)
	t.Cleanup(notifier.StopAll)

	logger := slog.New(slog.DiscardHandler)

	auth := service.NewAuthService(service.AuthServiceOptions{
		Sessions: sessions,
		Users:    users,
		Config: config.AuthConfig{
			SessionTTL:          720 * time.Hour,
			AnonymousSessionTTL: 720 * time.Hour,
			BcryptCost:          4,
			MinPasswordLength:   6,
		},
	})
	access := service.NewAccessService(service.AccessServiceOptions{
		Grants: grants,
		Config: config.AccessConfig{Code: "1234"},
	})
	cache := mocks.NewMemoryCache()

	handler, err := NewRouter(RouterServices{
		Auth:   auth,
		Access: access,
		Catalog: service.NewCatalogService(service.CatalogServiceOptions{
			Client: catalog,
			Logger: logger,
		}),
		Favorites: service.NewFavoriteService(service.FavoriteServiceOptions{
			Repo:     favRepo,
			Notifier: notifier,
			Logger:   logger,
		}),
		Player: service.NewPlayerService(config.PlayerConfig{
			MovieBaseURL: "https://player.example.com/watch/movie",
			TVBaseURL:    "https://player.example.com/watch/tv",
		}),
		Flash: service.NewFlashService(service.FlashServiceOptions{Cache: cache}),
		Logger: logger,
	})
	require.NoError(t, err)

	return &routerFixture{
		handler:   handler,
		sessions:  sessions,
		grants:    grants,
		catalog:   catalog,
		favorites: favRepo,
		access:    access,
		auth:      auth,
	}
}

// browseGet performs a GET with browser-ish headers, carrying cookies
// forward from previous responses.
func (f *routerFixture) do(t *testing.T, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req.Header.Set("Accept", "text/html")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

// mergeCookies folds newly set cookies over the existing jar.
func mergeCookies(jar []*http.Cookie, res *http.Response) []*http.Cookie {
	byName := map[string]*http.Cookie{}
	for _, c := range jar {
		byName[c.Name] = c
	}
	for _, c := range res.Cookies() {
		byName[c.Name] = c
	}
	out := make([]*http.Cookie, 0, len(byName))
	for _, c := range byName {
		out = append(out, c)
	}
	return out
}

// unlock walks the gate flow and returns a cookie jar holding a granted
// gate identity, a session, and a CSRF token.
func (f *routerFixture) unlock(t *testing.T) []*http.Cookie {
	t.Helper()

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/gate", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jar := mergeCookies(nil, rec.Result())

	csrf := cookieValue(jar, "csrf_token")
	require.NotEmpty(t, csrf)

	req := httptest.NewRequest(http.MethodPost, "/gate", formBody("code=1234"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Csrf-Token", csrf)
	rec = f.do(t, req, jar)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	return mergeCookies(jar, rec.Result())
}

func formBody(s string) io.Reader {
	return strings.NewReader(s)
}

func cookieValue(jar []*http.Cookie, name string) string {
	for _, c := range jar {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
)

func TestGateBlocksContentRoutes(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/gate", rec.Header().Get("Location"))
}

func TestGateWrongCodeShowsDigitHint(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/gate", nil), nil)
	jar := mergeCookies(nil, rec.Result())
	csrf := cookieValue(jar, "csrf_token")

	req := httptest.NewRequest(http.MethodPost, "/gate", formBody("code=9999"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Csrf-Token", csrf)
	rec = f.do(t, req, jar)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid code.")
	assert.Contains(t, rec.Body.String(), "Hint: 4 digits.")
}

func TestUnlockThenDiscoverRenders(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Popular Movies")
	assert.Contains(t, body, "Deep Orbit")
	assert.Contains(t, body, "Harbor Lights")
}

func TestAnonymousSessionMintedWithCookie(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/gate", nil), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, cookieValue(mergeCookies(nil, rec.Result()), "session_id"))
	assert.Equal(t, 1, f.sessions.Len())
}

func TestSessionReusedAcrossRequests(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	f.do(t, httptest.NewRequest(http.MethodGet, "/", nil), jar)
	f.do(t, httptest.NewRequest(http.MethodGet, "/search", nil), jar)
	assert.Equal(t, 1, f.sessions.Len())
}

func TestSearchPartialEchoesGeneration(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	req := httptest.NewRequest(http.MethodGet, "/search?q=orbit", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "search-results")
	rec := f.do(t, req, jar)

	require.Equal(t, http.StatusOK, rec.Code)
	gen := rec.Header().Get("X-Search-Generation")
	assert.NotEmpty(t, gen)
	assert.Contains(t, rec.Body.String(), `data-generation="`+gen+`"`)
}

func TestSearchWithoutMatchesShowsInfoNotice(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	// The stub has no search results, so any query comes back empty.
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/search?q=nothingmatches", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No results found.")
	assert.Contains(t, rec.Body.String(), "notice-info")
}

func TestBlankSearchSubmitRedirectsToDiscover(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/search?q=++", nil), jar)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// Visiting the search page without a query is not a blank submit.
	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/search", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestFavoriteAddAndRemoveFlow(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)
	csrf := cookieValue(jar, "csrf_token")

	req := httptest.NewRequest(http.MethodPost, "/favorites",
		formBody("tmdb_id=1&media_type=movie&title=Deep+Orbit&poster_url=http://img"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Csrf-Token", csrf)
	req.Header.Set("HX-Request", "true")
	rec := f.do(t, req, jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("HX-Trigger"), "favorites:changed")
	assert.Contains(t, rec.Body.String(), "Added")

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/favorites", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deep Orbit")

	req = httptest.NewRequest(http.MethodDelete, "/favorites/movie/1", nil)
	req.Header.Set("X-Csrf-Token", csrf)
	req.Header.Set("HX-Request", "true")
	rec = f.do(t, req, jar)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/favorites", nil), jar)
	assert.Contains(t, rec.Body.String(), "No favorites yet")
}

func TestDuplicateFavoriteAddShowsInfoNotice(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)
	csrf := cookieValue(jar, "csrf_token")

	save := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/favorites",
			formBody("tmdb_id=9&media_type=movie&title=Ember&poster_url="))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("HX-Request", "true")
		req.Header.Set("X-Csrf-Token", csrf)
		return f.do(t, req, jar)
	}

	rec := save()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Added")

	// The same item again writes nothing but still tells the visitor so.
	rec = save()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Already in favorites.")
	assert.Contains(t, rec.Body.String(), "notice-info")
}

func TestRemoveMissingFavoriteIsQuiet(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	req := httptest.NewRequest(http.MethodDelete, "/favorites/movie/404", nil)
	req.Header.Set("X-Csrf-Token", cookieValue(jar, "csrf_token"))
	req.Header.Set("HX-Request", "true")
	rec := f.do(t, req, jar)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestWatchMovieEmbedsPlayer(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/watch/movie/603?title=The+Matrix", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "https://player.example.com/watch/movie/603")
	assert.Contains(t, body, "The Matrix")
	assert.NotContains(t, body, "Season")
}

func TestWatchTVDefaultsToFirstEpisode(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/watch/tv/1396", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "https://player.example.com/watch/tv/1396-1-1")
	assert.Contains(t, body, "Season")
}

func TestWatchBadMediaTypeIs400(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/watch/podcast/1", nil), jar)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterLoginLogoutFlow(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)
	csrf := cookieValue(jar, "csrf_token")
	anonSession := cookieValue(jar, "session_id")

	req := httptest.NewRequest(http.MethodPost, "/register",
		formBody("email=skye@example.com&password=hunter22"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Csrf-Token", csrf)
	rec := f.do(t, req, jar)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	jar = mergeCookies(jar, rec.Result())
	require.NotEqual(t, anonSession, cookieValue(jar, "session_id"))

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/", nil), jar)
	assert.Contains(t, rec.Body.String(), "skye@example.com")
	assert.Contains(t, rec.Body.String(), "Sign Out")

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.Header.Set("X-Csrf-Token", csrf)
	rec = f.do(t, req, jar)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	jar = mergeCookies(jar, rec.Result())

	rec = f.do(t, httptest.NewRequest(http.MethodGet, "/", nil), jar)
	assert.Contains(t, rec.Body.String(), "Sign In")
}

func TestRegisterDuplicateEmailShowsFieldError(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)
	csrf := cookieValue(jar, "csrf_token")

	register := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/register",
			formBody("email=dup@example.com&password=hunter22"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Csrf-Token", csrf)
		return f.do(t, req, jar)
	}

	require.Equal(t, http.StatusSeeOther, register().Code)
	rec := register()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already registered")
}

func TestLoginWrongPasswordKeepsGenericMessage(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)
	csrf := cookieValue(jar, "csrf_token")

	req := httptest.NewRequest(http.MethodPost, "/login",
		formBody("email=nobody@example.com&password=wrong-pass"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Csrf-Token", csrf)
	rec := f.do(t, req, jar)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
}

func TestUnknownPathRendersNotFoundPage(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/no-such-page", nil), jar)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
}

func TestHealthzIsOpen(t *testing.T) {
	f := newRouterFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpointExposed(t *testing.T) {
	f := newRouterFixture(t)

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines") ||
		strings.Contains(rec.Body.String(), "skyemovie_"))
}

func TestCatalogOutageDegradesDiscoverWithNotice(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	f.catalog.DiscoverMoviesFunc = func(context.Context) ([]model.ContentItem, error) {
		return nil, apperrors.Fetch("tmdb unreachable")
	}

	// The page still serves; the outage surfaces as an error notice.
	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable right now")
	assert.Contains(t, rec.Body.String(), "notice-error")
}

func TestCatalogOutageDegradesSearchWithNotice(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	f.catalog.SearchMultiFunc = func(context.Context, string) ([]model.ContentItem, error) {
		return nil, apperrors.Fetch("tmdb unreachable")
	}

	rec := f.do(t, httptest.NewRequest(http.MethodGet, "/search?q=orbit", nil), jar)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "unavailable right now")
	assert.Contains(t, rec.Body.String(), "notice-error")
}

func TestCatalogOutageStillFailsJSONAPI(t *testing.T) {
	f := newRouterFixture(t)
	jar := f.unlock(t)

	f.catalog.DiscoverMoviesFunc = func(context.Context) ([]model.ContentItem, error) {
		return nil, apperrors.Fetch("tmdb unreachable")
	}

	rec := f.apiDo(t, http.MethodGet, "/api/catalog/discover", "", jar)
	require.Equal(t, http.StatusBadGateway, rec.Code)
}

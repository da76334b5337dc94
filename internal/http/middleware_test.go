package httpx

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
)

type stubSessionProvider struct {
	sessions map[string]domainauth.Session
	minted   int
}

func (s *stubSessionProvider) GetSession(_ context.Context, id string) (domainauth.Session, error) {
	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	return domainauth.Session{}, assert.AnError
}

func (s *stubSessionProvider) BeginAnonymous(context.Context) (domainauth.Session, error) {
	s.minted++
	sess := domainauth.Session{ID: "fresh", UserUID: "anon-fresh", Anonymous: true}
	if s.sessions == nil {
		s.sessions = map[string]domainauth.Session{}
	}
	s.sessions[sess.ID] = sess
	return sess, nil
}

func TestEnsureSessionMintsAnonymous(t *testing.T) {
	provider := &stubSessionProvider{}
	var seen *domainauth.Session
	h := EnsureSession(provider, "", testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromRequest(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotNil(t, seen)
	assert.True(t, seen.Anonymous)
	assert.Equal(t, 1, provider.minted)
	assert.Equal(t, "fresh", cookieValue(rec.Result().Cookies(), "session_id"))
}

func TestEnsureSessionReusesValidCookie(t *testing.T) {
	provider := &stubSessionProvider{sessions: map[string]domainauth.Session{
		"known": {ID: "known", UserUID: "u1"},
	}}
	var seen *domainauth.Session
	h := EnsureSession(provider, "", testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session_id", Value: "known"})
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.NotNil(t, seen)
	assert.Equal(t, "u1", seen.UserUID)
	assert.Zero(t, provider.minted)
}

func TestEnsureSessionSkipsStaticAssets(t *testing.T) {
	provider := &stubSessionProvider{}
	h := EnsureSession(provider, "", testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/static/css/app.css", nil))
	assert.Zero(t, provider.minted)
}

func TestBrowserDetectionClassifiesRequests(t *testing.T) {
	var isBrowser bool
	h := BrowserDetection()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		isBrowser = IsBrowserRequest(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/search", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, isBrowser)

	req = httptest.NewRequest(http.MethodGet, "/api/session/token", nil)
	req.Header.Set("Accept", "text/html")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.False(t, isBrowser)

	req = httptest.NewRequest(http.MethodGet, "/favorites", nil)
	req.Header.Set("HX-Request", "true")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, isBrowser)
}

func TestCompressionGzipsWhenAccepted(t *testing.T) {
	h := Compression(gzip.DefaultCompression)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello hello hello hello")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	zr, err := gzip.NewReader(rec.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "hello hello hello hello", string(body))
}

func TestCompressionSkipsEventStreams(t *testing.T) {
	h := Compression(gzip.DefaultCompression)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "data: x\n\n")
	}))

	req := httptest.NewRequest(http.MethodGet, "/favorites/stream", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("Accept", "text/event-stream")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Content-Encoding"))
	assert.Equal(t, "data: x\n\n", rec.Body.String())
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	h := Recover(testLogger())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

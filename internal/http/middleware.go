package httpx

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
)

// Middleware wraps an http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *respWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Logging records one structured line per request.
func Logging(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &respWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rw, r)
			elapsed := time.Since(start)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rw.status,
				"duration_ms", elapsed.Milliseconds(),
			)
			metrics.ObserveHTTP(r.Method, r.URL.Path, rw.status, elapsed)
		})
	}
}

// Recover converts panics into 500 responses instead of dropped connections.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic in handler",
						"panic", rec,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type browserRequestKey struct{}

// BrowserDetection classifies each request as browser navigation or API call
// so error paths can choose between HTML and JSON.
func BrowserDetection() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), browserRequestKey{}, isBrowserRequest(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IsBrowserRequest reports the classification made by BrowserDetection.
func IsBrowserRequest(r *http.Request) bool {
	v, _ := r.Context().Value(browserRequestKey{}).(bool)
	return v
}

func isBrowserRequest(r *http.Request) bool {
	p := r.URL.Path
	if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/static/") {
		return false
	}
	if IsHTMX(r) {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

const (
	sessionCookieName = "session_id"
	gateCookieName    = "gate_id"
)

// SessionProvider is the slice of the auth service the middleware needs.
type SessionProvider interface {
	GetSession(ctx context.Context, sessionID string) (domainauth.Session, error)
	BeginAnonymous(ctx context.Context) (domainauth.Session, error)
}

// EnsureSession resolves the session cookie and guarantees every request
// carries a valid session, minting an anonymous one when the cookie is
// missing, expired, or unknown.
func EnsureSession(auth SessionProvider, cookieDomain string, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Asset and operational endpoints never need a session; minting
			// one per parallel asset fetch would spray Redis with garbage.
			if strings.HasPrefix(r.URL.Path, "/static/") ||
				r.URL.Path == "/healthz" || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			if c, err := r.Cookie(sessionCookieName); err == nil && c.Value != "" {
				if sess, err := auth.GetSession(r.Context(), c.Value); err == nil {
					next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), &sess)))
					return
				}
			}

			sess, err := auth.BeginAnonymous(r.Context())
			if err != nil {
				logger.Error("begin anonymous session", "error", err)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			SetSessionCookie(w, cookieDomain, sess.ID, sess.ExpiresAt)
			next.ServeHTTP(w, r.WithContext(SetSessionInContext(r.Context(), &sess)))
		})
	}
}

// SetSessionCookie writes the session cookie with the standard attributes.
func SetSessionCookie(w http.ResponseWriter, domain, sessionID string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   domain,
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, domain string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// GateID returns the per-browser gate identity, minting and setting the
// cookie on first sight.
func GateID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(gateCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     gateCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// AccessChecker is the slice of the access service the gate middleware needs.
type AccessChecker interface {
	Check(ctx context.Context, gateID string) (bool, error)
}

// RequireAccess blocks page and API access until the shared access code has
// been submitted for this browser. Browser requests are redirected to the
// gate page; API requests get a 403.
func RequireAccess(access AccessChecker, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gateID := GateID(w, r)
			ok, err := access.Check(r.Context(), gateID)
			if err != nil {
				logger.Error("access check", "error", err)
			}
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			if IsBrowserRequest(r) {
				if IsHTMX(r) {
					SetHXRedirect(w, "/gate")
					w.WriteHeader(http.StatusOK)
					return
				}
				http.Redirect(w, r, "/gate", http.StatusSeeOther)
				return
			}
			WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "auth"})
		})
	}
}

type gzipWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	wroteHeader bool
}

func (w *gzipWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.Header().Del("Content-Length")
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.gz.Write(b)
}

// Compression gzips responses for clients that accept it. Streaming
// responses (server-sent events) are passed through untouched.
func Compression(level int) Middleware {
	pool := sync.Pool{New: func() any {
		gz, err := gzip.NewWriterLevel(io.Discard, level)
		if err != nil {
			gz = gzip.NewWriter(io.Discard)
		}
		return gz
	}}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") ||
				strings.Contains(r.Header.Get("Accept"), "text/event-stream") {
				next.ServeHTTP(w, r)
				return
			}
			gz := pool.Get().(*gzip.Writer)
			gz.Reset(w)
			gw := &gzipWriter{ResponseWriter: w, gz: gz}
			defer func() {
				if err := gz.Close(); err != nil {
					slog.Debug("close gzip writer", "error", err)
				}
				pool.Put(gz)
			}()
			next.ServeHTTP(gw, r)
		})
	}
}

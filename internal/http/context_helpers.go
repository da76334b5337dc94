package httpx

import (
	"context"
	"net/http"

	domainauth "github.com/skyemovie/skyemovie/internal/domain/auth"
)

type sessionKey struct{}

// SetSessionInContext stores the resolved session on the request context.
func SetSessionInContext(ctx context.Context, s *domainauth.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// GetSessionFromContext returns the session placed on the context by
// EnsureSession, or nil when no session was resolved.
func GetSessionFromContext(ctx context.Context) *domainauth.Session {
	s, _ := ctx.Value(sessionKey{}).(*domainauth.Session)
	return s
}

// SessionFromRequest is a convenience wrapper over GetSessionFromContext.
func SessionFromRequest(r *http.Request) *domainauth.Session {
	return GetSessionFromContext(r.Context())
}

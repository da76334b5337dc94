package httpx

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
	"time"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-Csrf-Token"
	csrfFieldName  = "csrf_token"
	csrfTokenTTL   = 12 * time.Hour
	csrfTokenBytes = 32
)

type csrfTokenKey struct{}

// GetCSRFToken returns the CSRF token attached to the request by CSRF.
func GetCSRFToken(r *http.Request) string {
	t, _ := r.Context().Value(csrfTokenKey{}).(string)
	return t
}

func newCSRFToken() (string, error) {
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func isForwardedHTTPS(r *http.Request) bool {
	return r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

// CSRF implements double-submit cookie protection. Safe methods only ensure
// a token cookie exists; mutating methods must echo the cookie value in the
// X-Csrf-Token header or the csrf_token form field.
func CSRF() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if c, err := r.Cookie(csrfCookieName); err == nil {
				token = c.Value
			}
			if token == "" {
				fresh, err := newCSRFToken()
				if err != nil {
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
					return
				}
				token = fresh
				http.SetCookie(w, &http.Cookie{
					Name:     csrfCookieName,
					Value:    token,
					Path:     "/",
					Expires:  time.Now().Add(csrfTokenTTL),
					Secure:   isForwardedHTTPS(r),
					HttpOnly: false, // client JS echoes it back on htmx requests
					SameSite: http.SameSiteStrictMode,
				})
			}
			ctx := context.WithValue(r.Context(), csrfTokenKey{}, token)
			r = r.WithContext(ctx)

			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
				next.ServeHTTP(w, r)
				return
			}

			sent := r.Header.Get(csrfHeaderName)
			if sent == "" {
				sent = r.PostFormValue(csrfFieldName)
			}
			if sent == "" || subtle.ConstantTimeCompare([]byte(sent), []byte(token)) != 1 {
				WriteError(w, ErrorParams{Code: http.StatusForbidden, ErrCode: "csrf"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

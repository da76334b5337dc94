package httpx

import (
	"net/http"
	"strconv"
	"strings"
)

// parseIntQuery reads an integer query parameter, returning def when the
// parameter is absent or malformed.
func parseIntQuery(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// safeRedirectPath returns target if it is a same-origin absolute path,
// otherwise fallback. Protocol-relative URLs ("//evil") are rejected.
func safeRedirectPath(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return fallback
	}
	return target
}

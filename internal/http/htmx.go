package httpx

import (
	"encoding/json"
	"net/http"
)

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// IsBoosted reports whether the request came from an hx-boost navigation.
func IsBoosted(r *http.Request) bool {
	return r.Header.Get("HX-Boosted") == "true"
}

// WantsPartial reports whether the client expects a content fragment rather
// than a full page. Boosted navigations still swap the whole body, so they
// are treated as full-page requests.
func WantsPartial(r *http.Request) bool {
	return IsHTMX(r) && !IsBoosted(r)
}

// SetHXRedirect instructs htmx to perform a client-side redirect.
func SetHXRedirect(w http.ResponseWriter, url string) {
	w.Header().Set("HX-Redirect", url)
}

// SetHXPushURL pushes a new URL into the browser history on swap.
func SetHXPushURL(w http.ResponseWriter, url string) {
	w.Header().Set("HX-Push-Url", url)
}

// SetHXTrigger fires a client-side event with an optional detail payload.
// Multiple calls merge into a single header value.
func SetHXTrigger(w http.ResponseWriter, event string, detail any) {
	events := map[string]any{}
	if existing := w.Header().Get("HX-Trigger"); existing != "" {
		// Best effort merge; a malformed value is replaced outright.
		_ = json.Unmarshal([]byte(existing), &events)
	}
	events[event] = detail
	payload, err := json.Marshal(events)
	if err != nil {
		return
	}
	w.Header().Set("HX-Trigger", string(payload))
}

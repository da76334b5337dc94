package httpx

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports readiness. With no dependencies wired it is a
// plain liveness probe.
type HealthHandler struct {
	DB    Pinger
	Cache Pinger
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{"status": "ok"}
	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["db"] = "unreachable"
		}
	}
	if h.Cache != nil {
		if err := h.Cache.Ping(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["cache"] = "unreachable"
		}
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	WriteJSON(w, status, body)
}

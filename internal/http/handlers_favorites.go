package httpx

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
)

// FavoritesPage renders the current user's favorites, newest first.
func (h *UIHandlers) FavoritesPage(w http.ResponseWriter, r *http.Request) {
	favs, err := h.Favorites.List(r.Context(), userUIDFromRequest(r))
	if err != nil {
		h.renderAppError(w, r, err)
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Favorites — SkyeMovie", CurrentPage: PageFavorites}).
		With("Favorites", favs).
		Build()
	h.renderPage(w, r, data)
}

// SaveFavorite adds an item to the user's favorites. Saving an item that is
// already a favorite is a quiet no-op.
func (h *UIHandlers) SaveFavorite(w http.ResponseWriter, r *http.Request) {
	tmdbID, _ := strconv.ParseInt(r.PostFormValue("tmdb_id"), 10, 64)
	item := model.ContentItem{
		TMDBID:    tmdbID,
		MediaType: model.MediaType(r.PostFormValue("media_type")),
		Title:     r.PostFormValue("title"),
		PosterURL: r.PostFormValue("poster_url"),
	}

	_, created, err := h.Favorites.Save(r.Context(), userUIDFromRequest(r), item)
	if err != nil {
		h.renderAppError(w, r, err)
		return
	}
	if created {
		metrics.FavoriteChanges.WithLabelValues("added").Inc()
		h.setNotice(r, model.NoticeSuccess, fmt.Sprintf("Added %q to favorites.", item.Title))
	} else {
		h.setNotice(r, model.NoticeInfo, "Already in favorites.")
	}
	h.respondFavoriteChange(w, r)
}

// RemoveFavorite removes an item from the user's favorites.
func (h *UIHandlers) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.renderAppError(w, r, apperrors.ValidationField("tmdb_id", "tmdb_id must be an integer"))
		return
	}
	mediaType := model.MediaType(r.PathValue("type"))

	if err := h.Favorites.Remove(r.Context(), userUIDFromRequest(r), tmdbID, mediaType); err != nil {
		if apperrors.IsNotFound(err) {
			// Already gone; a stale button click is not an error.
			h.respondFavoriteChange(w, r)
			return
		}
		h.renderAppError(w, r, err)
		return
	}
	metrics.FavoriteChanges.WithLabelValues("removed").Inc()
	h.setNotice(r, model.NoticeInfo, "Removed from favorites.")
	h.respondFavoriteChange(w, r)
}

// respondFavoriteChange answers a favorite mutation: htmx callers get the
// flash fragment plus a change event, everyone else is sent back to the
// favorites page.
func (h *UIHandlers) respondFavoriteChange(w http.ResponseWriter, r *http.Request) {
	if IsHTMX(r) {
		SetHXTrigger(w, "favorites:changed", nil)
		notice, _ := h.Flash.Consume(r.Context(), sessionIDFromRequest(r))
		if err := h.T.RenderPartial(w, "flash", map[string]any{"Notice": notice}); err != nil {
			h.renderTemplateFailure(w, r, err)
		}
		return
	}
	http.Redirect(w, r, "/favorites", http.StatusSeeOther)
}

func (h *UIHandlers) setNotice(r *http.Request, level model.NoticeLevel, msg string) {
	if err := h.Flash.Set(r.Context(), sessionIDFromRequest(r), level, msg); err != nil {
		h.logger().Warn("set notice", "error", err)
	}
}

// FavoritesStream pushes favorites snapshots over server-sent events. The
// client receives the full rendered grid on connect and again after every
// change to this user's favorites, regardless of which tab made it.
func (h *UIHandlers) FavoritesStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "internal"})
		return
	}
	userUID := userUIDFromRequest(r)
	unsubscribe, changes := h.Favorites.Subscribe(userUID)
	defer unsubscribe()

	metrics.FavoriteStreams.Inc()
	defer metrics.FavoriteStreams.Dec()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if !h.writeFavoritesEvent(w, r, userUID) {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case _, open := <-changes:
			if !open {
				return
			}
			if !h.writeFavoritesEvent(w, r, userUID) {
				return
			}
			flusher.Flush()
		}
	}
}

// writeFavoritesEvent renders the favorites grid and writes it as a single
// SSE event. Returns false when the snapshot or write fails.
func (h *UIHandlers) writeFavoritesEvent(w http.ResponseWriter, r *http.Request, userUID string) bool {
	favs, err := h.Favorites.List(r.Context(), userUID)
	if err != nil {
		h.logger().Warn("favorites snapshot for stream", "error", err)
		return false
	}
	var buf bytes.Buffer
	if err := h.T.templates.ExecuteTemplate(&buf, "favorites-grid", map[string]any{"Favorites": favs}); err != nil {
		h.logger().Error("render favorites stream fragment", "error", err)
		return false
	}
	if _, err := fmt.Fprintf(w, "event: favorites\ndata: %s\n\n", sseData(buf.String())); err != nil {
		return false
	}
	return true
}

// sseData flattens a rendered fragment onto one line so it fits in a single
// SSE data field.
func sseData(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\r", ""), "\n", " ")
}

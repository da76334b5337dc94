package httpx

import (
	"net/http"
	"net/url"
	"strconv"

	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/domain/model"
)

// Watch renders the playback page with the embedded player for the selected
// title. TV requests accept season/episode query parameters, defaulting to
// the first episode of the first season.
func (h *UIHandlers) Watch(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.renderAppError(w, r, apperrors.ValidationField("tmdb_id", "tmdb_id must be an integer"))
		return
	}
	req := model.PlaybackRequest{
		MediaType: model.MediaType(r.PathValue("type")),
		TMDBID:    tmdbID,
		Season:    parseIntQuery(r, "season", 0),
		Episode:   parseIntQuery(r, "episode", 0),
	}

	playback, err := h.Player.Resolve(req)
	if err != nil {
		h.renderAppError(w, r, err)
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title = "Now Playing"
	}
	data := NewTemplateData(r, PageMeta{Title: title + " — SkyeMovie", CurrentPage: PageWatch}).
		With("Playback", playback).
		With("MediaTitle", title).
		With("IsTV", playback.MediaType == model.MediaTypeTV).
		With("BackURL", backURL(r)).
		Build()
	h.renderPage(w, r, data)
}

// backURL points the player's back link at the search the visitor came
// from, falling back to the discover page.
func backURL(r *http.Request) string {
	ref, err := url.Parse(r.Referer())
	if err == nil && ref.Path == "/search" && ref.Query().Get("q") != "" {
		return ref.RequestURI()
	}
	return "/"
}

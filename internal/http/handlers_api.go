package httpx

import (
	"net/http"
	"strconv"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
	"github.com/skyemovie/skyemovie/internal/service"
)

// JSON counterparts of the browser handlers. They share the service layer
// with the UI and exist for non-browser clients and integration tooling.

// APIDiscover returns the popular movies and shows as JSON.
func (h *UIHandlers) APIDiscover(w http.ResponseWriter, r *http.Request) {
	page, err := h.Catalog.Discover(r.Context())
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

// APISearch runs a multi search and returns the generation-stamped result.
func (h *UIHandlers) APISearch(w http.ResponseWriter, r *http.Request) {
	result, err := h.Catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	w.Header().Set("X-Search-Generation", strconv.FormatUint(result.Generation, 10))
	WriteJSON(w, http.StatusOK, result)
}

// APIListFavorites returns the current user's favorites, newest first.
func (h *UIHandlers) APIListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := h.Favorites.List(r.Context(), userUIDFromRequest(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if favs == nil {
		favs = []model.Favorite{}
	}
	WriteJSON(w, http.StatusOK, favs)
}

// APISaveFavorite adds an item to the current user's favorites. Saving an
// item that is already a favorite returns the stored row with created=false.
func (h *UIHandlers) APISaveFavorite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TMDBID    int64  `json:"tmdb_id"`
		MediaType string `json:"media_type"`
		Title     string `json:"title"`
		PosterURL string `json:"poster_url"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	fav, created, err := h.Favorites.Save(r.Context(), userUIDFromRequest(r), model.ContentItem{
		TMDBID:    req.TMDBID,
		MediaType: model.MediaType(req.MediaType),
		Title:     req.Title,
		PosterURL: req.PosterURL,
	})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	code := http.StatusOK
	if created {
		metrics.FavoriteChanges.WithLabelValues("added").Inc()
		code = http.StatusCreated
	}
	WriteJSON(w, code, map[string]any{"favorite": fav, "created": created})
}

// APIRemoveFavorite removes an item from the current user's favorites.
// Removing an item that is not there is answered like a successful removal.
func (h *UIHandlers) APIRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	tmdbID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		WriteAppError(w, apperrors.ValidationField("tmdb_id", "tmdb_id must be an integer"))
		return
	}
	mediaType := model.MediaType(r.PathValue("type"))

	if err := h.Favorites.Remove(r.Context(), userUIDFromRequest(r), tmdbID, mediaType); err != nil {
		if !apperrors.IsNotFound(err) {
			WriteAppError(w, err)
			return
		}
	} else {
		metrics.FavoriteChanges.WithLabelValues("removed").Inc()
	}
	w.WriteHeader(http.StatusNoContent)
}

// APIAuthStatus reports the resolved identity of the calling session.
func (h *UIHandlers) APIAuthStatus(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	WriteJSON(w, http.StatusOK, map[string]any{
		"uid":       sess.UserUID,
		"anonymous": sess.Anonymous,
		"email":     sess.Email,
	})
}

// APILogin authenticates JSON credentials and rotates the session cookie.
func (h *UIHandlers) APILogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	sess, err := h.Auth.Login(r.Context(), currentSession(r), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.AuthEvents.WithLabelValues("login", "failure").Inc()
		WriteAppError(w, err)
		return
	}
	metrics.AuthEvents.WithLabelValues("login", "success").Inc()
	SetSessionCookie(w, h.CookieDomain, sess.ID, sess.ExpiresAt)
	WriteJSON(w, http.StatusOK, map[string]any{
		"uid":        sess.UserUID,
		"email":      sess.Email,
		"expires_at": sess.ExpiresAt,
	})
}

// APIRegister creates an account from JSON credentials and signs it in.
func (h *UIHandlers) APIRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	sess, err := h.Auth.Register(r.Context(), currentSession(r), service.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		metrics.AuthEvents.WithLabelValues("register", "failure").Inc()
		WriteAppError(w, err)
		return
	}
	metrics.AuthEvents.WithLabelValues("register", "success").Inc()
	SetSessionCookie(w, h.CookieDomain, sess.ID, sess.ExpiresAt)
	WriteJSON(w, http.StatusCreated, map[string]any{
		"uid":        sess.UserUID,
		"email":      sess.Email,
		"expires_at": sess.ExpiresAt,
	})
}

// APILogout drops the authenticated session and hands back a fresh
// anonymous one, so the caller is never without an identity.
func (h *UIHandlers) APILogout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Auth.Logout(r.Context(), sessionIDFromRequest(r))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	metrics.AuthEvents.WithLabelValues("logout", "success").Inc()
	SetSessionCookie(w, h.CookieDomain, sess.ID, sess.ExpiresAt)
	WriteJSON(w, http.StatusOK, map[string]any{
		"uid":       sess.UserUID,
		"anonymous": sess.Anonymous,
	})
}

// APISubmitAccessCode checks a JSON access code against the site gate.
func (h *UIHandlers) APISubmitAccessCode(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}
	if err := h.Access.Submit(r.Context(), GateID(w, r), req.Code); err != nil {
		metrics.AccessAttempts.WithLabelValues("denied").Inc()
		WriteAppError(w, err)
		return
	}
	metrics.AccessAttempts.WithLabelValues("granted").Inc()
	WriteJSON(w, http.StatusOK, map[string]any{"granted": true})
}

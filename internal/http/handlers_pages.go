package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/service"
)

// UIHandlers serves the browser-facing pages and htmx fragments.
type UIHandlers struct {
	T            *TemplateRenderer
	Auth         *service.AuthService
	Access       *service.AccessService
	Catalog      *service.CatalogService
	Favorites    *service.FavoriteService
	Player       *service.PlayerService
	Flash        *service.FlashService
	CookieDomain string
	Logger       *slog.Logger
}

func (h *UIHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// renderPage renders either the full layout or just the content fragment,
// depending on how the request arrived.
func (h *UIHandlers) renderPage(w http.ResponseWriter, r *http.Request, data map[string]any) {
	if notice, ok := h.Flash.Consume(r.Context(), sessionIDFromRequest(r)); ok {
		data["Notice"] = notice
	}
	currentPage, _ := data["CurrentPage"].(string)
	if WantsPartial(r) {
		SetHXPushURL(w, r.URL.RequestURI())
		if err := h.T.RenderPartial(w, ContentTemplateFor(currentPage), data); err != nil {
			h.renderTemplateFailure(w, r, err)
		}
		return
	}
	if err := h.T.RenderFull(w, data); err != nil {
		h.renderTemplateFailure(w, r, err)
	}
}

func (h *UIHandlers) renderTemplateFailure(w http.ResponseWriter, r *http.Request, err error) {
	h.logger().Error("render template", "path", r.URL.Path, "error", err)
	h.T.RenderError(w, http.StatusInternalServerError, map[string]any{
		"Title":   "Something went wrong",
		"Status":  http.StatusInternalServerError,
		"Message": "Something went wrong. Please try again.",
	})
}

// renderAppError maps a service error onto either an error page or a JSON
// body, depending on the request classification.
func (h *UIHandlers) renderAppError(w http.ResponseWriter, r *http.Request, err error) {
	if !IsBrowserRequest(r) {
		WriteAppError(w, err)
		return
	}
	status := http.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	switch {
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
		msg = "Not found."
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
		msg = err.Error()
	case service.IsUpstreamError(err):
		status = http.StatusBadGateway
		msg = catalogUnavailableMsg
	}
	if status == http.StatusInternalServerError {
		h.logger().Error("handler error", "path", r.URL.Path, "error", err)
	}
	h.T.RenderError(w, status, map[string]any{
		"Title":   "Error",
		"Status":  status,
		"Message": msg,
	})
}

// sessionIDFromRequest returns the current session's ID, or "" when the
// middleware did not resolve one.
func sessionIDFromRequest(r *http.Request) string {
	if sess := SessionFromRequest(r); sess != nil {
		return sess.ID
	}
	return ""
}

// userUIDFromRequest returns the current session's user identity.
func userUIDFromRequest(r *http.Request) string {
	if sess := SessionFromRequest(r); sess != nil {
		return sess.UserUID
	}
	return ""
}

type notFoundHandler struct {
	mux *http.ServeMux
	ui  *UIHandlers
}

func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, pattern := h.mux.Handler(r)
	if pattern == "" && IsBrowserRequest(r) && h.ui != nil {
		h.ui.T.RenderError(w, http.StatusNotFound, map[string]any{
			"Title":   "Page not found",
			"Status":  http.StatusNotFound,
			"Message": "The page you are looking for does not exist.",
		})
		return
	}
	handler.ServeHTTP(w, r)
}

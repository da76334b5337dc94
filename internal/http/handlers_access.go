package httpx

import (
	"net/http"

	apperrors "github.com/skyemovie/skyemovie/internal/errors"
	"github.com/skyemovie/skyemovie/internal/observability/metrics"
)

// GatePage renders the access code prompt. Browsers that already hold a
// grant are sent straight to the discover view.
func (h *UIHandlers) GatePage(w http.ResponseWriter, r *http.Request) {
	gateID := GateID(w, r)
	if ok, err := h.Access.Check(r.Context(), gateID); err == nil && ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data := NewTemplateData(r, PageMeta{Title: "Enter Access Code — SkyeMovie", CurrentPage: PageGate}).Build()
	h.renderPage(w, r, data)
}

// SubmitAccessCode checks the submitted code and grants this browser access
// on a match. Failures re-render the gate form with the digit-count hint.
func (h *UIHandlers) SubmitAccessCode(w http.ResponseWriter, r *http.Request) {
	gateID := GateID(w, r)
	code := r.PostFormValue("code")

	if err := h.Access.Submit(r.Context(), gateID, code); err != nil {
		metrics.AccessAttempts.WithLabelValues("denied").Inc()
		if !apperrors.IsAuth(err) {
			h.renderAppError(w, r, err)
			return
		}
		msg := err.Error()
		if hint := apperrors.GetHint(err); hint != "" {
			msg += " " + hint
		}
		data := NewTemplateData(r, PageMeta{Title: "Enter Access Code — SkyeMovie", CurrentPage: PageGate}).
			WithError(msg).
			Build()
		if IsHTMX(r) {
			if err := h.T.RenderPartial(w, "gate-content", data); err != nil {
				h.renderTemplateFailure(w, r, err)
			}
			return
		}
		h.renderPage(w, r, data)
		return
	}

	metrics.AccessAttempts.WithLabelValues("granted").Inc()
	if IsHTMX(r) {
		SetHXRedirect(w, "/")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

package httpx

import "net/http"

// FlashFragment renders the pending notice for the calling session, if
// any, and clears it. Pages poll this to pick up notices set by other
// requests; an expired notice renders as an empty fragment.
func (h *UIHandlers) FlashFragment(w http.ResponseWriter, r *http.Request) {
	notice, _ := h.Flash.Consume(r.Context(), sessionIDFromRequest(r))
	if err := h.T.RenderPartial(w, "flash", map[string]any{"Notice": notice}); err != nil {
		h.renderTemplateFailure(w, r, err)
	}
}

// DismissFlash drops the pending notice immediately and renders the empty
// fragment in its place.
func (h *UIHandlers) DismissFlash(w http.ResponseWriter, r *http.Request) {
	_, _ = h.Flash.Consume(r.Context(), sessionIDFromRequest(r))
	if err := h.T.RenderPartial(w, "flash", map[string]any{}); err != nil {
		h.renderTemplateFailure(w, r, err)
	}
}

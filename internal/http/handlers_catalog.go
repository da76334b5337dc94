package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/skyemovie/skyemovie/internal/domain/model"
	"github.com/skyemovie/skyemovie/internal/service"
)

const catalogUnavailableMsg = "The catalog is unavailable right now. Please try again shortly."

// Home renders the discover view: popular movies and shows side by side.
// Upstream catalog failures degrade to an empty page with an error notice
// instead of taking the whole view down.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	page, err := h.Catalog.Discover(r.Context())
	if err != nil {
		if !service.IsUpstreamError(err) || !IsBrowserRequest(r) {
			h.renderAppError(w, r, err)
			return
		}
		h.logger().Warn("discover degraded", "error", err)
		page = model.DiscoverPage{}
		h.setNotice(r, model.NoticeError, catalogUnavailableMsg)
	}
	data := NewTemplateData(r, PageMeta{Title: "SkyeMovie", CurrentPage: PageDiscover}).
		With("Movies", page.Movies).
		With("Shows", page.Shows).
		Build()
	h.renderPage(w, r, data)
}

// SearchPage renders the search view. With a query it performs the search;
// htmx requests swapping only the result list get the results fragment.
func (h *UIHandlers) SearchPage(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	// An explicitly submitted blank search goes back to discover with a
	// nudge. Live-typing fragments and plain visits to /search do not.
	if query == "" && r.URL.Query().Has("q") && !IsHTMX(r) {
		h.setNotice(r, model.NoticeInfo, "Please enter a search term.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	result, err := h.Catalog.Search(r.Context(), query)
	if err != nil {
		if !service.IsUpstreamError(err) || !IsBrowserRequest(r) {
			h.renderAppError(w, r, err)
			return
		}
		h.logger().Warn("search degraded", "query", query, "error", err)
		result = model.SearchResult{Generation: h.Catalog.CurrentSearchGeneration()}
		h.setNotice(r, model.NoticeError, catalogUnavailableMsg)
	} else if query != "" && len(result.Items) == 0 {
		h.setNotice(r, model.NoticeInfo, "No results found.")
	}

	// Live-typing requests target just the result list. The response echoes
	// the request generation so the client can drop answers that arrive
	// after a newer query was issued.
	if IsHTMX(r) && r.Header.Get("HX-Target") == "search-results" {
		w.Header().Set("X-Search-Generation", strconv.FormatUint(result.Generation, 10))
		data := map[string]any{
			"Query":      result.Query,
			"Generation": result.Generation,
			"Items":      result.Items,
		}
		if err := h.T.RenderPartial(w, "search-results", data); err != nil {
			h.renderTemplateFailure(w, r, err)
		}
		return
	}

	data := NewTemplateData(r, PageMeta{Title: "Search — SkyeMovie", CurrentPage: PageSearch}).
		With("Query", result.Query).
		With("Generation", result.Generation).
		With("Items", result.Items).
		Build()
	h.renderPage(w, r, data)
}

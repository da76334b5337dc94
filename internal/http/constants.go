package httpx

// CurrentPage identifiers used by templates and navigation highlighting.
const (
	PageDiscover  = "discover"
	PageSearch    = "search"
	PageFavorites = "favorites"
	PageWatch     = "watch"
	PageGate      = "gate"
	PageLogin     = "login"
	PageRegister  = "register"
)

// contentTemplates maps CurrentPage to the content fragment rendered for
// htmx partial swaps.
var contentTemplates = map[string]string{
	PageDiscover:  "discover-content",
	PageSearch:    "search-content",
	PageFavorites: "favorites-content",
	PageWatch:     "watch-content",
	PageGate:      "gate-content",
	PageLogin:     "login-content",
	PageRegister:  "register-content",
}

// ContentTemplateFor returns the content template for a page, falling back
// to the discover view for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := contentTemplates[currentPage]; ok {
		return name
	}
	return "discover-content"
}

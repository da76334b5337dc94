package httpx

import (
	"net/http"

	"github.com/skyemovie/skyemovie/internal/domain/model"
)

// PageMeta carries per-page metadata used by the shared layout.
type PageMeta struct {
	Title       string
	CurrentPage string
}

// basePageData builds the map every page template starts from: layout
// metadata, session state, and the CSRF token.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	data := map[string]any{
		"Title":       meta.Title,
		"CurrentPage": meta.CurrentPage,
	}
	if token := GetCSRFToken(r); token != "" {
		data["CSRFToken"] = token
	}
	if sess := SessionFromRequest(r); sess != nil {
		data["IsAuthenticated"] = !sess.Anonymous
		data["Email"] = sess.Email
	}
	return data
}

// TemplateDataBuilder provides a fluent API for assembling template data.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData starts a builder seeded with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// WithError sets a general error message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// WithNotice attaches a transient notice for the flash partial.
func (b *TemplateDataBuilder) WithNotice(n model.Notice) *TemplateDataBuilder {
	b.data["Notice"] = n
	return b
}

// With adds a custom field.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

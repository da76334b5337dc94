package httpx

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
)

// TemplateRenderer renders full pages and htmx content fragments from a
// single parsed template set.
type TemplateRenderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewTemplateRenderer parses the template tree (layouts at the root, pages
// and partials in subdirectories) from the given filesystem.
func NewTemplateRenderer(fsys fs.FS, logger *slog.Logger) (*TemplateRenderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	tmpl, err := template.New("").ParseFS(fsys,
		"*.tmpl", "pages/*.tmpl", "partials/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &TemplateRenderer{templates: tmpl, logger: logger}, nil
}

// render buffers template execution so a late failure never corrupts an
// already-started response.
func (t *TemplateRenderer) render(w http.ResponseWriter, name string, data any) error {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("execute template %q: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		t.logger.Debug("write rendered template", "template", name, "error", err)
	}
	return nil
}

// RenderFull renders the complete page inside the shared layout.
func (t *TemplateRenderer) RenderFull(w http.ResponseWriter, data any) error {
	return t.render(w, "layout", data)
}

// RenderPartial renders just the content fragment for htmx swaps.
func (t *TemplateRenderer) RenderPartial(w http.ResponseWriter, name string, data any) error {
	return t.render(w, name, data)
}

// RenderError renders the standalone error page with the given status.
func (t *TemplateRenderer) RenderError(w http.ResponseWriter, status int, data any) {
	var buf bytes.Buffer
	if err := t.templates.ExecuteTemplate(&buf, "error-page", data); err != nil {
		t.logger.Error("render error page", "error", err)
		http.Error(w, http.StatusText(status), status)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		t.logger.Debug("write error page", "error", err)
	}
}

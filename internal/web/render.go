// Package web provides HTML template rendering for the web UI.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates
var embeddedTemplates embed.FS

const (
	baseTemplate  = "base.html"
	errorTemplate = "error.html"
)

// Renderer manages HTML template rendering with caching and custom functions.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	mu        sync.RWMutex
}

// NewRenderer parses the templates embedded in the binary.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	return NewRendererFS(sub)
}

// NewRendererFS parses base.html and combines it with every other .html file
// in fsys. Template names are slash-separated paths relative to the root of
// fsys (e.g. "agreements/list.html").
func NewRendererFS(fsys fs.FS) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap:   createFuncMap(),
	}

	if err := r.parseTemplates(fsys); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return r, nil
}

// Render executes the named template with the given data and writes the result to w.
func (r *Renderer) Render(w http.ResponseWriter, templateName string, data any) error {
	return r.RenderStatus(w, http.StatusOK, templateName, data)
}

// RenderStatus is Render with an explicit status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, status int, templateName string, data any) error {
	r.mu.RLock()
	tmpl, ok := r.templates[templateName]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", templateName)
	}

	// Buffered so a template error can still become an error page.
	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to execute template %q: %w", templateName, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := fmt.Fprint(w, buf.String())
	return err
}

// ErrorPageData is rendered by error.html.
type ErrorPageData struct {
	PageData
	ErrorCode string
	Message   string
}

// RenderError renders an error page with the given HTTP status code and message.
func (r *Renderer) RenderError(w http.ResponseWriter, code int, message string) {
	data := ErrorPageData{
		PageData:  PageData{Title: http.StatusText(code)},
		ErrorCode: http.StatusText(code),
		Message:   message,
	}
	if err := r.RenderStatus(w, code, errorTemplate, data); err == nil {
		return
	}

	http.Error(w, fmt.Sprintf("Error %d: %s", code, message), code)
}

// parseTemplates parses the base template and all page templates.
func (r *Renderer) parseTemplates(fsys fs.FS) error {
	baseContent, err := fs.ReadFile(fsys, baseTemplate)
	if err != nil {
		return fmt.Errorf("failed to read base template: %w", err)
	}

	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == baseTemplate || path.Ext(p) != ".html" {
			return nil
		}

		pageContent, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", p, err)
		}

		tmpl, err := template.New("base").Funcs(r.funcMap).Parse(string(baseContent))
		if err != nil {
			return fmt.Errorf("failed to parse base template for %s: %w", p, err)
		}
		// The page template overrides the content block.
		tmpl, err = tmpl.Parse(string(pageContent))
		if err != nil {
			return fmt.Errorf("failed to parse template %s: %w", p, err)
		}

		r.mu.Lock()
		r.templates[p] = tmpl
		r.mu.Unlock()
		return nil
	})
	if err != nil {
		return err
	}

	if len(r.templates) == 0 {
		return fmt.Errorf("no page templates found")
	}
	return nil
}

// createFuncMap creates the template function map with all custom functions.
func createFuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": formatTime,
		"truncate":   truncate,
		"markdown":   renderMarkdown,
	}
}

// formatTime formats a time.Time as a human-readable date string.
// Example: "Jan 2, 2006"
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("Jan 2, 2006")
}

// truncate truncates a string to n characters, adding "..." if truncated.
// If the string is shorter than or equal to n, it is returned unchanged.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	if n <= 3 {
		return string(runes[:n])
	}

	return string(runes[:n-3]) + "..."
}

// renderMarkdown converts agreement notes to sanitized HTML.
func renderMarkdown(s string) template.HTML {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs | parser.NoEmptyLineBeforeBlock
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse([]byte(s))

	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	htmlContent := markdown.Render(doc, renderer)

	// Notes are user input; never trust the rendered HTML.
	sanitized := bluemonday.UGCPolicy().SanitizeBytes(htmlContent)
	return template.HTML(sanitized)
}

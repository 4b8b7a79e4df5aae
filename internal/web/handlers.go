// Package web provides HTTP handlers for the web UI.
package web

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/kuitang/agreements-e2e/internal/agreements"
	"github.com/kuitang/agreements-e2e/internal/errs"
	"github.com/kuitang/agreements-e2e/internal/obs"
)

// AgreementStore is the agreements service the UI drives.
type AgreementStore interface {
	Create(ctx context.Context, params agreements.CreateParams) (*agreements.Agreement, error)
	Read(ctx context.Context, id string) (*agreements.Agreement, error)
	Update(ctx context.Context, id string, params agreements.UpdateParams) (*agreements.Agreement, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params agreements.ListParams) (*agreements.ListResult, error)
}

// WebHandler provides HTTP handlers for web UI pages.
type WebHandler struct {
	renderer   *Renderer
	agreements AgreementStore
}

// NewWebHandler creates a new web handler.
func NewWebHandler(renderer *Renderer, store AgreementStore) *WebHandler {
	return &WebHandler{renderer: renderer, agreements: store}
}

// RegisterRoutes registers all web UI routes on the given mux.
func (h *WebHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.HandleLanding)

	mux.HandleFunc("GET /agreements", h.HandleList)
	mux.HandleFunc("GET /agreements/new", h.HandleNewPage)
	mux.HandleFunc("POST /agreements", h.HandleCreate)
	mux.HandleFunc("GET /agreements/{id}", h.HandlePreview)
	mux.HandleFunc("GET /agreements/{id}/edit", h.HandleEditPage)
	mux.HandleFunc("POST /agreements/{id}", h.HandleUpdate)
	mux.HandleFunc("POST /agreements/{id}/delete", h.HandleDelete)
}

// PageData contains common data passed to all templates.
type PageData struct {
	Title string
	Error string
}

// SortOption is one entry of the sort-by dropdown.
type SortOption struct {
	ElementID string
	Label     string
	Href      string
	Current   bool
}

// ListData contains data for the agreements list page.
type ListData struct {
	PageData
	Agreements  []agreements.Agreement
	TotalCount  int
	Sort        agreements.Sort
	SortOptions []SortOption
	Query       string
}

// PreviewData contains data for the agreement preview page.
type PreviewData struct {
	PageData
	Agreement *agreements.Agreement
}

// FormData contains data for the create and edit forms.
type FormData struct {
	PageData
	Action     string
	CancelHref string
	Form       agreements.CreateParams
}

var sortElementIDs = []struct {
	sort agreements.Sort
	id   string
}{
	{agreements.SortLastModified, "sort-last-modified"},
	{agreements.SortName, "sort-agreement-name"},
	{agreements.SortID, "sort-agreement-id"},
}

func sortOptions(current agreements.Sort, query string) []SortOption {
	opts := make([]SortOption, 0, len(sortElementIDs))
	for _, s := range sortElementIDs {
		v := url.Values{"sort": {string(s.sort)}}
		if query != "" {
			v.Set("q", query)
		}
		opts = append(opts, SortOption{
			ElementID: s.id,
			Label:     s.sort.Label(),
			Href:      "/agreements?" + v.Encode(),
			Current:   s.sort == current,
		})
	}
	return opts
}

// HandleLanding redirects to the agreements list.
func (h *WebHandler) HandleLanding(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/agreements", http.StatusFound)
}

// HandleList renders the sorted, optionally filtered agreements table.
func (h *WebHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	sortKey, err := agreements.ParseSort(r.URL.Query().Get("sort"))
	if err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, errs.MessageOf(err))
		return
	}
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	result, err := h.agreements.List(r.Context(), agreements.ListParams{
		Sort:  sortKey,
		Query: query,
		Limit: agreements.MaxLimit,
	})
	if err != nil {
		h.renderServiceError(w, r, err, "Failed to load agreements")
		return
	}

	data := ListData{
		PageData:    PageData{Title: "Agreements"},
		Agreements:  result.Agreements,
		TotalCount:  result.TotalCount,
		Sort:        result.Sort,
		SortOptions: sortOptions(result.Sort, query),
		Query:       query,
	}
	h.render(w, r, "agreements/list.html", data)
}

// HandleNewPage renders the empty create form.
func (h *WebHandler) HandleNewPage(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "agreements/form.html", FormData{
		PageData:   PageData{Title: "New Agreement"},
		Action:     "/agreements",
		CancelHref: "/agreements",
	})
}

// HandleCreate creates an agreement and redirects to its preview.
func (h *WebHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	params, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	a, err := h.agreements.Create(r.Context(), params)
	if errs.Is(err, errs.InvalidArgument) {
		h.renderForm(w, r, http.StatusBadRequest, FormData{
			PageData:   PageData{Title: "New Agreement", Error: errs.MessageOf(err)},
			Action:     "/agreements",
			CancelHref: "/agreements",
			Form:       params,
		})
		return
	}
	if err != nil {
		h.renderServiceError(w, r, err, "Failed to create agreement")
		return
	}

	http.Redirect(w, r, "/agreements/"+a.ID, http.StatusSeeOther)
}

// HandlePreview renders one agreement with its delete confirmation dialog.
func (h *WebHandler) HandlePreview(w http.ResponseWriter, r *http.Request) {
	a, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "agreements/preview.html", PreviewData{
		PageData:  PageData{Title: a.Name},
		Agreement: a,
	})
}

// HandleEditPage renders the edit form filled with the stored values.
func (h *WebHandler) HandleEditPage(w http.ResponseWriter, r *http.Request) {
	a, ok := h.load(w, r)
	if !ok {
		return
	}
	h.render(w, r, "agreements/form.html", FormData{
		PageData:   PageData{Title: "Edit Agreement"},
		Action:     "/agreements/" + a.ID,
		CancelHref: "/agreements/" + a.ID,
		Form: agreements.CreateParams{
			Name:                           a.Name,
			Date:                           a.Date,
			Notes:                          a.Notes,
			ResponsibleParty:               a.ResponsibleParty,
			MaintenanceOwnerResponsibility: a.MaintenanceOwnerResponsibility,
			MaintenanceReasoning:           a.MaintenanceReasoning,
		},
	})
}

// HandleUpdate replaces every field of an agreement from the edit form.
func (h *WebHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	params, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	a, err := h.agreements.Update(r.Context(), id, agreements.UpdateParams{
		Name:                           &params.Name,
		Date:                           &params.Date,
		Notes:                          &params.Notes,
		ResponsibleParty:               &params.ResponsibleParty,
		MaintenanceOwnerResponsibility: &params.MaintenanceOwnerResponsibility,
		MaintenanceReasoning:           &params.MaintenanceReasoning,
	})
	if errs.Is(err, errs.InvalidArgument) {
		h.renderForm(w, r, http.StatusBadRequest, FormData{
			PageData:   PageData{Title: "Edit Agreement", Error: errs.MessageOf(err)},
			Action:     "/agreements/" + id,
			CancelHref: "/agreements/" + id,
			Form:       params,
		})
		return
	}
	if err != nil {
		h.renderServiceError(w, r, err, "Failed to update agreement")
		return
	}

	http.Redirect(w, r, "/agreements/"+a.ID, http.StatusSeeOther)
}

// HandleDelete deletes an agreement and returns to the list.
func (h *WebHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.agreements.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.renderServiceError(w, r, err, "Failed to delete agreement")
		return
	}
	http.Redirect(w, r, "/agreements", http.StatusSeeOther)
}

func (h *WebHandler) load(w http.ResponseWriter, r *http.Request) (*agreements.Agreement, bool) {
	a, err := h.agreements.Read(r.Context(), r.PathValue("id"))
	if err != nil {
		h.renderServiceError(w, r, err, "Failed to load agreement")
		return nil, false
	}
	return a, true
}

func (h *WebHandler) parseForm(w http.ResponseWriter, r *http.Request) (agreements.CreateParams, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		h.renderer.RenderError(w, http.StatusBadRequest, "Invalid form data")
		return agreements.CreateParams{}, false
	}
	return agreements.CreateParams{
		Name:                           r.PostFormValue("name"),
		Date:                           r.PostFormValue("date"),
		Notes:                          r.PostFormValue("notes"),
		ResponsibleParty:               r.PostFormValue("responsible_party"),
		MaintenanceOwnerResponsibility: r.PostFormValue("maintenance_owner_responsibility"),
		MaintenanceReasoning:           r.PostFormValue("maintenance_reasoning"),
	}, true
}

const maxFormBytes = 1 << 20

func (h *WebHandler) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if err := h.renderer.Render(w, name, data); err != nil {
		obs.From(r.Context()).Error("template_render_failed", "template", name, "error", err)
		h.renderer.RenderError(w, http.StatusInternalServerError, "Failed to render page")
	}
}

func (h *WebHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, data FormData) {
	if err := h.renderer.RenderStatus(w, status, "agreements/form.html", data); err != nil {
		obs.From(r.Context()).Error("template_render_failed", "template", "agreements/form.html", "error", err)
		h.renderer.RenderError(w, http.StatusInternalServerError, "Failed to render page")
	}
}

// renderServiceError maps a service error to an error page. Unexpected errors
// are logged and shown as fallback.
func (h *WebHandler) renderServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	code := errs.CodeOf(err)
	status := errs.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		obs.From(r.Context()).Error("web_request_failed", "path", r.URL.Path, "error", err)
		h.renderer.RenderError(w, status, fallback)
		return
	}
	h.renderer.RenderError(w, status, errs.MessageOf(err))
}

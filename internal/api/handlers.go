package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kuitang/agreements-e2e/internal/agreements"
	"github.com/kuitang/agreements-e2e/internal/errs"
	"github.com/kuitang/agreements-e2e/internal/obs"
	"github.com/kuitang/agreements-e2e/internal/searchterm"
)

const maxBodyBytes = 1 << 20

// Handler wraps the agreements service and provides HTTP handlers
type Handler struct {
	agreements *agreements.Service
}

// NewHandler creates a new API handler with the given agreements service
func NewHandler(svc *agreements.Service) *Handler {
	return &Handler{agreements: svc}
}

// RegisterRoutes registers all agreements API routes on the given mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/agreements", h.ListAgreements)
	mux.HandleFunc("GET /api/agreements/search-term", h.SearchTerm)
	mux.HandleFunc("GET /api/agreements/{id}", h.GetAgreement)
	mux.HandleFunc("POST /api/agreements", h.CreateAgreement)
	mux.HandleFunc("PUT /api/agreements/{id}", h.UpdateAgreement)
	mux.HandleFunc("DELETE /api/agreements/{id}", h.DeleteAgreement)
}

// listParams reads sort, q, limit and offset from the query string.
// Unparseable limit and offset fall back to the service defaults.
func listParams(r *http.Request) (agreements.ListParams, error) {
	q := r.URL.Query()
	sortKey, err := agreements.ParseSort(q.Get("sort"))
	if err != nil {
		return agreements.ListParams{}, err
	}
	params := agreements.ListParams{Sort: sortKey, Query: q.Get("q")}

	if limitStr := q.Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			params.Limit = parsed
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			params.Offset = parsed
		}
	}
	return params, nil
}

// ListAgreements handles GET /api/agreements - returns a sorted, filtered page
func (h *Handler) ListAgreements(w http.ResponseWriter, r *http.Request) {
	params, err := listParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.agreements.List(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// SearchTermResponse is the body of GET /api/agreements/search-term.
type SearchTermResponse struct {
	Column   string   `json:"column"`
	Strategy string   `json:"strategy"`
	Values   []string `json:"values"`
	Term     string   `json:"term"`
	Found    bool     `json:"found"`
}

// SearchTerm handles GET /api/agreements/search-term?column=name|id|date -
// derives the term that finds the listed rows again.
func (h *Handler) SearchTerm(w http.ResponseWriter, r *http.Request) {
	col, err := searchterm.ParseColumn(r.URL.Query().Get("column"))
	if err != nil {
		writeError(w, r, errs.New(errs.InvalidArgument, err.Error()))
		return
	}
	params, err := listParams(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	d, err := h.agreements.DeriveSearchTerm(r.Context(), params, col)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchTermResponse{
		Column:   d.Column.String(),
		Strategy: d.Strategy.String(),
		Values:   d.Values,
		Term:     d.Term,
		Found:    d.OK,
	})
}

// GetAgreement handles GET /api/agreements/{id} - returns a single agreement
func (h *Handler) GetAgreement(w http.ResponseWriter, r *http.Request) {
	a, err := h.agreements.Read(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// CreateAgreement handles POST /api/agreements - creates a new agreement
func (h *Handler) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	var params agreements.CreateParams
	if !decodeJSON(w, r, &params) {
		return
	}

	a, err := h.agreements.Create(r.Context(), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, a)
}

// UpdateAgreement handles PUT /api/agreements/{id} - updates the given fields
func (h *Handler) UpdateAgreement(w http.ResponseWriter, r *http.Request) {
	var params agreements.UpdateParams
	if !decodeJSON(w, r, &params) {
		return
	}

	a, err := h.agreements.Update(r.Context(), r.PathValue("id"), params)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// DeleteAgreement handles DELETE /api/agreements/{id} - deletes an agreement
func (h *Handler) DeleteAgreement(w http.ResponseWriter, r *http.Request) {
	if err := h.agreements.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, errs.New(errs.InvalidArgument, "Invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// ErrorResponse represents an API error response
type ErrorResponse = errs.Response

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes the coded error as JSON. Internal failures are logged and
// reported without their cause.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errs.HTTPStatus(errs.CodeOf(err)) >= http.StatusInternalServerError {
		obs.From(r.Context()).Error("api_error", "path", r.URL.Path, "error", err)
	}
	errs.WriteJSON(w, err)
}

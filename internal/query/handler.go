package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/kuitang/agreements-e2e/internal/errs"
	"github.com/kuitang/agreements-e2e/internal/logutil"
	"github.com/kuitang/agreements-e2e/internal/obs"
	"github.com/kuitang/agreements-e2e/internal/ratelimit"
)

const (
	// MaxBodyBytes bounds POST /process and POST /query bodies.
	MaxBodyBytes = 4 << 20

	logBodyBytes = 2048
)

// Handler serves the obligations API.
type Handler struct {
	svc *Service
}

// NewHandler creates a new obligations API handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the API. When limiter is non-nil both POST routes are
// rate limited per client IP.
func (h *Handler) RegisterRoutes(mux *http.ServeMux, limiter *ratelimit.RateLimiter) {
	wrap := func(f http.HandlerFunc) http.Handler { return f }
	if limiter != nil {
		mw := ratelimit.RateLimitMiddleware(limiter, limiter.ClientKey)
		wrap = func(f http.HandlerFunc) http.Handler { return mw(f) }
	}
	mux.Handle("POST /process", wrap(h.Process))
	mux.Handle("POST /query", wrap(h.Query))
	mux.HandleFunc("GET /documents", h.ListDocuments)
}

// Process handles POST /process.
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	var req ProcessRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.svc.Process(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Query handles POST /query.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req Request
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.svc.Query(r.Context(), req)
	if err != nil {
		writeErr(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListDocuments handles GET /documents.
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	ids, err := h.svc.store.ListDocumentIDs(r.Context())
	if err != nil {
		writeErr(w, r, errs.Wrap(errs.Unavailable, "failed to list documents", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document_ids": ids})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, r, errs.Newf(errs.InvalidArgument, "request body exceeds %d bytes", MaxBodyBytes))
			return false
		}
		writeErr(w, r, errs.Wrap(errs.InvalidArgument, "failed to read request body", err))
		return false
	}

	obs.From(r.Context()).Debug("query_api_request",
		"path", r.URL.Path,
		"body", logutil.FormatBodyForLog(r.Header.Get("Content-Type"), body, logBodyBytes, false),
	)

	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(dst); err != nil {
		writeErr(w, r, errs.New(errs.InvalidArgument, "Invalid JSON: "+err.Error()))
		return false
	}
	return true
}

// ErrorResponse represents an API error response
type ErrorResponse = errs.Response

func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	if errs.HTTPStatus(errs.CodeOf(err)) >= http.StatusInternalServerError {
		obs.From(r.Context()).Error("query_api_error", "path", r.URL.Path, "error", err)
	}
	errs.WriteJSON(w, err)
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Package app assembles the HTTP surface of the agreements server: the web UI,
// the agreements JSON API, the obligations query API and the MCP endpoint.
package app

import (
	"errors"
	"net/http"

	"github.com/kuitang/agreements-e2e/internal/agreements"
	"github.com/kuitang/agreements-e2e/internal/api"
	"github.com/kuitang/agreements-e2e/internal/mcp"
	"github.com/kuitang/agreements-e2e/internal/obs"
	"github.com/kuitang/agreements-e2e/internal/query"
	"github.com/kuitang/agreements-e2e/internal/ratelimit"
	"github.com/kuitang/agreements-e2e/internal/web"
)

// Deps are the services the handler is built from. Limiter may be nil to
// disable rate limiting of the obligations API.
type Deps struct {
	Agreements *agreements.Service
	Queries    *query.Service
	Limiter    *ratelimit.RateLimiter
}

// NewHandler builds the full route table wrapped in the recover, request
// context and access log middlewares.
func NewHandler(deps Deps) (http.Handler, error) {
	if deps.Agreements == nil {
		return nil, errors.New("app: agreements service is required")
	}
	if deps.Queries == nil {
		return nil, errors.New("app: query service is required")
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)

	web.NewWebHandler(renderer, deps.Agreements).RegisterRoutes(mux)
	api.NewHandler(deps.Agreements).RegisterRoutes(mux)
	query.NewHandler(deps.Queries).RegisterRoutes(mux, deps.Limiter)

	mcpServer := mcp.NewServer(mcp.NewHandler(deps.Agreements, deps.Queries))
	mountMCPRoute(mux, "/mcp", mcpServer)

	var handler http.Handler = mux
	handler = obs.AccessLogMiddleware("http", handler)
	handler = obs.RequestContextMiddleware(handler)
	handler = obs.RecoverMiddleware("http", handler)
	return handler, nil
}

// mountMCPRoute registers every Streamable HTTP method on path; the MCP server
// answers the ones it does not support itself.
func mountMCPRoute(mux *http.ServeMux, path string, handler http.Handler) {
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions} {
		mux.Handle(method+" "+path, handler)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// Package mcp exposes the agreements listing, search-term derivation and the
// obligations query as MCP tools over Streamable HTTP.
package mcp

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/kuitang/agreements-e2e/internal/logutil"
	"github.com/kuitang/agreements-e2e/internal/obs"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	maxMCPBodyBytes           = 1 << 20
	mcpDebugBodyLogLimitBytes = 8 * 1024
	allowedMethods            = "POST, DELETE, OPTIONS"
)

// Server wraps the MCP server with agreement and obligation handling
type Server struct {
	mcpServer   *mcp.Server
	handler     *Handler
	httpHandler http.Handler
}

// NewServer creates a new MCP server with every tool registered.
func NewServer(handler *Handler) *Server {
	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "agreements",
			Version: "1.0.0",
		},
		nil,
	)

	for _, tool := range ToolDefinitions() {
		mcp.AddTool(mcpServer, tool, handler.createToolHandler(tool.Name))
	}
	registerPrompts(mcpServer)

	httpHandler := mcp.NewStreamableHTTPHandler(
		func(*http.Request) *mcp.Server { return mcpServer },
		&mcp.StreamableHTTPOptions{
			// Plain JSON responses; no SSE stream is ever opened.
			JSONResponse: true,
			// No session state survives between requests.
			Stateless: true,
		},
	)

	return &Server{
		mcpServer:   mcpServer,
		handler:     handler,
		httpHandler: httpHandler,
	}
}

// ServeHTTP implements http.Handler for the Streamable HTTP transport.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := obs.From(r.Context())

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Mcp-Session-Id, Mcp-Protocol-Version, Last-Event-ID")
	w.Header().Set("Access-Control-Allow-Methods", allowedMethods)

	switch r.Method {
	case http.MethodOptions:
		w.Header().Set("Access-Control-Max-Age", "86400")
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost, http.MethodDelete:
	default:
		// Stateless JSON mode has no server-initiated stream to GET.
		w.Header().Set("Allow", allowedMethods)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var reqBody []byte
	if r.Body != nil && r.Method == http.MethodPost {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMCPBodyBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			logger.Warn("mcp_body_read_failed", "error", err)
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		reqBody = body
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	logger.Debug("mcp_request",
		"method", r.Method,
		"headers", logutil.FormatHeadersForLog(r.Header),
		"body", logutil.FormatBodyForLog(r.Header.Get("Content-Type"), reqBody, mcpDebugBodyLogLimitBytes, false),
	)

	rw, rec := obs.NewResponseRecorder(w)
	defer func() {
		if p := recover(); p != nil {
			logger.Error("mcp_handler_panic", "panic", p)
			if !rec.WroteHeader() {
				http.Error(rw, "Internal server error", http.StatusInternalServerError)
			}
		}
	}()

	s.httpHandler.ServeHTTP(rw, r)

	if !rec.WroteHeader() {
		logger.Error("mcp_no_response", "method", r.Method)
		http.Error(rw, "MCP handler returned without writing response", http.StatusInternalServerError)
		return
	}
	if status := rec.StatusCode(); status >= http.StatusBadRequest {
		logger.Warn("mcp_request_failed", "method", r.Method, "status", status)
	}
}

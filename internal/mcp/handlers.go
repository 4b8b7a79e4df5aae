package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/kuitang/agreements-e2e/internal/agreements"
	"github.com/kuitang/agreements-e2e/internal/errs"
	"github.com/kuitang/agreements-e2e/internal/obs"
	"github.com/kuitang/agreements-e2e/internal/query"
	"github.com/kuitang/agreements-e2e/internal/searchterm"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler implements MCP tool call handling.
type Handler struct {
	agreements *agreements.Service
	queries    *query.Service
}

// NewHandler creates a new MCP handler. Either service may be nil; its tools
// then fail with an unavailable error.
func NewHandler(agreementsSvc *agreements.Service, querySvc *query.Service) *Handler {
	return &Handler{agreements: agreementsSvc, queries: querySvc}
}

// createToolHandler returns a tool handler function for the given tool name.
// Tool failures are reported in the result, never as transport errors.
func (h *Handler) createToolHandler(name string) func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		result, err := h.HandleToolCall(ctx, name, args)
		if err != nil {
			if errs.CodeOf(err) == errs.Internal {
				obs.From(ctx).Error("mcp_tool_failed", "tool", name, "error", err)
			}
			return newToolResultError(err), nil, nil
		}
		return result, nil, nil
	}
}

// HandleToolCall routes tool calls to appropriate handlers.
func (h *Handler) HandleToolCall(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error) {
	switch name {
	case toolAgreementList:
		return h.handleAgreementList(ctx, arguments)
	case toolAgreementSearchTerm:
		return h.handleAgreementSearchTerm(ctx, arguments)
	case toolObligationsQuery:
		return h.handleObligationsQuery(ctx, arguments)
	default:
		return nil, errs.Newf(errs.NotFound, "unknown tool: %s", name)
	}
}

func (h *Handler) requireAgreements() error {
	if h.agreements == nil {
		return errs.New(errs.Unavailable, "agreement tools are unavailable on this MCP endpoint")
	}
	return nil
}

func (h *Handler) requireQueries() error {
	if h.queries == nil {
		return errs.New(errs.Unavailable, "obligation tools are unavailable on this MCP endpoint")
	}
	return nil
}

type agreementListArgs struct {
	Sort   string `json:"sort,omitempty"`
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// listRow is one agreement as the listing shows it.
type listRow struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	LastModified string `json:"last_modified"`
}

type agreementListResult struct {
	Agreements []listRow `json:"agreements"`
	TotalCount int       `json:"total_count"`
	Sort       string    `json:"sort"`
	Query      string    `json:"query,omitempty"`
}

func (h *Handler) handleAgreementList(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	if err := h.requireAgreements(); err != nil {
		return nil, err
	}
	var in agreementListArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}

	result, err := h.agreements.List(ctx, agreements.ListParams{
		Sort:   agreements.Sort(in.Sort),
		Query:  in.Query,
		Limit:  in.Limit,
		Offset: in.Offset,
	})
	if err != nil {
		return nil, err
	}

	out := agreementListResult{
		Agreements: make([]listRow, 0, len(result.Agreements)),
		TotalCount: result.TotalCount,
		Sort:       string(result.Sort),
		Query:      result.Query,
	}
	for _, a := range result.Agreements {
		out.Agreements = append(out.Agreements, listRow{Name: a.Name, ID: a.ID, LastModified: a.LastModified()})
	}
	return newToolResultJSON(out)
}

type searchTermArgs struct {
	Column string `json:"column"`
	Sort   string `json:"sort,omitempty"`
	Query  string `json:"query,omitempty"`
}

type searchTermResult struct {
	Column   string   `json:"column"`
	Strategy string   `json:"strategy"`
	Values   []string `json:"values"`
	Term     string   `json:"term"`
	Found    bool     `json:"found"`
}

func (h *Handler) handleAgreementSearchTerm(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	if err := h.requireAgreements(); err != nil {
		return nil, err
	}
	var in searchTermArgs
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}
	col, err := searchterm.ParseColumn(in.Column)
	if err != nil {
		return nil, errs.New(errs.InvalidArgument, err.Error())
	}

	d, err := h.agreements.DeriveSearchTerm(ctx, agreements.ListParams{
		Sort:  agreements.Sort(in.Sort),
		Query: in.Query,
		Limit: agreements.MaxLimit,
	}, col)
	if err != nil {
		return nil, err
	}
	return newToolResultJSON(searchTermResult{
		Column:   d.Column.String(),
		Strategy: d.Strategy.String(),
		Values:   d.Values,
		Term:     d.Term,
		Found:    d.OK,
	})
}

func (h *Handler) handleObligationsQuery(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	if err := h.requireQueries(); err != nil {
		return nil, err
	}
	var in query.Request
	if err := decodeToolArgs(args, &in); err != nil {
		return nil, err
	}

	resp, err := h.queries.Query(ctx, in)
	if err != nil {
		return nil, err
	}
	return newToolResultJSON(resp)
}

// decodeToolArgs decodes tool arguments into dst, rejecting unknown fields.
// A nil map decodes as an empty object.
func decodeToolArgs(args map[string]any, dst any) error {
	if args == nil {
		args = map[string]any{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, "invalid arguments", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Sprintf("invalid arguments: %v", err))
	}
	return nil
}

// toolErrorPayload is the JSON body of a failed tool result.
type toolErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newToolResultJSON creates a successful tool result holding value as JSON.
func newToolResultJSON(value any) (*mcp.CallToolResult, error) {
	data := marshalAny(value)
	if data == nil {
		return nil, errs.New(errs.Internal, "failed to marshal tool result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(data)},
		},
	}, nil
}

// newToolResultError creates a tool result indicating an error.
func newToolResultError(err error) *mcp.CallToolResult {
	payload := toolErrorPayload{Code: string(errs.CodeOf(err)), Message: errs.MessageOf(err)}
	text := string(marshalAny(payload))
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}

// marshalAny returns indented JSON, or nil if value cannot be marshaled.
func marshalAny(value any) []byte {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil
	}
	return data
}

package mcp

import "github.com/modelcontextprotocol/go-sdk/mcp"

const (
	toolAgreementList       = "agreement_list"
	toolAgreementSearchTerm = "agreement_search_term"
	toolObligationsQuery    = "obligations_query"
)

// ToolDefinitions returns the MCP tool definitions.
func ToolDefinitions() []*mcp.Tool {
	return []*mcp.Tool{
		{
			Name:        toolAgreementList,
			Description: "Agreements tool. List maintenance agreements as shown in the agreements table: name, ID (AGR-XXXXXXXX) and last-modified date. Optionally sort by last_modified (default, newest first), name or id, and filter with a case-insensitive substring query over name, ID and last-modified date (MM/DD/YYYY).",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sort": map[string]any{
						"type":        "string",
						"enum":        []string{"last_modified", "name", "id"},
						"description": "Sort order (default last_modified)",
					},
					"query": map[string]any{
						"type":        "string",
						"description": "Optional case-insensitive substring filter",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum agreements to return (default 50, max 1000)",
					},
					"offset": map[string]any{
						"type":        "integer",
						"description": "Number of agreements to skip",
					},
				},
			},
		},
		{
			Name:        toolAgreementSearchTerm,
			Description: "Agreements tool. Derive a search term from one column of the current listing. Names and IDs reduce to the prefix every listed value shares (or the first 3 characters of the first value when nothing is shared); dates use the first listed date verbatim. Returns the extracted values, the strategy and the term. found=false means the listing had nothing to extract.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"column": map[string]any{
						"type":        "string",
						"enum":        []string{"name", "id", "date"},
						"description": "Listing column to derive the term from",
					},
					"sort": map[string]any{
						"type":        "string",
						"enum":        []string{"last_modified", "name", "id"},
						"description": "Listing sort order; decides which date comes first",
					},
					"query": map[string]any{
						"type":        "string",
						"description": "Optional filter applied to the listing before extraction",
					},
				},
				"required": []string{"column"},
			},
		},
		{
			Name:        toolObligationsQuery,
			Description: "Obligations tool. Search the obligations extracted from processed documents. Every non-stopword query word must prefix a word of an obligation for it to match; an empty query searches for 'utilities'. document_ids restricts the search (default: all processed documents); unknown IDs are skipped and not counted. Set save_output to store the response and return its key.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Keywords, e.g. 'insurance premium'",
					},
					"document_ids": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Documents to search, e.g. ['MTNNN.pdf']",
					},
					"save_output": map[string]any{
						"type":        "boolean",
						"description": "Store the response JSON and return output_key",
					},
				},
			},
		},
	}
}

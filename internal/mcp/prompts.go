package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const workflowPromptName = "agreements_workflow"

const workflowPromptText = "Use agreement_list to see agreements the way the agreements table shows them. " +
	"To find a group of agreements again, call agreement_search_term for the name, id or date column and " +
	"pass the returned term as the query of agreement_list. Use obligations_query for questions about " +
	"lease obligations; a result with zero obligations means the documents do not contain the topic."

func registerPrompts(mcpServer *mcp.Server) {
	for _, prompt := range PromptDefinitions() {
		mcpServer.AddPrompt(prompt, workflowPrompt)
	}
}

// PromptDefinitions returns MCP prompt definitions.
func PromptDefinitions() []*mcp.Prompt {
	return []*mcp.Prompt{
		{
			Name:        workflowPromptName,
			Title:       "Agreements and obligations workflow",
			Description: "How the agreement and obligation tools fit together.",
		},
	}
}

func workflowPrompt(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "How the agreement and obligation tools fit together.",
		Messages: []*mcp.PromptMessage{
			{
				Role:    mcp.Role("user"),
				Content: &mcp.TextContent{Text: workflowPromptText},
			},
		},
	}, nil
}

package checker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clipwire/clipwire/kit"
)

type checkRequest struct {
	URL  string `json:"url,omitempty"`
	HTML string `json:"html,omitempty"`
}

// RegisterMCP registers the markup audit as an MCP tool.
func (c *Checker) RegisterMCP(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "clipwire_check",
		Description: "Audit page markup for copy-button wiring problems: missing target attributes, selectors that match nothing or match more than one element. Pass a URL to fetch, or raw HTML.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"url":  map[string]any{"type": "string", "description": "Page URL to fetch and audit"},
				"html": map[string]any{"type": "string", "description": "Raw HTML to audit instead of fetching"},
			},
		},
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*checkRequest)
		if r.HTML != "" {
			return c.CheckHTML(strings.NewReader(r.HTML))
		}
		return c.CheckURL(ctx, r.URL)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r checkRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.URL == "" && r.HTML == "" {
			return nil, fmt.Errorf("one of url or html is required")
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithTransport(ctx, "mcp")
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

package copybtn

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/clipwire/clipwire/copybtn/internal/config"
	"github.com/clipwire/clipwire/kit"
)

// RegisterMCP registers the activator's tools on an MCP server.
func (a *Activator) RegisterMCP(srv *mcp.Server) {
	a.registerCopyTool(srv)
	a.registerStatusTool(srv)
	a.registerRescanTool(srv)
	a.registerSetFeedbackTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// --- copy ---

type copyRequest struct {
	PageID string `json:"page_id"`
	BindID string `json:"bind_id"`
}

func (a *Activator) registerCopyTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "clipwire_copy",
		Description: "Trigger a bound copy button programmatically. Resolves the button's target, copies its text and returns the activation record.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page identifier from the config"},
			"bind_id": map[string]any{"type": "string", "description": "Bind identifier stamped on the button"},
		}, []string{"page_id", "bind_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*copyRequest)
		return a.Activate(ctx, r.PageID, r.BindID)
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r copyRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.PageID == "" || r.BindID == "" {
			return nil, fmt.Errorf("page_id and bind_id are required")
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithPageID(kit.WithTransport(ctx, "mcp"), r.PageID)
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- status ---

func (a *Activator) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "clipwire_status",
		Description: "List bound pages and their copy buttons.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return a.Status(), nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{
			Request: struct{}{},
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithTransport(ctx, "mcp")
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- rescan ---

type rescanRequest struct {
	PageID string `json:"page_id"`
}

type rescanResponse struct {
	PageID string `json:"page_id"`
	Bound  int    `json:"bound"`
}

func (a *Activator) registerRescanTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "clipwire_rescan",
		Description: "Rescan a page for unbound copy buttons and bind them. Already-bound buttons are left alone.",
		InputSchema: inputSchema(map[string]any{
			"page_id": map[string]any{"type": "string", "description": "Page identifier from the config"},
		}, []string{"page_id"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*rescanRequest)
		n, err := a.Rescan(ctx, r.PageID)
		if err != nil {
			return nil, err
		}
		return rescanResponse{PageID: r.PageID, Bound: n}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r rescanRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		if r.PageID == "" {
			return nil, fmt.Errorf("page_id is required")
		}
		return &kit.MCPDecodeResult{
			Request: &r,
			EnrichCtx: func(ctx context.Context) context.Context {
				return kit.WithPageID(kit.WithTransport(ctx, "mcp"), r.PageID)
			},
		}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- set_feedback ---

type setFeedbackRequest struct {
	SuccessText   string   `json:"success_text,omitempty"`
	FailedText    string   `json:"failed_text,omitempty"`
	SuccessAdd    []string `json:"success_add,omitempty"`
	SuccessRemove []string `json:"success_remove,omitempty"`
	FailedAdd     []string `json:"failed_add,omitempty"`
	FailedRemove  []string `json:"failed_remove,omitempty"`
	Reset         bool     `json:"reset,omitempty"`
}

func (a *Activator) registerSetFeedbackTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "clipwire_set_feedback",
		Description: "Replace the feedback mapping applied to buttons after an activation. Takes effect on the next activation, no rebind needed. Set reset=true to restore the defaults.",
		InputSchema: inputSchema(map[string]any{
			"success_text":   map[string]any{"type": "string", "description": "Button text shown on success"},
			"failed_text":    map[string]any{"type": "string", "description": "Button text shown on failure"},
			"success_add":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Classes added on success"},
			"success_remove": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Classes removed on success"},
			"failed_add":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Classes added on failure"},
			"failed_remove":  map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Classes removed on failure"},
			"reset":          map[string]any{"type": "boolean", "description": "Restore the default mapping, ignoring the other fields"},
		}, nil),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*setFeedbackRequest)
		if r.Reset {
			f := config.DefaultFeedback()
			a.SetFeedback(f)
			return f, nil
		}
		f := config.Feedback{
			Text: config.FeedbackText{
				Success: r.SuccessText,
				Failed:  r.FailedText,
			},
			Classes: config.FeedbackClasses{
				Success: config.ClassChange{Add: r.SuccessAdd, Remove: r.SuccessRemove},
				Failed:  config.ClassChange{Add: r.FailedAdd, Remove: r.FailedRemove},
			},
		}
		a.SetFeedback(f)
		return f, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r setFeedbackRequest
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
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

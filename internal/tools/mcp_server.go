package tools

import (
	"context"
	"encoding/json"

	"smart-search-be/internal/dto"
	"smart-search-be/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer registers every tool of reg on an MCP server. Streaming tools
// forward pipeline events as logging notifications, plus progress
// notifications when the client sent a progress token.
func NewMCPServer(reg *Registry, name, version string) (*server.MCPServer, error) {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)
	for _, t := range reg.List() {
		schema, err := json.Marshal(t.InputSchema)
		if err != nil {
			return nil, err
		}
		s.AddTool(mcp.NewToolWithRawSchema(t.Name, t.Description, schema), reg.mcpHandler(t))
	}
	return s, nil
}

func (r *Registry) mcpHandler(t dto.ToolDescriptor) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var sink service.EventSink
		if t.Streaming {
			ns := notifySink{}
			if req.Params.Meta != nil {
				ns.progressToken = req.Params.Meta.ProgressToken
			}
			sink = ns
		}

		out, err := r.Invoke(ctx, t.Name, req.GetArguments(), sink)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		body, err := json.Marshal(out)
		if err != nil {
			return nil, err
		}
		return mcp.NewToolResultText(string(body)), nil
	}
}

type notifySink struct {
	progressToken mcp.ProgressToken
}

func (n notifySink) Emit(ctx context.Context, ev dto.SearchEvent) {
	srv := server.ServerFromContext(ctx)
	if srv == nil {
		return
	}
	_ = srv.SendNotificationToClient(ctx, "notifications/message", map[string]any{
		"level":  ev.Level,
		"logger": SmartSearch,
		"data":   ev,
	})
	if n.progressToken != nil {
		_ = srv.SendNotificationToClient(ctx, "notifications/progress", map[string]any{
			"progressToken": n.progressToken,
			"progress":      ev.Progress,
			"total":         100,
			"message":       ev.Message,
		})
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/worklog/internal/commands"
)

// ToolDefinition describes a tool and its JSON input schema.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "begin",
			Description: "Start your workday. Fails softly if a session is already running.",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"note": map[string]any{
						"type":        "string",
						"description": "What you plan to work on",
					},
				},
			},
		},
		{
			Name:        "end",
			Description: "Stop your running session and report the hours worked",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"finish_note": map[string]any{
						"type":        "string",
						"description": "Optional note appended to the session note",
					},
				},
			},
		},
		{
			Name:        "history",
			Description: "List recent closed sessions, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"member": map[string]any{
						"type":        "string",
						"description": "User to report on (omit for yourself)",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of sessions (default 5)",
					},
				},
			},
		},
		{
			Name:        "summary",
			Description: "Total hours worked over the trailing days",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"member": map[string]any{
						"type":        "string",
						"description": "User to report on (omit for yourself)",
					},
					"days": map[string]any{
						"type":        "integer",
						"description": "Window size in days (default 7)",
					},
				},
			},
		},
		{
			Name:        "status",
			Description: "Show your running session, if any",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
	}
}

func registerTools(server *sdkmcp.Server, handler *Handler, logger *slog.Logger) {
	for _, def := range buildToolCatalog() {
		name := def.Name
		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}

			result, err := handler.Handle(ctx, getUserID(ctx), name, args)
			if err != nil {
				return errorResult(logger, name, err), nil
			}
			return toolResult(result), nil
		})
	}
}

func toolResult(result any) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content:           []sdkmcp.Content{&sdkmcp.TextContent{Text: replyText(result)}},
		StructuredContent: result,
	}
}

func errorResult(logger *slog.Logger, tool string, err error) *sdkmcp.CallToolResult {
	apiErr := MapError(err)
	if apiErr == nil {
		logger.Error("tool failed", "tool", tool, "error", err)
		apiErr = &APIError{Code: "INTERNAL", Message: "internal error"}
	}
	data, _ := json.Marshal(apiErr)
	return &sdkmcp.CallToolResult{
		Content:           []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
		StructuredContent: apiErr,
		IsError:           true,
	}
}

// replyText renders the reply text with pending notices ahead of it.
func replyText(result any) string {
	var r commands.Reply
	switch v := result.(type) {
	case *commands.BeginReply:
		r = v.Reply
	case *commands.EndReply:
		r = v.Reply
	case *commands.HistoryReply:
		r = v.Reply
	case *commands.SummaryReply:
		r = v.Reply
	case *commands.StatusReply:
		r = v.Reply
	default:
		data, _ := json.Marshal(result)
		return string(data)
	}
	if len(r.Notices) == 0 {
		return r.Text
	}
	return strings.Join(r.Notices, "\n") + "\n\n" + r.Text
}

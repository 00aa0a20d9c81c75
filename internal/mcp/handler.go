package mcp

import (
	"context"
	"encoding/json"
	"fmt"
)

// Handler dispatches MCP tool calls to the command layer.
type Handler struct {
	commands CommandService
}

// NewHandler creates a new MCP handler.
func NewHandler(commands CommandService) *Handler {
	return &Handler{commands: commands}
}

// Handle runs the named tool for userID.
func (h *Handler) Handle(ctx context.Context, userID, method string, params json.RawMessage) (any, error) {
	if userID == "" {
		return nil, &APIError{
			Code:         "INVALID_INPUT",
			Message:      "caller identity required",
			RecoveryHint: "Send the " + UserHeader + " header or _meta.user_id",
		}
	}

	switch method {
	case "begin":
		var req BeginParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		reply, err := h.commands.Begin(ctx, userID, req.Note)
		if err != nil {
			return nil, mapError(err)
		}
		return reply, nil
	case "end":
		var req EndParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		reply, err := h.commands.End(ctx, userID, req.FinishNote)
		if err != nil {
			return nil, mapError(err)
		}
		return reply, nil
	case "history":
		var req HistoryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Limit < 0 {
			return nil, &APIError{Code: "INVALID_INPUT", Message: "limit must not be negative"}
		}
		reply, err := h.commands.History(ctx, userID, req.Member, req.Limit)
		if err != nil {
			return nil, mapError(err)
		}
		return reply, nil
	case "summary":
		var req SummaryParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		if req.Days < 0 {
			return nil, &APIError{Code: "INVALID_INPUT", Message: "days must not be negative"}
		}
		reply, err := h.commands.Summary(ctx, userID, req.Member, req.Days)
		if err != nil {
			return nil, mapError(err)
		}
		return reply, nil
	case "status":
		reply, err := h.commands.Status(ctx, userID)
		if err != nil {
			return nil, mapError(err)
		}
		return reply, nil
	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func decodeParams(params json.RawMessage, out any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, out); err != nil {
		return &APIError{Code: "INVALID_INPUT", Message: fmt.Sprintf("invalid arguments: %v", err)}
	}
	return nil
}

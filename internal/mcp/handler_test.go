package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rpggio/worklog/internal/commands"
	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/stretchr/testify/require"
)

type commandStub struct {
	beginFn   func(context.Context, string, string) (*commands.BeginReply, error)
	endFn     func(context.Context, string, string) (*commands.EndReply, error)
	historyFn func(context.Context, string, string, int) (*commands.HistoryReply, error)
	summaryFn func(context.Context, string, string, int) (*commands.SummaryReply, error)
	statusFn  func(context.Context, string) (*commands.StatusReply, error)
}

func (c commandStub) Begin(ctx context.Context, userID, note string) (*commands.BeginReply, error) {
	return c.beginFn(ctx, userID, note)
}
func (c commandStub) End(ctx context.Context, userID, finishNote string) (*commands.EndReply, error) {
	return c.endFn(ctx, userID, finishNote)
}
func (c commandStub) History(ctx context.Context, callerID, targetID string, limit int) (*commands.HistoryReply, error) {
	return c.historyFn(ctx, callerID, targetID, limit)
}
func (c commandStub) Summary(ctx context.Context, callerID, targetID string, days int) (*commands.SummaryReply, error) {
	return c.summaryFn(ctx, callerID, targetID, days)
}
func (c commandStub) Status(ctx context.Context, userID string) (*commands.StatusReply, error) {
	return c.statusFn(ctx, userID)
}

func TestHandler_Dispatch(t *testing.T) {
	ctx := context.Background()

	var calls []string
	handler := NewHandler(commandStub{
		beginFn: func(_ context.Context, userID, note string) (*commands.BeginReply, error) {
			calls = append(calls, "begin:"+userID+":"+note)
			return &commands.BeginReply{SessionID: 1, Note: note}, nil
		},
		endFn: func(_ context.Context, userID, finish string) (*commands.EndReply, error) {
			calls = append(calls, "end:"+userID+":"+finish)
			return &commands.EndReply{HoursWorked: 1}, nil
		},
		historyFn: func(_ context.Context, callerID, targetID string, limit int) (*commands.HistoryReply, error) {
			require.Equal(t, "u1", callerID)
			require.Equal(t, "u2", targetID)
			require.Equal(t, 3, limit)
			calls = append(calls, "history")
			return &commands.HistoryReply{UserID: targetID}, nil
		},
		summaryFn: func(_ context.Context, callerID, targetID string, days int) (*commands.SummaryReply, error) {
			require.Equal(t, "", targetID)
			require.Equal(t, 0, days)
			calls = append(calls, "summary")
			return &commands.SummaryReply{UserID: callerID, Days: 7}, nil
		},
		statusFn: func(_ context.Context, userID string) (*commands.StatusReply, error) {
			calls = append(calls, "status:"+userID)
			return &commands.StatusReply{}, nil
		},
	})

	_, err := handler.Handle(ctx, "u1", "begin", mustJSON(t, BeginParams{Note: "docs"}))
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "u1", "end", mustJSON(t, EndParams{FinishNote: "done"}))
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "u1", "history", mustJSON(t, HistoryParams{Member: "u2", Limit: 3}))
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "u1", "summary", nil)
	require.NoError(t, err)
	_, err = handler.Handle(ctx, "u1", "status", nil)
	require.NoError(t, err)

	require.Equal(t, []string{"begin:u1:docs", "end:u1:done", "history", "summary", "status:u1"}, calls)
}

func TestHandler_ErrorMapping(t *testing.T) {
	ctx := context.Background()
	handler := NewHandler(commandStub{
		beginFn: func(context.Context, string, string) (*commands.BeginReply, error) {
			return nil, worksession.ErrAlreadyActive
		},
		endFn: func(context.Context, string, string) (*commands.EndReply, error) {
			return nil, worksession.ErrNoActiveSession
		},
		statusFn: func(context.Context, string) (*commands.StatusReply, error) {
			return nil, errors.New("disk gone")
		},
	})

	tests := []struct {
		name   string
		userID string
		method string
		params json.RawMessage
		code   string
	}{
		{name: "already active", userID: "u1", method: "begin", code: "ALREADY_ACTIVE"},
		{name: "no active session", userID: "u1", method: "end", code: "NO_ACTIVE_SESSION"},
		{name: "missing caller", userID: "", method: "status", code: "INVALID_INPUT"},
		{name: "bad arguments", userID: "u1", method: "history", params: json.RawMessage(`{"limit":"x"}`), code: "INVALID_INPUT"},
		{name: "negative days", userID: "u1", method: "summary", params: json.RawMessage(`{"days":-1}`), code: "INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := handler.Handle(ctx, tt.userID, tt.method, tt.params)
			require.Error(t, err)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			require.Equal(t, tt.code, apiErr.Code)
		})
	}

	_, err := handler.Handle(ctx, "u1", "status", nil)
	require.EqualError(t, err, "disk gone")
	require.Nil(t, MapError(err))
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

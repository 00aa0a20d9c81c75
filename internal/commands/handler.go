package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rpggio/worklog/internal/domain/reclaim"
	"github.com/rpggio/worklog/internal/domain/report"
	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/rpggio/worklog/internal/notify"
)

// SessionService defines lifecycle operations needed by commands.
type SessionService interface {
	Start(ctx context.Context, userID, note string) (*worksession.WorkSession, error)
	Stop(ctx context.Context, userID, finishNote string) (*worksession.StopResult, error)
	Active(ctx context.Context, userID string) (*worksession.WorkSession, error)
}

// ReportService defines reporting operations needed by commands.
type ReportService interface {
	History(ctx context.Context, userID string, limit int) ([]report.HistoryEntry, error)
	Summary(ctx context.Context, userID string, days int) (float64, error)
	Defaults() report.Options
}

// Inbox hands out notices waiting for a user.
type Inbox interface {
	Drain(userID string) []reclaim.Notification
}

// Reply is what a command sends back to its caller.
type Reply struct {
	Text     string   `json:"text"`
	Rejected bool     `json:"rejected,omitempty"`
	Notices  []string `json:"notices,omitempty"`
}

// BeginReply confirms a started session.
type BeginReply struct {
	Reply
	SessionID int64  `json:"session_id,omitempty"`
	Note      string `json:"note"`
}

// EndReply reports a stopped session.
type EndReply struct {
	Reply
	SessionID   int64   `json:"session_id,omitempty"`
	HoursWorked float64 `json:"hours_worked"`
}

// HistoryReply lists closed sessions.
type HistoryReply struct {
	Reply
	UserID  string                `json:"user_id"`
	Entries []report.HistoryEntry `json:"entries"`
}

// SummaryReply reports total hours over a window.
type SummaryReply struct {
	Reply
	UserID string  `json:"user_id"`
	Days   int     `json:"days"`
	Hours  float64 `json:"hours"`
}

// StatusReply describes the caller's open session, if any.
type StatusReply struct {
	Reply
	Active    bool    `json:"active"`
	SessionID int64   `json:"session_id,omitempty"`
	StartTS   int64   `json:"start_ts,omitempty"`
	Note      string  `json:"note,omitempty"`
	Elapsed   float64 `json:"elapsed_hours,omitempty"`
}

// Handler maps user commands onto the session core.
type Handler struct {
	sessions SessionService
	reports  ReportService
	active   *ActiveSet
	inbox    Inbox
	now      func() time.Time
	logger   *slog.Logger
}

// NewHandler creates a command handler. inbox may be nil.
func NewHandler(sessions SessionService, reports ReportService, active *ActiveSet, inbox Inbox, now func() time.Time, logger *slog.Logger) *Handler {
	if active == nil {
		active = NewActiveSet()
	}
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		sessions: sessions,
		reports:  reports,
		active:   active,
		inbox:    inbox,
		now:      now,
		logger:   logger,
	}
}

// Begin starts the caller's workday.
func (h *Handler) Begin(ctx context.Context, userID, note string) (*BeginReply, error) {
	notices := h.notices(userID)

	// A hit is confirmed with a read instead of an insert attempt; a stale
	// entry is dropped and the start proceeds.
	if h.active.Has(userID) {
		sess, err := h.sessions.Active(ctx, userID)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return h.rejectBegin(userID, notices), nil
		}
		h.active.Clear(userID)
	}

	sess, err := h.sessions.Start(ctx, userID, note)
	if err != nil {
		if errors.Is(err, worksession.ErrAlreadyActive) {
			return h.rejectBegin(userID, notices), nil
		}
		return nil, err
	}

	h.active.Mark(userID, note)
	return &BeginReply{
		Reply: Reply{
			Text:    fmt.Sprintf("Started your workday.\nNote: %q", note),
			Notices: notices,
		},
		SessionID: sess.ID,
		Note:      note,
	}, nil
}

// End stops the caller's workday.
func (h *Handler) End(ctx context.Context, userID, finishNote string) (*EndReply, error) {
	notices := h.notices(userID)

	result, err := h.sessions.Stop(ctx, userID, finishNote)
	if err != nil {
		if errors.Is(err, worksession.ErrNoActiveSession) {
			h.active.Clear(userID)
			return &EndReply{Reply: Reply{
				Text:     "You don't have an active session. Use begin first.",
				Rejected: true,
				Notices:  notices,
			}}, nil
		}
		return nil, err
	}

	h.active.Clear(userID)
	return &EndReply{
		Reply: Reply{
			Text:    fmt.Sprintf("You worked %.2f hours.", result.Hours),
			Notices: notices,
		},
		SessionID:   result.Session.ID,
		HoursWorked: result.Hours,
	}, nil
}

// History lists closed sessions of target, newest first.
func (h *Handler) History(ctx context.Context, callerID, targetID string, limit int) (*HistoryReply, error) {
	if targetID == "" {
		targetID = callerID
	}
	notices := h.notices(callerID)

	entries, err := h.reports.History(ctx, targetID, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return &HistoryReply{
			Reply:   Reply{Text: fmt.Sprintf("No past sessions for %s.", targetID), Notices: notices},
			UserID:  targetID,
			Entries: []report.HistoryEntry{},
		}, nil
	}

	return &HistoryReply{
		Reply:   Reply{Text: FormatHistory(entries), Notices: notices},
		UserID:  targetID,
		Entries: entries,
	}, nil
}

// Summary totals the hours of target over the trailing days.
func (h *Handler) Summary(ctx context.Context, callerID, targetID string, days int) (*SummaryReply, error) {
	if targetID == "" {
		targetID = callerID
	}
	if days <= 0 {
		days = h.reports.Defaults().SummaryDays
	}
	notices := h.notices(callerID)

	total, err := h.reports.Summary(ctx, targetID, days)
	if err != nil {
		return nil, err
	}

	return &SummaryReply{
		Reply: Reply{
			Text:    fmt.Sprintf("%s worked %.2f h in the last %d days.", targetID, total, days),
			Notices: notices,
		},
		UserID: targetID,
		Days:   days,
		Hours:  total,
	}, nil
}

// Status reports the caller's open session.
func (h *Handler) Status(ctx context.Context, userID string) (*StatusReply, error) {
	notices := h.notices(userID)

	sess, err := h.sessions.Active(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		h.active.Clear(userID)
		return &StatusReply{Reply: Reply{Text: "No active session.", Notices: notices}}, nil
	}

	h.active.Mark(userID, sess.Note)
	elapsed := worksession.HoursBetween(sess.StartTS, h.now().Unix())
	if elapsed < 0 {
		elapsed = 0
	}
	return &StatusReply{
		Reply: Reply{
			Text:    fmt.Sprintf("Session %d running for %.2f hours.", sess.ID, elapsed),
			Notices: notices,
		},
		Active:    true,
		SessionID: sess.ID,
		StartTS:   sess.StartTS,
		Note:      sess.Note,
		Elapsed:   elapsed,
	}, nil
}

// Reclaimed drops reclaimed users from the guard. It is meant as a sweep hook.
func (h *Handler) Reclaimed(notifications []reclaim.Notification) {
	for _, n := range notifications {
		h.active.Clear(n.UserID)
	}
}

func (h *Handler) rejectBegin(userID string, notices []string) *BeginReply {
	h.logger.Debug("begin rejected", "user_id", userID)
	return &BeginReply{Reply: Reply{
		Text:     "You already have an active session.",
		Rejected: true,
		Notices:  notices,
	}}
}

func (h *Handler) notices(userID string) []string {
	if h.inbox == nil || userID == "" {
		return nil
	}
	pending := h.inbox.Drain(userID)
	if len(pending) == 0 {
		return nil
	}
	out := make([]string, 0, len(pending))
	for _, n := range pending {
		out = append(out, notify.Message(n))
	}
	return out
}

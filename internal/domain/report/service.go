package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
)

const (
	// DefaultHistoryLimit bounds history when the caller gives no limit.
	DefaultHistoryLimit = 5
	// DefaultSummaryDays is the trailing window used when the caller gives none.
	DefaultSummaryDays = 7

	secondsPerDay = 86400
)

// Options configures reporting defaults.
type Options struct {
	HistoryLimit int
	SummaryDays  int
}

// Service answers read-only history and summary queries.
type Service struct {
	sessions Repository
	clock    clockwork.Clock
	opts     Options
	logger   *slog.Logger
}

// NewService creates a reporting service.
func NewService(sessions Repository, clock clockwork.Clock, opts Options, logger *slog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.SummaryDays <= 0 {
		opts.SummaryDays = DefaultSummaryDays
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{sessions: sessions, clock: clock, opts: opts, logger: logger}
}

// History returns up to limit closed sessions, newest first.
func (s *Service) History(ctx context.Context, userID string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}

	closed, err := s.sessions.ListClosed(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(closed))
	for _, sess := range closed {
		if sess.StopTS == nil {
			continue
		}
		entries = append(entries, HistoryEntry{
			ID:      sess.ID,
			StartTS: sess.StartTS,
			StopTS:  *sess.StopTS,
			Hours:   sess.Hours(),
			Note:    sess.Note,
		})
	}
	return entries, nil
}

// Summary returns total hours over closed sessions started within the trailing window.
func (s *Service) Summary(ctx context.Context, userID string, days int) (float64, error) {
	if days <= 0 {
		days = s.opts.SummaryDays
	}

	since := s.clock.Now().Unix() - int64(days)*secondsPerDay
	total, err := s.sessions.SumHours(ctx, userID, since)
	if err != nil {
		return 0, fmt.Errorf("summing hours: %w", err)
	}
	s.logger.Debug("summary computed", "user_id", userID, "days", days, "hours", total)
	return total, nil
}

// Defaults returns the effective history limit and summary window.
func (s *Service) Defaults() Options {
	return s.opts
}

package worksession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jonboulle/clockwork"
	"github.com/rpggio/worklog/internal/metrics"
	"github.com/rpggio/worklog/internal/repository"
)

// Service enforces the one-active-session-per-user rule and drives start/stop.
type Service struct {
	sessions Repository
	clock    clockwork.Clock
	logger   *slog.Logger
}

// NewService creates a new session service.
func NewService(sessions Repository, clock clockwork.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions: sessions,
		clock:    clock,
		logger:   logger,
	}
}

// Start opens a new session for the user.
func (s *Service) Start(ctx context.Context, userID, note string) (*WorkSession, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	active, err := s.sessions.FindActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading active session: %w", err)
	}
	if active != nil {
		metrics.SessionRejections.WithLabelValues("already_active").Inc()
		return nil, ErrAlreadyActive
	}

	startTS := s.clock.Now().Unix()
	id, err := s.sessions.Insert(ctx, userID, startTS, note)
	if err != nil {
		if errors.Is(err, repository.ErrActiveExists) {
			metrics.SessionRejections.WithLabelValues("already_active").Inc()
			return nil, ErrAlreadyActive
		}
		return nil, fmt.Errorf("creating session: %w", err)
	}

	metrics.SessionsStarted.Inc()
	s.logger.Debug("session started", "user_id", userID, "session_id", id)

	return &WorkSession{
		ID:      id,
		UserID:  userID,
		StartTS: startTS,
		Note:    note,
	}, nil
}

// Stop closes the user's active session and reports the hours worked.
func (s *Service) Stop(ctx context.Context, userID, finishNote string) (*StopResult, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	active, err := s.sessions.FindActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading active session: %w", err)
	}
	if active == nil {
		metrics.SessionRejections.WithLabelValues("no_active_session").Inc()
		return nil, ErrNoActiveSession
	}

	stopTS := s.clock.Now().Unix()
	if stopTS < active.StartTS {
		stopTS = active.StartTS
	}
	note := AppendFinishNote(active.Note, finishNote)

	if err := s.sessions.CloseSession(ctx, active.ID, stopTS, note); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyClosed):
			// Reclaimed between the read and the write.
			metrics.SessionRejections.WithLabelValues("no_active_session").Inc()
			return nil, ErrNoActiveSession
		case errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("closing session %d: active row vanished: %w", active.ID, err)
		default:
			return nil, fmt.Errorf("closing session: %w", err)
		}
	}

	closed := *active
	closed.StopTS = &stopTS
	closed.Note = note

	metrics.SessionsStopped.Inc()
	s.logger.Debug("session stopped", "user_id", userID, "session_id", closed.ID, "hours", closed.Hours())

	return &StopResult{
		Session: closed,
		Hours:   closed.Hours(),
	}, nil
}

// Active returns the user's open session, or nil if there is none.
func (s *Service) Active(ctx context.Context, userID string) (*WorkSession, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	active, err := s.sessions.FindActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading active session: %w", err)
	}
	return active, nil
}

package reclaim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/rpggio/worklog/internal/metrics"
	"github.com/rpggio/worklog/internal/repository"
)

// DefaultMaxHours is the ceiling after which an open session is reclaimed.
const DefaultMaxHours = 16

// Reclaimer force-closes sessions left open past maxHours.
type Reclaimer struct {
	sessions Repository
	clock    clockwork.Clock
	maxHours int
	logger   *slog.Logger
}

// NewReclaimer creates a reclaimer. A non-positive maxHours falls back to DefaultMaxHours.
func NewReclaimer(sessions Repository, clock clockwork.Clock, maxHours int, logger *slog.Logger) *Reclaimer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if maxHours <= 0 {
		maxHours = DefaultMaxHours
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reclaimer{
		sessions: sessions,
		clock:    clock,
		maxHours: maxHours,
		logger:   logger,
	}
}

// MaxHours returns the configured ceiling.
func (r *Reclaimer) MaxHours() int {
	return r.maxHours
}

// Sweep closes every overdue session at start_ts + maxHours and returns one
// notification per session it closed. Rows that fail to close are logged and
// skipped; their errors are joined into the returned error.
func (r *Reclaimer) Sweep(ctx context.Context) ([]Notification, error) {
	started := time.Now()
	defer func() {
		metrics.SweepDuration.Observe(time.Since(started).Seconds())
	}()

	ceiling := int64(r.maxHours) * 3600
	cutoff := r.clock.Now().Unix() - ceiling

	overdue, err := r.sessions.FindAllOverdue(ctx, cutoff)
	if err != nil {
		metrics.SweepErrors.Inc()
		return nil, fmt.Errorf("loading overdue sessions: %w", err)
	}
	if len(overdue) == 0 {
		return nil, nil
	}

	runID := uuid.NewString()
	logger := r.logger.With("sweep_id", runID)

	var (
		reclaimed []Notification
		errs      []error
	)
	for _, sess := range overdue {
		stopTS := sess.StartTS + ceiling
		if err := r.sessions.CloseOverdue(ctx, sess.ID, stopTS); err != nil {
			if errors.Is(err, repository.ErrAlreadyClosed) {
				logger.Debug("overdue session already closed", "session_id", sess.ID, "user_id", sess.UserID)
				continue
			}
			logger.Error("failed to reclaim session", "session_id", sess.ID, "user_id", sess.UserID, "error", err)
			errs = append(errs, fmt.Errorf("reclaiming session %d: %w", sess.ID, err))
			continue
		}

		metrics.SessionsReclaimed.Inc()
		logger.Info("reclaimed overdue session", "session_id", sess.ID, "user_id", sess.UserID, "max_hours", r.maxHours)

		reclaimed = append(reclaimed, Notification{
			ID:          uuid.New(),
			SessionID:   sess.ID,
			UserID:      sess.UserID,
			MaxHours:    r.maxHours,
			HoursWorked: worksession.HoursBetween(sess.StartTS, stopTS),
			StartTS:     sess.StartTS,
			StopTS:      stopTS,
		})
	}

	if len(errs) > 0 {
		metrics.SweepErrors.Inc()
		return reclaimed, errors.Join(errs...)
	}
	return reclaimed, nil
}

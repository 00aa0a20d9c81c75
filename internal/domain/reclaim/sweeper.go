package reclaim

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultSweepInterval is the wait between sweeps.
const DefaultSweepInterval = 300 * time.Second

// Sweeper runs the reclaimer on a fixed interval and hands each
// notification to a publisher.
type Sweeper struct {
	reclaimer *Reclaimer
	publisher Publisher
	interval  time.Duration
	clock     clockwork.Clock
	logger    *slog.Logger
	onSweep   func([]Notification)
}

// SweeperOption customizes a Sweeper.
type SweeperOption func(*Sweeper)

// WithSweepHook registers a callback invoked with every sweep's reclaimed list,
// after the notifications have been published.
func WithSweepHook(fn func([]Notification)) SweeperOption {
	return func(s *Sweeper) {
		s.onSweep = fn
	}
}

// NewSweeper creates a periodic sweeper.
func NewSweeper(reclaimer *Reclaimer, publisher Publisher, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, opts ...SweeperOption) *Sweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sweeper{
		reclaimer: reclaimer,
		publisher: publisher,
		interval:  interval,
		clock:     clock,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
// A sweep that has started always finishes its batch.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("overdue sweeper started", "interval", s.interval, "max_hours", s.reclaimer.MaxHours())
	s.sweep(context.WithoutCancel(ctx))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("overdue sweeper stopped")
			return
		case <-ticker.Chan():
			s.sweep(context.WithoutCancel(ctx))
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	reclaimed, err := s.reclaimer.Sweep(ctx)
	if err != nil {
		s.logger.Error("overdue sweep failed", "error", err, "reclaimed", len(reclaimed))
	}

	for _, n := range reclaimed {
		if s.publisher == nil {
			continue
		}
		if !s.publisher.Publish(n) {
			s.logger.Warn("notification dropped", "session_id", n.SessionID, "user_id", n.UserID)
		}
	}

	if s.onSweep != nil && len(reclaimed) > 0 {
		s.onSweep(reclaimed)
	}
}

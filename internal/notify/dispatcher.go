package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpggio/worklog/internal/domain/reclaim"
	"github.com/rpggio/worklog/internal/metrics"
)

// Deliverer hands a notification to its recipient.
type Deliverer interface {
	Deliver(ctx context.Context, n reclaim.Notification) error
}

// Dispatcher drains an outbox into a deliverer. Delivery is best effort:
// failures are logged and counted, never retried.
type Dispatcher struct {
	outbox    *Outbox
	deliverer Deliverer
	logger    *slog.Logger
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(outbox *Outbox, deliverer Deliverer, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{outbox: outbox, deliverer: deliverer, logger: logger}
}

// Run delivers notifications until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.outbox.ch:
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n reclaim.Notification) {
	if err := d.deliverer.Deliver(ctx, n); err != nil {
		metrics.NotificationsFailed.WithLabelValues("delivery").Inc()
		d.logger.Warn("notification delivery failed", "user_id", n.UserID, "session_id", n.SessionID, "error", err)
		return
	}
	metrics.NotificationsDelivered.Inc()
	d.logger.Debug("notification delivered", "user_id", n.UserID, "session_id", n.SessionID)
}

// Message renders the text shown to a user whose session was reclaimed.
func Message(n reclaim.Notification) string {
	return fmt.Sprintf("Auto-stopped session %d after %dh (worked %.2fh).", n.SessionID, n.MaxHours, n.HoursWorked)
}

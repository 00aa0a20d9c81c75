package notify

import (
	"github.com/rpggio/worklog/internal/domain/reclaim"
	"github.com/rpggio/worklog/internal/metrics"
)

// DefaultQueueSize is the outbox capacity when none is configured.
const DefaultQueueSize = 64

// Outbox is a bounded queue between the sweeper and the dispatcher.
type Outbox struct {
	ch chan reclaim.Notification
}

// NewOutbox creates an outbox holding up to size pending notifications.
func NewOutbox(size int) *Outbox {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Outbox{ch: make(chan reclaim.Notification, size)}
}

// Publish enqueues n without blocking. It reports false when the queue is full.
func (o *Outbox) Publish(n reclaim.Notification) bool {
	select {
	case o.ch <- n:
		return true
	default:
		metrics.NotificationsFailed.WithLabelValues("queue_full").Inc()
		return false
	}
}

// Pending returns the number of queued notifications.
func (o *Outbox) Pending() int {
	return len(o.ch)
}

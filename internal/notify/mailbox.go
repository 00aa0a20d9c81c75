package notify

import (
	"context"
	"errors"
	"sync"

	"github.com/rpggio/worklog/internal/domain/reclaim"
)

// DefaultMailboxCapacity bounds pending notices per user.
const DefaultMailboxCapacity = 32

// ErrMailboxFull is returned when a user's mailbox cannot take more notices.
var ErrMailboxFull = errors.New("mailbox full")

// Mailbox keeps undelivered notices per user until the user next shows up.
type Mailbox struct {
	mu       sync.Mutex
	capacity int
	pending  map[string][]reclaim.Notification
}

// NewMailbox creates a mailbox holding up to capacity notices per user.
func NewMailbox(capacity int) *Mailbox {
	if capacity <= 0 {
		capacity = DefaultMailboxCapacity
	}
	return &Mailbox{
		capacity: capacity,
		pending:  make(map[string][]reclaim.Notification),
	}
}

// Deliver stores n for its user.
func (m *Mailbox) Deliver(_ context.Context, n reclaim.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.pending[n.UserID]) >= m.capacity {
		return ErrMailboxFull
	}
	m.pending[n.UserID] = append(m.pending[n.UserID], n)
	return nil
}

// Drain returns and clears the user's pending notices.
func (m *Mailbox) Drain(userID string) []reclaim.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	notices := m.pending[userID]
	delete(m.pending, userID)
	return notices
}

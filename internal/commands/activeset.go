package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/rpggio/worklog/internal/domain/worksession"
)

// ActiveLister lists every open session; used to warm the guard at startup.
type ActiveLister interface {
	ListActive(ctx context.Context) ([]worksession.WorkSession, error)
}

// ActiveSet caches which users have an open session. It only saves round
// trips; the store stays authoritative and the set may be stale.
type ActiveSet struct {
	mu    sync.RWMutex
	notes map[string]string
}

// NewActiveSet creates an empty set.
func NewActiveSet() *ActiveSet {
	return &ActiveSet{notes: make(map[string]string)}
}

// Warm replaces the set with the store's open sessions.
func (a *ActiveSet) Warm(ctx context.Context, lister ActiveLister) (int, error) {
	active, err := lister.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading active sessions: %w", err)
	}

	notes := make(map[string]string, len(active))
	for _, sess := range active {
		notes[sess.UserID] = sess.Note
	}

	a.mu.Lock()
	a.notes = notes
	a.mu.Unlock()
	return len(notes), nil
}

// Has reports whether the user is believed to have an open session.
func (a *ActiveSet) Has(userID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.notes[userID]
	return ok
}

// Mark records an open session for the user.
func (a *ActiveSet) Mark(userID, note string) {
	a.mu.Lock()
	a.notes[userID] = note
	a.mu.Unlock()
}

// Clear forgets the user's open session.
func (a *ActiveSet) Clear(userID string) {
	a.mu.Lock()
	delete(a.notes, userID)
	a.mu.Unlock()
}

// Len returns the number of users in the set.
func (a *ActiveSet) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.notes)
}

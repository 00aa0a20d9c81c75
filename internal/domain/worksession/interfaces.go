package worksession

import "context"

// Repository provides persistence for work sessions.
type Repository interface {
	Insert(ctx context.Context, userID string, startTS int64, note string) (int64, error)
	CloseSession(ctx context.Context, id, stopTS int64, note string) error
	FindActive(ctx context.Context, userID string) (*WorkSession, error)
}

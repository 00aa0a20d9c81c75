package reclaim

import (
	"context"

	"github.com/rpggio/worklog/internal/domain/worksession"
)

// Repository provides the store operations a sweep needs.
type Repository interface {
	FindAllOverdue(ctx context.Context, cutoffStartTS int64) ([]worksession.WorkSession, error)
	CloseOverdue(ctx context.Context, id, stopTS int64) error
}

// Publisher receives reclaimed-session notifications for delivery.
type Publisher interface {
	Publish(n Notification) bool
}

package report

import (
	"context"

	"github.com/rpggio/worklog/internal/domain/worksession"
)

// Repository provides read access for reporting.
type Repository interface {
	ListClosed(ctx context.Context, userID string, limit int) ([]worksession.WorkSession, error)
	SumHours(ctx context.Context, userID string, sinceTS int64) (float64, error)
}

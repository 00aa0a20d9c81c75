package mocks

import (
	"context"

	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/stretchr/testify/mock"
)

// WorkSessionRepository is a mock of the work session store. It satisfies
// worksession.Repository, reclaim.Repository and report.Repository.
type WorkSessionRepository struct {
	mock.Mock
}

func (m *WorkSessionRepository) Insert(ctx context.Context, userID string, startTS int64, note string) (int64, error) {
	args := m.Called(ctx, userID, startTS, note)
	return args.Get(0).(int64), args.Error(1)
}

func (m *WorkSessionRepository) CloseSession(ctx context.Context, id, stopTS int64, note string) error {
	args := m.Called(ctx, id, stopTS, note)
	return args.Error(0)
}

func (m *WorkSessionRepository) CloseOverdue(ctx context.Context, id, stopTS int64) error {
	args := m.Called(ctx, id, stopTS)
	return args.Error(0)
}

func (m *WorkSessionRepository) FindActive(ctx context.Context, userID string) (*worksession.WorkSession, error) {
	args := m.Called(ctx, userID)
	if sess, ok := args.Get(0).(*worksession.WorkSession); ok {
		return sess, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkSessionRepository) FindAllOverdue(ctx context.Context, cutoffStartTS int64) ([]worksession.WorkSession, error) {
	args := m.Called(ctx, cutoffStartTS)
	if list, ok := args.Get(0).([]worksession.WorkSession); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkSessionRepository) ListActive(ctx context.Context) ([]worksession.WorkSession, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]worksession.WorkSession); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkSessionRepository) ListClosed(ctx context.Context, userID string, limit int) ([]worksession.WorkSession, error) {
	args := m.Called(ctx, userID, limit)
	if list, ok := args.Get(0).([]worksession.WorkSession); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *WorkSessionRepository) SumHours(ctx context.Context, userID string, sinceTS int64) (float64, error) {
	args := m.Called(ctx, userID, sinceTS)
	return args.Get(0).(float64), args.Error(1)
}

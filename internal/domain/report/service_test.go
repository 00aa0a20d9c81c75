package report_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rpggio/worklog/internal/domain/report"
	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/rpggio/worklog/internal/repository/mocks"
	"github.com/rpggio/worklog/internal/sqlite"
	"github.com/stretchr/testify/require"
)

const day = int64(86400)

func newStore(t *testing.T) *sqlite.WorkSessionRepository {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	return sqlite.NewWorkSessionRepository(db)
}

func seedClosed(t *testing.T, repo *sqlite.WorkSessionRepository, userID string, startTS, stopTS int64, note string) {
	t.Helper()
	ctx := context.Background()

	id, err := repo.Insert(ctx, userID, startTS, note)
	require.NoError(t, err)
	require.NoError(t, repo.CloseSession(ctx, id, stopTS, note))
}

func TestReportService_History(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)
	clock := clockwork.NewFakeClockAt(time.Unix(10*day, 0))
	svc := report.NewService(repo, clock, report.Options{}, nil)

	seedClosed(t, repo, "u1", 0, 3600, "A")
	seedClosed(t, repo, "u1", day, day+1800, "B")
	seedClosed(t, repo, "u1", 2*day, 2*day+7200, "C")
	_, err := repo.Insert(ctx, "u1", 3*day, "still going")
	require.NoError(t, err)

	entries, err := svc.History(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "C", entries[0].Note)
	require.InDelta(t, 2.0, entries[0].Hours, 1e-9)
	require.Equal(t, "B", entries[1].Note)
	require.InDelta(t, 0.5, entries[1].Hours, 1e-9)

	entries, err = svc.History(ctx, "u1", 100)
	require.NoError(t, err)
	require.Len(t, entries, 3, "active session excluded")
	for _, e := range entries {
		require.GreaterOrEqual(t, e.StopTS, e.StartTS)
	}
}

func TestReportService_History_SingleRowScenario(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)
	clock := clockwork.NewFakeClockAt(time.Unix(0, 0))
	sessions := worksession.NewService(repo, clock, nil)
	svc := report.NewService(repo, clock, report.Options{}, nil)

	_, err := sessions.Start(ctx, "u", "A")
	require.NoError(t, err)
	clock.Advance(time.Hour)
	result, err := sessions.Stop(ctx, "u", "")
	require.NoError(t, err)
	require.Equal(t, 1.0, result.Hours)

	entries, err := svc.History(ctx, "u", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, 1.0, entries[0].Hours)
	require.Equal(t, "A", entries[0].Note)
	require.Equal(t, int64(0), entries[0].StartTS)
	require.Equal(t, int64(3600), entries[0].StopTS)
}

func TestReportService_History_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.WorkSessionRepository{}
	repo.On("ListClosed", ctx, "u1", 3).Return([]worksession.WorkSession{}, nil)

	svc := report.NewService(repo, clockwork.NewFakeClock(), report.Options{HistoryLimit: 3}, nil)
	entries, err := svc.History(ctx, "u1", 0)
	require.NoError(t, err)
	require.Empty(t, entries)
	require.NotNil(t, entries)
	repo.AssertExpectations(t)

	require.Equal(t, report.Options{HistoryLimit: 3, SummaryDays: report.DefaultSummaryDays}, svc.Defaults())
}

func TestReportService_History_Empty(t *testing.T) {
	repo := newStore(t)
	svc := report.NewService(repo, clockwork.NewFakeClock(), report.Options{}, nil)

	entries, err := svc.History(context.Background(), "nobody", 5)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestReportService_Summary_Window(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)
	now := 30 * day
	clock := clockwork.NewFakeClockAt(time.Unix(now, 0))
	svc := report.NewService(repo, clock, report.Options{}, nil)

	seedClosed(t, repo, "u1", now-10*day, now-10*day+3600, "outside")
	seedClosed(t, repo, "u1", now-7*day, now-7*day+1800, "boundary")
	seedClosed(t, repo, "u1", now-day, now-day+7200, "inside")
	seedClosed(t, repo, "u2", now-day, now-day+7200, "other user")

	total, err := svc.Summary(ctx, "u1", 7)
	require.NoError(t, err)
	require.InDelta(t, 2.5, total, 1e-9)

	total, err = svc.Summary(ctx, "u1", 1)
	require.NoError(t, err)
	require.InDelta(t, 2.0, total, 1e-9)

	total, err = svc.Summary(ctx, "u1", 0)
	require.NoError(t, err)
	require.InDelta(t, 2.5, total, 1e-9, "non-positive days uses the default window")
}

func TestReportService_Summary_NoSessions(t *testing.T) {
	repo := newStore(t)
	svc := report.NewService(repo, clockwork.NewFakeClock(), report.Options{}, nil)

	total, err := svc.Summary(context.Background(), "nobody", 7)
	require.NoError(t, err)
	require.Equal(t, 0.0, total)
}

func TestReportService_Summary_EqualsHistorySum(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t)
	now := 40 * day
	clock := clockwork.NewFakeClockAt(time.Unix(now, 0))
	svc := report.NewService(repo, clock, report.Options{}, nil)

	starts := []int64{now - 20*day, now - 9*day, now - 5*day, now - 3*day + 600, now - 3600}
	for i, start := range starts {
		seedClosed(t, repo, "u1", start, start+int64(i+1)*1234, "")
	}

	for _, days := range []int{1, 3, 7, 14, 30} {
		since := now - int64(days)*day
		entries, err := svc.History(ctx, "u1", 1_000_000)
		require.NoError(t, err)

		var want float64
		for _, e := range entries {
			if e.StartTS >= since {
				want += e.Hours
			}
		}

		got, err := svc.Summary(ctx, "u1", days)
		require.NoError(t, err)
		require.InDelta(t, want, got, 1e-9, "days=%d", days)
	}
}

func TestReportService_StoreFailure(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.WorkSessionRepository{}
	boom := errors.New("io error")
	clock := clockwork.NewFakeClockAt(time.Unix(8*day, 0))

	repo.On("ListClosed", ctx, "u1", 5).Return(nil, boom)
	repo.On("SumHours", ctx, "u1", day).Return(0.0, boom)

	svc := report.NewService(repo, clock, report.Options{}, nil)
	_, err := svc.History(ctx, "u1", 5)
	require.ErrorIs(t, err, boom)
	_, err = svc.Summary(ctx, "u1", 7)
	require.ErrorIs(t, err, boom)
}

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rpggio/worklog/internal/commands"
	"github.com/rpggio/worklog/internal/domain/reclaim"
	"github.com/rpggio/worklog/internal/domain/report"
	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/rpggio/worklog/internal/notify"
	"github.com/rpggio/worklog/internal/sqlite"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	repo     *sqlite.WorkSessionRepository
	clock    *clockwork.FakeClock
	active   *commands.ActiveSet
	mailbox  *notify.Mailbox
	handler  *commands.Handler
	sessions *worksession.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { _ = db.Close() })

	repo := sqlite.NewWorkSessionRepository(db)
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	sessions := worksession.NewService(repo, clock, nil)
	reports := report.NewService(repo, clock, report.Options{}, nil)
	active := commands.NewActiveSet()
	mailbox := notify.NewMailbox(0)

	return &fixture{
		repo:     repo,
		clock:    clock,
		active:   active,
		mailbox:  mailbox,
		handler:  commands.NewHandler(sessions, reports, active, mailbox, clock.Now, nil),
		sessions: sessions,
	}
}

func TestHandler_BeginEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	begin, err := f.handler.Begin(ctx, "u1", "docs")
	require.NoError(t, err)
	require.False(t, begin.Rejected)
	require.Equal(t, "docs", begin.Note)
	require.NotZero(t, begin.SessionID)
	require.True(t, f.active.Has("u1"))

	again, err := f.handler.Begin(ctx, "u1", "again")
	require.NoError(t, err)
	require.True(t, again.Rejected)

	f.clock.Advance(2 * time.Hour)
	end, err := f.handler.End(ctx, "u1", "shipped")
	require.NoError(t, err)
	require.False(t, end.Rejected)
	require.InDelta(t, 2.0, end.HoursWorked, 1e-9)
	require.Equal(t, "You worked 2.00 hours.", end.Text)
	require.False(t, f.active.Has("u1"))

	end, err = f.handler.End(ctx, "u1", "")
	require.NoError(t, err)
	require.True(t, end.Rejected)
}

func TestHandler_StaleGuardAfterRestart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// Open session exists in the store but the guard is empty.
	_, err := f.sessions.Start(ctx, "u1", "before restart")
	require.NoError(t, err)
	require.False(t, f.active.Has("u1"))

	begin, err := f.handler.Begin(ctx, "u1", "dup")
	require.NoError(t, err)
	require.True(t, begin.Rejected, "store check rejects even on a guard miss")

	f.clock.Advance(time.Hour)
	end, err := f.handler.End(ctx, "u1", "")
	require.NoError(t, err)
	require.False(t, end.Rejected)
	require.InDelta(t, 1.0, end.HoursWorked, 1e-9)
}

func TestHandler_StaleGuardEntryIsDropped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	f.active.Mark("u1", "ghost")
	begin, err := f.handler.Begin(ctx, "u1", "real")
	require.NoError(t, err)
	require.False(t, begin.Rejected)

	active, err := f.repo.FindActive(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "real", active.Note)
}

func TestHandler_WarmFromStore(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.repo.Insert(ctx, "u1", 0, "a")
	require.NoError(t, err)
	_, err = f.repo.Insert(ctx, "u2", 0, "b")
	require.NoError(t, err)

	f.active.Mark("gone", "")
	n, err := f.active.Warm(ctx, f.repo)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.True(t, f.active.Has("u1"))
	require.True(t, f.active.Has("u2"))
	require.False(t, f.active.Has("gone"))
}

func TestHandler_HistoryAndSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty, err := f.handler.History(ctx, "u1", "", 5)
	require.NoError(t, err)
	require.Equal(t, "No past sessions for u1.", empty.Text)
	require.Empty(t, empty.Entries)

	_, err = f.handler.Begin(ctx, "u1", "A")
	require.NoError(t, err)
	f.clock.Advance(90 * time.Minute)
	_, err = f.handler.End(ctx, "u1", "")
	require.NoError(t, err)

	history, err := f.handler.History(ctx, "u2", "u1", 5)
	require.NoError(t, err)
	require.Equal(t, "u1", history.UserID)
	require.Len(t, history.Entries, 1)
	require.Contains(t, history.Text, "| 1.5h | A")

	summary, err := f.handler.Summary(ctx, "u1", "", 0)
	require.NoError(t, err)
	require.Equal(t, 7, summary.Days)
	require.InDelta(t, 1.5, summary.Hours, 1e-9)
	require.Equal(t, "u1 worked 1.50 h in the last 7 days.", summary.Text)

	none, err := f.handler.Summary(ctx, "u3", "", 7)
	require.NoError(t, err)
	require.Equal(t, 0.0, none.Hours)
}

func TestHandler_Status(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	status, err := f.handler.Status(ctx, "u1")
	require.NoError(t, err)
	require.False(t, status.Active)

	_, err = f.handler.Begin(ctx, "u1", "n")
	require.NoError(t, err)
	f.clock.Advance(30 * time.Minute)

	status, err = f.handler.Status(ctx, "u1")
	require.NoError(t, err)
	require.True(t, status.Active)
	require.InDelta(t, 0.5, status.Elapsed, 1e-9)
	require.Equal(t, "n", status.Note)
}

func TestHandler_ReclaimNoticesAndGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	begin, err := f.handler.Begin(ctx, "u1", "")
	require.NoError(t, err)
	f.clock.Advance(20 * time.Hour)

	reclaimed, err := reclaim.NewReclaimer(f.repo, f.clock, 16, nil).Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, reclaimed, 1)
	for _, n := range reclaimed {
		require.NoError(t, f.mailbox.Deliver(ctx, n))
	}
	f.handler.Reclaimed(reclaimed)
	require.False(t, f.active.Has("u1"))

	next, err := f.handler.Begin(ctx, "u1", "fresh")
	require.NoError(t, err)
	require.False(t, next.Rejected)
	require.Len(t, next.Notices, 1)
	require.Contains(t, next.Notices[0], "worked 16.00h")
	require.Contains(t, next.Notices[0], "session")
	require.NotEqual(t, begin.SessionID, next.SessionID)

	again, err := f.handler.Status(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, again.Notices, "notices are delivered once")
}

func TestFormatHistory(t *testing.T) {
	out := commands.FormatHistory([]report.HistoryEntry{
		{ID: 3, StartTS: 0, StopTS: 3600, Hours: 1, Note: "A"},
	})
	require.Equal(t, "ID | Started          | Stopped          | Hrs   | Note\n3 | 1970-01-01 00:00 | 1970-01-01 01:00 | 1.0h | A", out)
}

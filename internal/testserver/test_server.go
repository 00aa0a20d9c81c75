package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/worklog/internal/commands"
	"github.com/rpggio/worklog/internal/domain/reclaim"
	"github.com/rpggio/worklog/internal/domain/report"
	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/rpggio/worklog/internal/mcp"
	"github.com/rpggio/worklog/internal/notify"
	"github.com/rpggio/worklog/internal/sqlite"
	"github.com/rpggio/worklog/internal/transport"
	"github.com/stretchr/testify/require"
)

// Epoch is the fake clock's starting time.
var Epoch = time.Unix(1_700_000_000, 0)

// TestServer runs the full HTTP stack against an in-memory database and a fake clock.
type TestServer struct {
	Server    *httptest.Server
	DB        *sqlite.DB
	Repo      *sqlite.WorkSessionRepository
	Clock     *clockwork.FakeClock
	Reclaimer *reclaim.Reclaimer
	Mailbox   *notify.Mailbox
	Commands  *commands.Handler
}

// New starts a server with the given reclaim ceiling in hours.
func New(t *testing.T, maxHours int) *TestServer {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	repo := sqlite.NewWorkSessionRepository(db)
	clock := clockwork.NewFakeClockAt(Epoch)
	mailbox := notify.NewMailbox(0)
	handler := commands.NewHandler(
		worksession.NewService(repo, clock, nil),
		report.NewService(repo, clock, report.Options{}, nil),
		commands.NewActiveSet(),
		mailbox,
		clock.Now,
		nil,
	)

	mcpServer := mcp.NewServer(mcp.Config{
		Services: mcp.Services{Commands: handler},
	})
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		nil,
	)
	server := httptest.NewServer(transport.NewServer(mcpHandler, db, nil))

	ts := &TestServer{
		Server:    server,
		DB:        db,
		Repo:      repo,
		Clock:     clock,
		Reclaimer: reclaim.NewReclaimer(repo, clock, maxHours, nil),
		Mailbox:   mailbox,
		Commands:  handler,
	}

	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return ts
}

// Sweep runs one reclamation pass and delivers its notices straight to the mailbox.
func (ts *TestServer) Sweep(t *testing.T) []reclaim.Notification {
	t.Helper()
	ctx := context.Background()

	reclaimed, err := ts.Reclaimer.Sweep(ctx)
	require.NoError(t, err)
	for _, n := range reclaimed {
		require.NoError(t, ts.Mailbox.Deliver(ctx, n))
	}
	ts.Commands.Reclaimed(reclaimed)
	return reclaimed
}

// Connect opens an MCP client session over HTTP acting as userID.
func (ts *TestServer) Connect(t *testing.T, userID string) *sdkmcp.ClientSession {
	t.Helper()

	httpClient := &http.Client{Transport: userTransport{userID: userID, next: http.DefaultTransport}}
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "worklog-test", Version: "v0"}, nil)
	session, err := client.Connect(context.Background(), &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.Server.URL + "/mcp",
		HTTPClient: httpClient,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

type userTransport struct {
	userID string
	next   http.RoundTripper
}

func (u userTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if u.userID != "" {
		req.Header.Set(mcp.UserHeader, u.userID)
	}
	return u.next.RoundTrip(req)
}

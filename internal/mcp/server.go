package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/worklog/internal/commands"
)

// CommandService defines the command operations exposed as tools.
type CommandService interface {
	Begin(ctx context.Context, userID, note string) (*commands.BeginReply, error)
	End(ctx context.Context, userID, finishNote string) (*commands.EndReply, error)
	History(ctx context.Context, callerID, targetID string, limit int) (*commands.HistoryReply, error)
	Summary(ctx context.Context, callerID, targetID string, days int) (*commands.SummaryReply, error)
	Status(ctx context.Context, userID string) (*commands.StatusReply, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Commands CommandService
}

// Config contains server configuration.
type Config struct {
	Services    Services
	DefaultUser string
	Version     string
	Logger      *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "worklog",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(userMiddleware(cfg.DefaultUser))
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, NewHandler(cfg.Services.Commands), cfg.Logger)

	return server
}

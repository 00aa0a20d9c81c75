package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/worklog/internal/commands"
	"github.com/rpggio/worklog/internal/domain/reclaim"
	"github.com/rpggio/worklog/internal/mcp"
	"github.com/rpggio/worklog/internal/notify"
	"github.com/rpggio/worklog/internal/transport"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the worklog tools over MCP (stdio or HTTP)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(nil)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, a)
		},
	}
}

func serve(ctx context.Context, a *app) error {
	logger := a.logger

	active := commands.NewActiveSet()
	warmed, err := active.Warm(ctx, a.repo)
	if err != nil {
		return err
	}
	logger.Info("active sessions loaded", "count", warmed)

	outbox := notify.NewOutbox(a.cfg.Notify.QueueSize)
	mailbox := notify.NewMailbox(0)
	handler := commands.NewHandler(a.sessions, a.reports, active, mailbox, a.clock.Now, logger)

	sweeper := reclaim.NewSweeper(a.reclaimer, outbox, a.cfg.Sessions.SweepInterval(), a.clock, logger,
		reclaim.WithSweepHook(handler.Reclaimed))
	dispatcher := notify.NewDispatcher(outbox, mailbox, logger)

	bgCtx, cancelBackground := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sweeper.Run(bgCtx)
	}()
	go func() {
		defer wg.Done()
		dispatcher.Run(bgCtx)
	}()
	defer func() {
		cancelBackground()
		wg.Wait()
	}()

	mcpServer := mcp.NewServer(mcp.Config{
		Services:    mcp.Services{Commands: handler},
		DefaultUser: a.cfg.Sessions.DefaultUser,
		Version:     version,
		Logger:      logger,
	})

	if a.cfg.Transport.Mode == "stdio" {
		return runStdioMode(ctx, logger, mcpServer)
	}
	return runHTTPMode(ctx, a, mcpServer)
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or ctx is cancelled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, a *app, mcpServer *sdkmcp.Server) error {
	logger := a.logger

	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
	)

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           transport.NewServer(mcpHandler, a.db, logger),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

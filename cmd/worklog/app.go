package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rpggio/worklog/internal/config"
	"github.com/rpggio/worklog/internal/domain/reclaim"
	"github.com/rpggio/worklog/internal/domain/report"
	"github.com/rpggio/worklog/internal/domain/worksession"
	"github.com/rpggio/worklog/internal/sqlite"
)

// app holds the wiring shared by every subcommand.
type app struct {
	cfg       config.Config
	logger    *slog.Logger
	clock     clockwork.Clock
	db        *sqlite.DB
	repo      *sqlite.WorkSessionRepository
	sessions  *worksession.Service
	reports   *report.Service
	reclaimer *reclaim.Reclaimer
}

// loadApp reads .env and configuration, opens the database and applies the schema.
// Logs go to logOut; nil picks stderr in stdio mode, where stdout carries
// JSON-RPC, and stdout otherwise.
func loadApp(logOut io.Writer) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	if logOut == nil {
		logOut = os.Stdout
		if cfg.Transport.Mode == "stdio" {
			logOut = os.Stderr
		}
	}
	logger := newLogger(logOut, cfg.Log)

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, err
	}

	clock := clockwork.NewRealClock()
	repo := sqlite.NewWorkSessionRepository(db)

	return &app{
		cfg:      cfg,
		logger:   logger,
		clock:    clock,
		db:       db,
		repo:     repo,
		sessions: worksession.NewService(repo, clock, logger),
		reports: report.NewService(repo, clock, report.Options{
			HistoryLimit: cfg.Sessions.HistoryLimit,
			SummaryDays:  cfg.Sessions.SummaryDays,
		}, logger),
		reclaimer: reclaim.NewReclaimer(repo, clock, cfg.Sessions.MaxHours, logger),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" || strings.HasPrefix(path, "file:") {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

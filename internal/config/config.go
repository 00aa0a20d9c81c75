package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Transport TransportConfig `yaml:"transport"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Sessions  SessionsConfig  `yaml:"sessions"`
	Notify    NotifyConfig    `yaml:"notify"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "stdio" or "http"
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

type SessionsConfig struct {
	MaxHours             int    `yaml:"max_hours"`
	SweepIntervalSeconds int    `yaml:"sweep_interval_seconds"`
	HistoryLimit         int    `yaml:"history_limit"`
	SummaryDays          int    `yaml:"summary_days"`
	DefaultUser          string `yaml:"default_user"`
}

// SweepInterval returns the sweep period as a duration.
func (s SessionsConfig) SweepInterval() time.Duration {
	return time.Duration(s.SweepIntervalSeconds) * time.Second
}

type NotifyConfig struct {
	QueueSize int `yaml:"queue_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Transport: TransportConfig{
			Mode: "stdio",
		},
		DB: DBConfig{
			Path: "worklog.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Sessions: SessionsConfig{
			MaxHours:             16,
			SweepIntervalSeconds: 300,
			HistoryLimit:         5,
			SummaryDays:          7,
		},
		Notify: NotifyConfig{
			QueueSize: 64,
		},
	}
}

// Load reads configuration from defaults, an optional YAML file and environment variables,
// in that order of precedence.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("WORKLOG_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		errs = append(errs, fmt.Errorf("transport.mode must be stdio or http, got %q", c.Transport.Mode))
	}
	if strings.TrimSpace(c.DB.Path) == "" {
		errs = append(errs, errors.New("db.path is required"))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Sessions.MaxHours <= 0 {
		errs = append(errs, fmt.Errorf("sessions.max_hours must be positive, got %d", c.Sessions.MaxHours))
	}
	if c.Sessions.SweepIntervalSeconds <= 0 {
		errs = append(errs, fmt.Errorf("sessions.sweep_interval_seconds must be positive, got %d", c.Sessions.SweepIntervalSeconds))
	}
	if c.Sessions.HistoryLimit <= 0 {
		errs = append(errs, fmt.Errorf("sessions.history_limit must be positive, got %d", c.Sessions.HistoryLimit))
	}
	if c.Sessions.SummaryDays <= 0 {
		errs = append(errs, fmt.Errorf("sessions.summary_days must be positive, got %d", c.Sessions.SummaryDays))
	}
	if c.Notify.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("notify.queue_size must be positive, got %d", c.Notify.QueueSize))
	}
	return errors.Join(errs...)
}

func applyEnv(cfg *Config) error {
	setString("WORKLOG_SERVER_HOST", &cfg.Server.Host)
	setString("WORKLOG_TRANSPORT_MODE", &cfg.Transport.Mode)
	setString("WORKLOG_DB_PATH", &cfg.DB.Path)
	setString("WORKLOG_LOG_LEVEL", &cfg.Log.Level)
	setString("WORKLOG_LOG_FORMAT", &cfg.Log.Format)
	setString("WORKLOG_DEFAULT_USER", &cfg.Sessions.DefaultUser)

	ints := []struct {
		key string
		dst *int
	}{
		{"WORKLOG_SERVER_PORT", &cfg.Server.Port},
		{"WORKLOG_MAX_HOURS", &cfg.Sessions.MaxHours},
		{"WORKLOG_SWEEP_INTERVAL_SECONDS", &cfg.Sessions.SweepIntervalSeconds},
		{"WORKLOG_HISTORY_LIMIT", &cfg.Sessions.HistoryLimit},
		{"WORKLOG_SUMMARY_DAYS", &cfg.Sessions.SummaryDays},
		{"WORKLOG_NOTIFY_QUEUE_SIZE", &cfg.Notify.QueueSize},
	}
	for _, v := range ints {
		if err := setInt(v.key, v.dst); err != nil {
			return err
		}
	}
	return nil
}

func setString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Package config holds the client's runtime configuration. Values come
// from flags and FYSICS_* environment variables, bound in cmd/fysics.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"fysics/internal/store"
)

// Config holds all client configuration
type Config struct {
	APIURL         string        // backend origin, e.g. http://localhost:8000
	WSURL          string        // event channel origin override (optional)
	DataDir        string        // local store directory
	PollInterval   time.Duration // session-status poll cadence
	RequestTimeout time.Duration // per-request HTTP timeout
	LogLevel       string        // debug, info, warn, error
	LogFormat      string        // "json" or "text"
}

// Default returns the configuration used before any flags or env apply
func Default() *Config {
	return &Config{
		DataDir:        store.DefaultDir(),
		PollInterval:   2 * time.Second,
		RequestTimeout: 30 * time.Second,
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// Validate checks the configuration before any command runs
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return errors.New("missing backend URL: set --api-url or FYSICS_API_URL")
	}
	if _, err := url.Parse(c.APIURL); err != nil {
		return fmt.Errorf("invalid --api-url: %w", err)
	}
	if c.WSURL != "" {
		if _, err := url.Parse(c.WSURL); err != nil {
			return fmt.Errorf("invalid --ws-url: %w", err)
		}
	}
	if c.PollInterval <= 0 {
		return errors.New("--poll-interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("--timeout must be positive")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid --log-format %q (want json or text)", c.LogFormat)
	}
	return nil
}

// Logger builds the process logger from the configured level and format
func (c *Config) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(c.LogLevel)}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

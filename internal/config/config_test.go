package config

import (
	"bytes"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.APIURL = "http://localhost:8000"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"valid", func(c *Config) {}, true},
		{"with ws override", func(c *Config) { c.WSURL = "wss://events.test" }, true},
		{"missing api url", func(c *Config) { c.APIURL = "" }, false},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, false},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }, false},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantOK && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.wantOK && err == nil {
				t.Error("Validate accepted a bad config")
			}
		})
	}
}

func TestLoggerFormat(t *testing.T) {
	cfg := validConfig()
	cfg.LogFormat = "json"

	var buf bytes.Buffer
	cfg.Logger(&buf).Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("json logger wrote %q", buf.String())
	}

	cfg.LogFormat = "text"
	buf.Reset()
	cfg.Logger(&buf).Info("hello")
	if strings.HasPrefix(buf.String(), "{") {
		t.Errorf("text logger wrote %q", buf.String())
	}
}

func TestLoggerLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
	logger.Warn("loud")
	if buf.Len() == 0 {
		t.Error("warn suppressed at warn level")
	}
}

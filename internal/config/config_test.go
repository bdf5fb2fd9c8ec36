package config

import (
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

const configTestPrefix = "config:config_test"

const validKey = "8f2b4b2a3c0e1d9f6a7b8c9d0e1f2a3b4c5d6e7f8091a2b3c4d5e6f708192a3b"

var allEnv = []string{
	"DISCORD_APPLICATION_ID", "DISCORD_PUBLIC_KEY", "DISCORD_TOKEN",
	"INTERACTIONS_ROUTE", "HTTP_ADDR", "HTTP_PORT", "MAX_BODY_BYTES", "SHUTDOWN_TIMEOUT",
	"COMMS_URL", "SERVICE_NAME", "INTERACTION_EVENT_SUBJECT",
	"DEPLOY_GUILD_IDS", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range allEnv {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", configTestPrefix, err)
	}

	if cfg.Route != "/interactions" {
		t.Errorf("%s - Route = %q, want /interactions", configTestPrefix, cfg.Route)
	}
	if cfg.HTTPPort != 3000 {
		t.Errorf("%s - HTTPPort = %d, want 3000", configTestPrefix, cfg.HTTPPort)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Errorf("%s - MaxBodyBytes = %d, want 1 MiB", configTestPrefix, cfg.MaxBodyBytes)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("%s - ShutdownTimeout = %v, want 10s", configTestPrefix, cfg.ShutdownTimeout)
	}
	if cfg.COMMSURL != "" {
		t.Errorf("%s - COMMSURL = %q, want empty (events disabled)", configTestPrefix, cfg.COMMSURL)
	}
	if cfg.COMMSName != "interactions-gateway" {
		t.Errorf("%s - COMMSName = %q", configTestPrefix, cfg.COMMSName)
	}
	if cfg.InteractionSubject != "interactions.dispatched" {
		t.Errorf("%s - InteractionSubject = %q", configTestPrefix, cfg.InteractionSubject)
	}
	if len(cfg.DeployGuildIDs) != 0 {
		t.Errorf("%s - DeployGuildIDs = %v, want empty", configTestPrefix, cfg.DeployGuildIDs)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("%s - LogLevel = %q, want info", configTestPrefix, cfg.LogLevel)
	}
	if cfg.Addr() != ":3000" {
		t.Errorf("%s - Addr() = %q, want :3000", configTestPrefix, cfg.Addr())
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DISCORD_APPLICATION_ID", "123")
	t.Setenv("DISCORD_PUBLIC_KEY", validKey)
	t.Setenv("HTTP_ADDR", "127.0.0.1:8081")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("DEPLOY_GUILD_IDS", "1,2")
	t.Setenv("COMMS_URL", "nats://127.0.0.1:4222")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("%s - unexpected error: %v", configTestPrefix, err)
	}
	if cfg.ApplicationID != "123" || cfg.PublicKey != validKey {
		t.Errorf("%s - application = %q/%q", configTestPrefix, cfg.ApplicationID, cfg.PublicKey)
	}
	if cfg.Addr() != "127.0.0.1:8081" {
		t.Errorf("%s - Addr() = %q", configTestPrefix, cfg.Addr())
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("%s - ShutdownTimeout = %v", configTestPrefix, cfg.ShutdownTimeout)
	}
	if len(cfg.DeployGuildIDs) != 2 || cfg.DeployGuildIDs[1] != "2" {
		t.Errorf("%s - DeployGuildIDs = %v", configTestPrefix, cfg.DeployGuildIDs)
	}
	if cfg.COMMSURL != "nats://127.0.0.1:4222" {
		t.Errorf("%s - COMMSURL = %q", configTestPrefix, cfg.COMMSURL)
	}
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")

	if _, err := LoadConfig(); err == nil {
		t.Errorf("%s - expected error for invalid duration", configTestPrefix)
	}
}

func TestValidateForServe(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ApplicationID:   "123",
			PublicKey:       validKey,
			Route:           "/interactions",
			MaxBodyBytes:    1024,
			ShutdownTimeout: time.Second,
		}
	}

	if err := valid().ValidateForServe(); err != nil {
		t.Fatalf("%s - valid config rejected: %v", configTestPrefix, err)
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing application", func(c *Config) { c.ApplicationID = "" }, "DISCORD_APPLICATION_ID"},
		{"missing key", func(c *Config) { c.PublicKey = "" }, "DISCORD_PUBLIC_KEY is required"},
		{"non hex key", func(c *Config) { c.PublicKey = strings.Repeat("zz", 32) }, "64 hex"},
		{"short key", func(c *Config) { c.PublicKey = "abcd" }, "64 hex"},
		{"relative route", func(c *Config) { c.Route = "interactions" }, "INTERACTIONS_ROUTE"},
		{"root route", func(c *Config) { c.Route = "/" }, "collides"},
		{"health route", func(c *Config) { c.Route = "/health" }, "collides"},
		{"ready route", func(c *Config) { c.Route = "/ready" }, "collides"},
		{"metrics route", func(c *Config) { c.Route = "/metrics" }, "collides"},
		{"unclean route", func(c *Config) { c.Route = "/a/../health" }, "clean literal path"},
		{"wildcard route", func(c *Config) { c.Route = "/{id}" }, "clean literal path"},
		{"zero body limit", func(c *Config) { c.MaxBodyBytes = 0 }, "MAX_BODY_BYTES"},
		{"zero shutdown", func(c *Config) { c.ShutdownTimeout = 0 }, "SHUTDOWN_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.ValidateForServe()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("%s - err = %v, want containing %q", configTestPrefix, err, tt.wantErr)
			}
		})
	}
}

func TestValidateForDeploy(t *testing.T) {
	if err := (&Config{ApplicationID: "1", Token: "t"}).ValidateForDeploy(); err != nil {
		t.Errorf("%s - unexpected error: %v", configTestPrefix, err)
	}
	if err := (&Config{Token: "t"}).ValidateForDeploy(); err == nil {
		t.Errorf("%s - expected error without application id", configTestPrefix)
	}
	if err := (&Config{ApplicationID: "1"}).ValidateForDeploy(); err == nil {
		t.Errorf("%s - expected error without token", configTestPrefix)
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"unknown": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (&Config{LogLevel: in}).SlogLevel(); got != want {
			t.Errorf("%s - SlogLevel(%q) = %v, want %v", configTestPrefix, in, got, want)
		}
	}
}

// Package config provides gateway configuration loaded from environment variables.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const logPrefix = "config:LoadConfig"

// Config holds interactions gateway configuration.
type Config struct {
	// Discord application
	ApplicationID string `envconfig:"DISCORD_APPLICATION_ID"`
	PublicKey     string `envconfig:"DISCORD_PUBLIC_KEY"`
	Token         string `envconfig:"DISCORD_TOKEN"`

	// HTTP endpoint (HTTP_ADDR preferred, e.g. "0.0.0.0:3000")
	Route           string        `envconfig:"INTERACTIONS_ROUTE" default:"/interactions"`
	HTTPAddr        string        `envconfig:"HTTP_ADDR"`
	HTTPPort        int           `envconfig:"HTTP_PORT" default:"3000"`
	MaxBodyBytes    int64         `envconfig:"MAX_BODY_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// COMMS: dispatch events are published when COMMS_URL is set.
	COMMSURL           string `envconfig:"COMMS_URL"`
	COMMSName          string `envconfig:"SERVICE_NAME" default:"interactions-gateway"`
	InteractionSubject string `envconfig:"INTERACTION_EVENT_SUBJECT" default:"interactions.dispatched"`

	// Deploy
	DeployGuildIDs []string `envconfig:"DEPLOY_GUILD_IDS"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadConfig loads .env from the working directory when present, then
// configuration from environment variables. Variables already set win over
// .env entries.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s - failed to load .env: %w", logPrefix, err)
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, fmt.Errorf("%s - %w", logPrefix, err)
	}
	return &c, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	if c.HTTPAddr != "" {
		return c.HTTPAddr
	}
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ValidateForServe checks required config when running the HTTP endpoint.
func (c *Config) ValidateForServe() error {
	if c.ApplicationID == "" {
		return fmt.Errorf("%s - DISCORD_APPLICATION_ID is required for serve", logPrefix)
	}
	if c.PublicKey == "" {
		return fmt.Errorf("%s - DISCORD_PUBLIC_KEY is required for serve", logPrefix)
	}
	if key, err := hex.DecodeString(c.PublicKey); err != nil || len(key) != 32 {
		return fmt.Errorf("%s - DISCORD_PUBLIC_KEY must be 64 hex characters", logPrefix)
	}
	if err := validateRoute(c.Route); err != nil {
		return err
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("%s - MAX_BODY_BYTES must be positive", logPrefix)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%s - SHUTDOWN_TIMEOUT must be positive", logPrefix)
	}
	return nil
}

// ReservedRoutes are served by the gateway itself and cannot carry
// interactions.
var ReservedRoutes = []string{"/", "/health", "/ready", "/metrics"}

func validateRoute(route string) error {
	if !strings.HasPrefix(route, "/") {
		return fmt.Errorf("%s - INTERACTIONS_ROUTE must start with /", logPrefix)
	}
	if path.Clean(route) != route || strings.ContainsAny(route, "{} \t") {
		return fmt.Errorf("%s - INTERACTIONS_ROUTE %q must be a clean literal path", logPrefix, route)
	}
	if slices.Contains(ReservedRoutes, route) {
		return fmt.Errorf("%s - INTERACTIONS_ROUTE %q collides with a built-in endpoint", logPrefix, route)
	}
	return nil
}

// ValidateForDeploy checks required config when registering commands.
func (c *Config) ValidateForDeploy() error {
	if c.ApplicationID == "" {
		return fmt.Errorf("%s - DISCORD_APPLICATION_ID is required for deploy", logPrefix)
	}
	if c.Token == "" {
		return fmt.Errorf("%s - DISCORD_TOKEN is required for deploy", logPrefix)
	}
	return nil
}

// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Popup policies
const (
	PopupPolicyRedirect = "redirect"
	PopupPolicyAllow    = "allow"
)

// Config represents the application configuration
type Config struct {
	ServerPort     string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
	DatabasePath   string `env:"DATABASE_PATH" envDefault:"webhost.db"`
	DownloadsPath  string `env:"DOWNLOADS_PATH" envDefault:"/downloads"`
	DefaultHomeURL string `env:"DEFAULT_HOME_URL" envDefault:"https://example.com"`

	PollInterval         time.Duration `env:"POLL_INTERVAL" envDefault:"200ms"`
	OverlayHold          time.Duration `env:"OVERLAY_HOLD" envDefault:"2s"`
	OverlayEnterDuration time.Duration `env:"OVERLAY_ENTER_DURATION" envDefault:"300ms"`
	OverlayExitDuration  time.Duration `env:"OVERLAY_EXIT_DURATION" envDefault:"200ms"`

	GestureThreshold int           `env:"GESTURE_THRESHOLD" envDefault:"10"`
	GestureInterval  time.Duration `env:"GESTURE_INTERVAL" envDefault:"500ms"`

	PopupPolicy      string        `env:"POPUP_POLICY" envDefault:"redirect"`
	GrantPermissions bool          `env:"GRANT_PERMISSIONS" envDefault:"true"`
	TransferRetries  int           `env:"TRANSFER_RETRIES" envDefault:"2"`
	HistoryRetention time.Duration `env:"HISTORY_RETENTION" envDefault:"720h"`
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	logLevel := strings.ToLower(c.LogLevel)
	isValidLevel := false
	for _, level := range validLogLevels {
		if logLevel == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("invalid log level %q, must be one of: %v", c.LogLevel, validLogLevels)
	}

	if c.DownloadsPath == "" {
		return fmt.Errorf("DOWNLOADS_PATH cannot be empty")
	}

	cleanPath := filepath.Clean(c.DownloadsPath)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("DOWNLOADS_PATH must be an absolute path, got: %s", c.DownloadsPath)
	}

	// Check if path exists and is a directory (only if it exists)
	if info, err := os.Stat(cleanPath); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("DOWNLOADS_PATH must be a directory, got file: %s", cleanPath)
		}
	}
	c.DownloadsPath = cleanPath

	if strings.TrimSpace(c.DefaultHomeURL) == "" {
		return fmt.Errorf("DEFAULT_HOME_URL cannot be empty")
	}

	durations := map[string]time.Duration{
		"POLL_INTERVAL":    c.PollInterval,
		"GESTURE_INTERVAL": c.GestureInterval,
	}
	for name, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%s must be positive, got %s", name, d)
		}
	}
	if c.OverlayHold < 0 || c.OverlayEnterDuration < 0 || c.OverlayExitDuration < 0 {
		return fmt.Errorf("overlay durations cannot be negative")
	}

	if c.GestureThreshold < 1 {
		return fmt.Errorf("GESTURE_THRESHOLD must be at least 1, got %d", c.GestureThreshold)
	}

	if c.TransferRetries < 0 {
		return fmt.Errorf("TRANSFER_RETRIES cannot be negative, got %d", c.TransferRetries)
	}

	switch c.PopupPolicy {
	case PopupPolicyRedirect, PopupPolicyAllow:
	default:
		return fmt.Errorf("invalid popup policy %q, must be %q or %q", c.PopupPolicy, PopupPolicyRedirect, PopupPolicyAllow)
	}

	return nil
}

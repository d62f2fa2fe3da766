package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		ServerPort:       "8080",
		LogLevel:         "info",
		DownloadsPath:    "/tmp",
		DefaultHomeURL:   "https://example.com",
		PollInterval:     200 * time.Millisecond,
		OverlayHold:      2 * time.Second,
		GestureThreshold: 10,
		GestureInterval:  500 * time.Millisecond,
		PopupPolicy:      PopupPolicyRedirect,
		TransferRetries:  2,
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		wantErr bool
	}{
		{
			name: "valid config",
			envVars: map[string]string{
				"SERVER_PORT":      "9090",
				"LOG_LEVEL":        "debug",
				"DOWNLOADS_PATH":   "/downloads",
				"DEFAULT_HOME_URL": "https://intranet.local",
				"POLL_INTERVAL":    "100ms",
			},
			wantErr: false,
		},
		{
			name:    "defaults applied",
			envVars: map[string]string{},
			wantErr: false,
		},
		{
			name: "invalid duration",
			envVars: map[string]string{
				"POLL_INTERVAL": "soon",
			},
			wantErr: true,
		},
		{
			name: "invalid popup policy",
			envVars: map[string]string{
				"POPUP_POLICY": "block",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load()

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if _, exists := tt.envVars["SERVER_PORT"]; !exists {
				require.Equal(t, "8080", cfg.ServerPort)
			}
			if _, exists := tt.envVars["POLL_INTERVAL"]; !exists {
				require.Equal(t, 200*time.Millisecond, cfg.PollInterval)
			}
			if _, exists := tt.envVars["DEFAULT_HOME_URL"]; !exists {
				require.Equal(t, "https://example.com", cfg.DefaultHomeURL)
			}
			require.Equal(t, 10, cfg.GestureThreshold)
			require.Equal(t, 500*time.Millisecond, cfg.GestureInterval)
			require.Equal(t, 2*time.Second, cfg.OverlayHold)
			require.True(t, cfg.GrantPermissions)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
		{
			name:    "relative downloads path",
			mutate:  func(c *Config) { c.DownloadsPath = "downloads" },
			wantErr: true,
		},
		{
			name:    "empty downloads path",
			mutate:  func(c *Config) { c.DownloadsPath = "" },
			wantErr: true,
		},
		{
			name:    "empty home url",
			mutate:  func(c *Config) { c.DefaultHomeURL = "  " },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.PollInterval = 0 },
			wantErr: true,
		},
		{
			name:    "zero gesture threshold",
			mutate:  func(c *Config) { c.GestureThreshold = 0 },
			wantErr: true,
		},
		{
			name:    "negative overlay hold",
			mutate:  func(c *Config) { c.OverlayHold = -time.Second },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.TransferRetries = -1 },
			wantErr: true,
		},
		{
			name:    "allow popups",
			mutate:  func(c *Config) { c.PopupPolicy = PopupPolicyAllow },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidate_CleansDownloadsPath(t *testing.T) {
	cfg := validConfig()
	cfg.DownloadsPath = "/tmp/../tmp/"
	require.NoError(t, cfg.Validate())
	require.Equal(t, "/tmp", cfg.DownloadsPath)
}

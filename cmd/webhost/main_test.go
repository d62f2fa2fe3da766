package main

import (
	"context"
	"testing"
	"time"

	"webhost/internal/cleanup"
	"webhost/internal/config"
	"webhost/internal/database"
	"webhost/internal/eventloop"
	"webhost/internal/host"
	"webhost/internal/metrics"
	"webhost/internal/settings"
	"webhost/internal/transport"
	"webhost/internal/web"
	"webhost/internal/web/handlers"

	"github.com/stretchr/testify/require"
)

func TestSetupLogging(t *testing.T) {
	levels := []string{"debug", "info", "warn", "error", "invalid"}
	for _, level := range levels {
		t.Run(level, func(t *testing.T) {
			require.NotPanics(t, func() {
				setupLogging(level)
			})
		})
	}
}

func TestRunInvalidConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")

	err := run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to load configuration")
}

func TestRunDatabaseError(t *testing.T) {
	t.Setenv("DOWNLOADS_PATH", t.TempDir())
	t.Setenv("DATABASE_PATH", "/invalid/path/test.db")

	err := run()
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to initialize database")
}

func TestRunServerStartError(t *testing.T) {
	db, err := database.New(":memory:")
	require.NoError(t, err)
	defer db.Close()

	cfg := &config.Config{
		ServerPort:  "999999", // Invalid port
		LogLevel:    "info",
		PopupPolicy: config.PopupPolicyRedirect,
	}
	opts, err := host.OptionsFromConfig(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(eventLoopBuffer)
	go loop.Run(ctx)

	downloads := t.TempDir()
	worker := transport.NewWorker(db, downloads, 0)
	ui := handlers.NewUIState()
	home := settings.NewHome(db, "https://home.example")
	h := host.New(loop, worker, home, ui, opts)
	server := web.NewServer(cfg, h, ui, home, db, metrics.New())

	done := make(chan error, 1)
	go func() {
		done <- runServer(ctx, cancel, server, h, worker, cleanup.NewService(db, downloads, time.Hour))
	}()

	select {
	case err := <-done:
		require.Error(t, err)
		require.Contains(t, err.Error(), "server failed to start")
	case <-time.After(5 * time.Second):
		t.Fatal("runServer did not return")
	}
}

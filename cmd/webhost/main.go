package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
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
)

const (
	// cleanupInterval is how often transfer history is pruned
	cleanupInterval = 24 * time.Hour
	eventLoopBuffer = 64
)

func main() {
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Setup structured logging
	setupLogging(cfg.LogLevel)

	slog.Info("Starting Web Host", "version", "1.0.0")

	opts, err := host.OptionsFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("invalid host options: %w", err)
	}

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	worker := transport.NewWorker(db, cfg.DownloadsPath, cfg.TransferRetries)

	// Transfers left running by a previous process cannot be resumed
	if _, err := worker.RecoverOrphans(); err != nil {
		slog.Error("Failed to recover orphaned transfers", "error", err)
	}

	janitor := cleanup.NewService(db, cfg.DownloadsPath, cfg.HistoryRetention)
	if stats, err := janitor.GetStats(); err != nil {
		slog.Warn("Failed to read transfer stats", "error", err)
	} else {
		slog.Info("Transfer history", "stats", stats)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop := eventloop.New(eventLoopBuffer)
	go loop.Run(ctx)

	m := metrics.New()
	opts.Observers = append(opts.Observers, m.HandleDownloadEvent)

	ui := handlers.NewUIState()
	home := settings.NewHome(db, cfg.DefaultHomeURL)
	h := host.New(loop, worker, home, ui, opts)

	if err := h.LoadHome(ctx); err != nil {
		return fmt.Errorf("failed to load home page: %w", err)
	}

	server := web.NewServer(cfg, h, ui, home, db, m)

	return runServer(ctx, cancel, server, h, worker, janitor)
}

func runServer(ctx context.Context, cancel context.CancelFunc, server *web.Server, h *host.Host, worker *transport.Worker, janitor *cleanup.Service) error {
	// Start transport worker in goroutine
	go worker.Start(ctx)

	// Start history cleanup routine
	go janitor.Run(ctx, cleanupInterval)

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server failed to start: %w", err)
	case sig := <-sigChan:
		slog.Info("Received shutdown signal", "signal", sig.String())
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shutdown server gracefully", "error", err)
	}

	if err := h.Close(shutdownCtx); err != nil {
		slog.Warn("Failed to stop download polling", "error", err)
	}

	// Stops the transport worker, cleanup routine and event loop
	cancel()

	slog.Info("Server shutdown complete")
	return nil
}

// setupLogging configures structured logging based on the log level
func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))
}

// Package web provides the HTTP server and routing
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"webhost/internal/config"
	"webhost/internal/database"
	"webhost/internal/host"
	"webhost/internal/metrics"
	"webhost/internal/settings"
	"webhost/internal/web/handlers"
)

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	handlers *handlers.Handlers
	logger   *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, h *host.Host, ui *handlers.UIState, home *settings.Home, db *database.DB, m *metrics.Metrics) *Server {
	handlers := handlers.NewHandlers(h, ui, home, db)

	mux := newMux(handlers)
	mux.Handle("GET /metrics", m.Handler())

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           m.Middleware(mux),
		ReadHeaderTimeout: 15 * time.Second,
		// Engine dialog and file-chooser requests are held open until the user answers
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		server:   server,
		handlers: handlers,
		logger:   slog.Default(),
	}
}

func newMux(handlers *handlers.Handlers) *http.ServeMux {
	mux := http.NewServeMux()

	// Shell page and polled fragments
	mux.HandleFunc("GET /{$}", handlers.Shell)
	mux.HandleFunc("GET /ui/overlay", handlers.OverlayFragment)
	mux.HandleFunc("GET /ui/dialog", handlers.DialogFragment)
	mux.HandleFunc("GET /ui/settings", handlers.SettingsFragment)
	mux.HandleFunc("GET /ui/notice", handlers.NoticeFragment)
	mux.HandleFunc("GET /ui/state", handlers.State)

	// User input from the shell
	mux.HandleFunc("POST /ui/overlay/animation", handlers.OverlayAnimation)
	mux.HandleFunc("POST /ui/overlay/dismiss", handlers.OverlayDismiss)
	mux.HandleFunc("POST /ui/downloads/cancel", handlers.CancelDownload)
	mux.HandleFunc("POST /ui/dialogs/{id}", handlers.ResolveDialog)
	mux.HandleFunc("POST /ui/file-choices/{id}", handlers.DeliverFiles)
	mux.HandleFunc("POST /ui/settings/{id}", handlers.ResolveSettings)
	mux.HandleFunc("POST /ui/home", handlers.PressHome)
	mux.HandleFunc("POST /ui/back", handlers.PressBack)

	// Browser engine events
	mux.HandleFunc("POST /engine/download", handlers.EngineDownload)
	mux.HandleFunc("POST /engine/dialog", handlers.EngineDialog)
	mux.HandleFunc("POST /engine/file-chooser", handlers.EngineFileChooser)
	mux.HandleFunc("POST /engine/fullscreen/enter", handlers.EngineFullscreenEnter)
	mux.HandleFunc("POST /engine/fullscreen/exit", handlers.EngineFullscreenExit)
	mux.HandleFunc("POST /engine/popup", handlers.EnginePopup)
	mux.HandleFunc("POST /engine/popup/{id}/navigated", handlers.EnginePopupNavigated)
	mux.HandleFunc("POST /engine/permission", handlers.EnginePermission)
	mux.HandleFunc("POST /engine/navigated", handlers.EngineNavigated)

	// API endpoints
	mux.HandleFunc("GET /api/settings/home", handlers.GetHomeSettings)
	mux.HandleFunc("POST /api/settings/home", handlers.SaveHomeSettings)
	mux.HandleFunc("GET /api/transfers", handlers.ListTransfers)
	mux.HandleFunc("GET /api/stats", handlers.GetTransferStats)

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	localIP := getLocalIP()
	_, port, _ := net.SplitHostPort(s.server.Addr)

	s.logger.Info("Starting HTTP server",
		"addr", s.server.Addr,
		"local_ip", localIP,
		"port", port,
		"url", fmt.Sprintf("http://%s:%s", localIP, port))

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// getLocalIP returns the first private IPv4 address, preferring 192.168.*
func getLocalIP() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "localhost"
	}

	var fallback string
	for _, iface := range interfaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			ipNet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := privateIPv4(ipNet.IP); ip != nil {
				if ip[0] == 192 {
					return ip.String()
				}
				if fallback == "" {
					fallback = ip.String()
				}
			}
		}
	}

	if fallback != "" {
		return fallback
	}
	return "localhost"
}

// privateIPv4 returns ip as a 4-byte address when it is in 10/8, 172.16/12 or 192.168/16
func privateIPv4(ip net.IP) net.IP {
	v4 := ip.To4()
	if v4 == nil || !v4.IsPrivate() {
		return nil
	}
	return v4
}

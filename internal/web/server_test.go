package web

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"webhost/internal/config"
	"webhost/internal/database"
	"webhost/internal/downloader/mocks"
	"webhost/internal/eventloop"
	"webhost/internal/host"
	"webhost/internal/metrics"
	"webhost/internal/settings"
	"webhost/internal/web/handlers"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestServer(t *testing.T, port string) *Server {
	t.Helper()

	db, err := database.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	loop := eventloop.New(16)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	t.Cleanup(cancel)

	cfg := &config.Config{
		ServerPort:  port,
		LogLevel:    "info",
		PopupPolicy: "redirect",
	}
	opts, err := host.OptionsFromConfig(cfg)
	require.NoError(t, err)

	ui := handlers.NewUIState()
	home := settings.NewHome(db, "https://home.example")
	h := host.New(loop, mocks.NewMockTransport(gomock.NewController(t)), home, ui, opts)

	return NewServer(cfg, h, ui, home, db, metrics.New())
}

func TestNewServer(t *testing.T) {
	server := newTestServer(t, "8080")
	require.NotNil(t, server)
	require.Equal(t, ":8080", server.server.Addr)
	require.Zero(t, server.server.WriteTimeout)
}

func TestServer_Routes(t *testing.T) {
	server := newTestServer(t, "8080")

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{method: "GET", path: "/", want: http.StatusOK},
		{method: "GET", path: "/ui/state", want: http.StatusOK},
		{method: "GET", path: "/ui/overlay", want: http.StatusOK},
		{method: "GET", path: "/api/settings/home", want: http.StatusOK},
		{method: "GET", path: "/api/stats", want: http.StatusOK},
		{method: "GET", path: "/metrics", want: http.StatusOK},
		{method: "POST", path: "/ui/home", want: http.StatusOK},
		{method: "POST", path: "/engine/popup", body: `{"url":""}`, want: http.StatusOK},
		{method: "GET", path: "/engine/download", want: http.StatusMethodNotAllowed},
		{method: "GET", path: "/nope", want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			server.server.Handler.ServeHTTP(w, req)
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	server := newTestServer(t, "0")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	err := server.Shutdown(ctx)
	require.NoError(t, err)

	select {
	case err := <-errChan:
		require.Equal(t, http.ErrServerClosed, err)
	case <-time.After(time.Second):
		t.Fatal("Server did not shutdown within timeout")
	}
}

func TestPrivateIPv4(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{ip: "192.168.1.20", want: true},
		{ip: "10.0.0.5", want: true},
		{ip: "172.16.0.1", want: true},
		{ip: "172.31.255.255", want: true},
		{ip: "172.32.0.1", want: false},
		{ip: "8.8.8.8", want: false},
		{ip: "127.0.0.1", want: false},
		{ip: "fd00::1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := privateIPv4(net.ParseIP(tt.ip))
			require.Equal(t, tt.want, got != nil)
		})
	}
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"webhost/internal/downloader"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleDownloadEvent(t *testing.T) {
	m := New()

	m.HandleDownloadEvent(downloader.Event{Type: downloader.EventJobStarted, JobID: 1})
	require.Equal(t, 1.0, testutil.ToFloat64(m.DownloadActive))

	m.HandleDownloadEvent(downloader.Event{Type: downloader.EventProgress, JobID: 1, Percent: 50})
	m.HandleDownloadEvent(downloader.Event{Type: downloader.EventJobSucceeded, JobID: 1, BytesDownloaded: 2048})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("started")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("succeeded")))
	assert.Equal(t, 2048.0, testutil.ToFloat64(m.DownloadedBytes))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DownloadActive))
}

func TestHandleDownloadEvent_CreationFailureKeepsActive(t *testing.T) {
	m := New()

	m.HandleDownloadEvent(downloader.Event{Type: downloader.EventJobStarted, JobID: 7})
	m.HandleDownloadEvent(downloader.Event{Type: downloader.EventJobFailed, Reason: "rejected"})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DownloadActive))

	m.HandleDownloadEvent(downloader.Event{Type: downloader.EventJobFailed, JobID: 7, Reason: "network"})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DownloadsTotal.WithLabelValues("failed")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.DownloadActive))
}

func TestMiddleware(t *testing.T) {
	m := New()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	handler := m.Middleware(mux)

	for _, path := range []string{"/items/1", "/items/2"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusTeapot, w.Code)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "GET /items/{id}", "418")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET", "unmatched", "404")))
}

func TestHandler(t *testing.T) {
	m := New()
	m.HandleDownloadEvent(downloader.Event{Type: downloader.EventJobStarted, JobID: 1})

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `webhost_downloads_total{event="started"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

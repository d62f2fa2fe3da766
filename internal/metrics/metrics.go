// Package metrics exposes Prometheus counters for downloads and HTTP traffic
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"webhost/internal/downloader"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Download metrics
	DownloadsTotal  *prometheus.CounterVec
	DownloadedBytes prometheus.Counter
	DownloadActive  prometheus.Gauge

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates the metrics on their own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		DownloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhost_downloads_total",
				Help: "Downloads by lifecycle event",
			},
			[]string{"event"},
		),
		DownloadedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "webhost_downloaded_bytes_total",
				Help: "Bytes of successfully completed downloads",
			},
		),
		DownloadActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "webhost_download_active",
				Help: "1 while a download is in flight",
			},
		),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhost_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "webhost_http_request_duration_seconds",
				Help: "HTTP request duration in seconds",
				// Engine long-polls wait for the user, so the tail is long
				Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 30, 120},
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.DownloadsTotal,
		m.DownloadedBytes,
		m.DownloadActive,
		m.RequestsTotal,
		m.RequestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// HandleDownloadEvent records a coordinator event. It has the downloader.Subscriber signature.
func (m *Metrics) HandleDownloadEvent(e downloader.Event) {
	switch e.Type {
	case downloader.EventJobStarted:
		m.DownloadsTotal.WithLabelValues("started").Inc()
		m.DownloadActive.Set(1)
	case downloader.EventJobSucceeded:
		m.DownloadsTotal.WithLabelValues("succeeded").Inc()
		m.DownloadedBytes.Add(float64(max(0, e.BytesDownloaded)))
		m.DownloadActive.Set(0)
	case downloader.EventJobFailed:
		m.DownloadsTotal.WithLabelValues("failed").Inc()
		// A job that never started leaves the slot as it was
		if e.JobID != 0 {
			m.DownloadActive.Set(0)
		}
	}
}

// Handler serves the metrics in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records every request under the route pattern that matched it
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

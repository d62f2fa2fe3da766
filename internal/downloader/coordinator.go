// Package downloader tracks the single in-flight browser download and turns transport status
// samples into progress and completion events
package downloader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"webhost/pkg/models"
)

var (
	// ErrBusy is returned by Submit while a job is pending or running
	ErrBusy = errors.New("a download is already in progress")

	// ErrTransportCreation wraps failures to open a transport job
	ErrTransportCreation = errors.New("failed to create transport job")
)

// ReasonCancelled is the failure reason reported for an aborted job
const ReasonCancelled = "cancelled"

// Coordinator owns the single-flight download slot. All methods must be called on the event loop.
type Coordinator struct {
	transport   Transport
	poller      *Poller
	logger      *slog.Logger
	subscribers []Subscriber

	job        *models.DownloadJob
	generation uint64
	stopPoll   func()
}

// NewCoordinator creates a coordinator that opens jobs on transport and samples them with poller
func NewCoordinator(transport Transport, poller *Poller) *Coordinator {
	return &Coordinator{
		transport: transport,
		poller:    poller,
		logger:    slog.Default(),
	}
}

// Subscribe registers fn for every event emitted from now on
func (c *Coordinator) Subscribe(fn Subscriber) {
	c.subscribers = append(c.subscribers, fn)
}

// Busy reports whether the single-flight slot is taken
func (c *Coordinator) Busy() bool {
	return c.job != nil && c.job.State.IsActive()
}

// CurrentJob returns a copy of the most recent job, if any
func (c *Coordinator) CurrentJob() (models.DownloadJob, bool) {
	if c.job == nil {
		return models.DownloadJob{}, false
	}
	return *c.job, true
}

// Submit accepts req if no job is in flight. A transport that refuses the job yields a JobFailed
// event and ErrTransportCreation; the slot stays free.
func (c *Coordinator) Submit(ctx context.Context, req models.DownloadRequest) (models.DownloadJob, error) {
	if c.Busy() {
		c.logger.Info("Rejecting download while another is in progress",
			"url", req.URL,
			"job_id", c.job.ID)
		return models.DownloadJob{}, ErrBusy
	}

	fileName := GuessFileName(req.URL, req.ContentDisposition, req.MimeType)

	headers := make(map[string]string)
	if req.UserAgent != "" {
		headers["User-Agent"] = req.UserAgent
	}
	if req.CookieHeader != "" {
		headers["Cookie"] = req.CookieHeader
	}

	id, err := c.transport.Enqueue(ctx, models.TransferRequest{
		URL:      req.URL,
		FileName: fileName,
		MimeType: req.MimeType,
		Headers:  headers,
	})
	if err != nil {
		c.logger.Error("Failed to create transport job", "url", req.URL, "error", err)
		c.emit(Event{Type: EventJobFailed, FileName: fileName, Reason: err.Error()})
		return models.DownloadJob{}, fmt.Errorf("%w: %w", ErrTransportCreation, err)
	}

	c.generation++
	generation := c.generation
	c.job = &models.DownloadJob{
		ID:       id,
		FileName: fileName,
		State:    models.JobPending,
	}

	c.logger.Info("Download started", "job_id", id, "file_name", fileName)
	c.emit(Event{Type: EventJobStarted, JobID: id, FileName: fileName})

	c.stopPoll = c.poller.Start(id, func(sample Sample) {
		c.handleSample(generation, sample)
	})

	return *c.job, nil
}

// Cancel aborts the in-flight job. It returns false when there is nothing to cancel.
func (c *Coordinator) Cancel() bool {
	if !c.Busy() {
		return false
	}

	job := c.job
	if err := c.transport.Cancel(job.ID); err != nil {
		c.logger.Warn("Failed to cancel transport job", "job_id", job.ID, "error", err)
	}

	c.logger.Info("Download cancelled", "job_id", job.ID)
	c.finish(models.JobFailed, ReasonCancelled)
	return true
}

// Shutdown stops any polling without emitting events
func (c *Coordinator) Shutdown() {
	c.stopPolling()
	c.generation++
}

func (c *Coordinator) handleSample(generation uint64, sample Sample) {
	if generation != c.generation || !c.Busy() {
		c.logger.Debug("Discarding stale status sample", "generation", generation, "current", c.generation)
		return
	}

	job := c.job

	// A missing row or a failed read is expected right after enqueue; try again next tick
	if sample.Err != nil || sample.Status == nil {
		c.logger.Debug("Status not available yet", "job_id", job.ID, "error", sample.Err)
		return
	}

	status := sample.Status
	switch status.State {
	case models.JobPending, models.JobRunning:
		if status.State == models.JobRunning {
			job.State = models.JobRunning
		}
		if status.TotalBytes <= 0 {
			return
		}

		percent := int(status.BytesDownloaded * 100 / status.TotalBytes)
		percent = max(0, min(100, percent))
		// Percent never moves backwards within a job, even if the transport restarts. The byte
		// counts are held with it so the display stays consistent until the retry catches up.
		if percent >= job.Percent {
			job.Percent = percent
			job.BytesDownloaded = min(status.BytesDownloaded, status.TotalBytes)
			job.TotalBytes = status.TotalBytes
		}

		c.emit(Event{
			Type:            EventProgress,
			JobID:           job.ID,
			FileName:        job.FileName,
			Percent:         job.Percent,
			BytesDownloaded: job.BytesDownloaded,
			TotalBytes:      job.TotalBytes,
		})

	case models.JobSucceeded:
		if status.TotalBytes > 0 {
			job.TotalBytes = status.TotalBytes
			job.BytesDownloaded = status.BytesDownloaded
		}
		job.Percent = 100
		c.logger.Info("Download succeeded", "job_id", job.ID, "bytes", status.BytesDownloaded)
		c.finish(models.JobSucceeded, "")

	case models.JobFailed:
		reason := status.Reason
		if reason == "" {
			reason = "download failed"
		}
		c.logger.Warn("Download failed", "job_id", job.ID, "reason", reason)
		c.finish(models.JobFailed, reason)

	default:
		c.logger.Warn("Unknown transport state", "job_id", job.ID, "state", status.State)
	}
}

// finish moves the job to a terminal state, releases the slot and emits the terminal event
func (c *Coordinator) finish(state models.JobState, reason string) {
	c.stopPolling()
	c.generation++

	job := c.job
	job.State = state

	event := Event{
		JobID:           job.ID,
		FileName:        job.FileName,
		Percent:         job.Percent,
		BytesDownloaded: job.BytesDownloaded,
		TotalBytes:      job.TotalBytes,
		Reason:          reason,
	}
	if state == models.JobSucceeded {
		event.Type = EventJobSucceeded
	} else {
		event.Type = EventJobFailed
	}
	c.emit(event)
}

func (c *Coordinator) stopPolling() {
	if c.stopPoll != nil {
		c.stopPoll()
		c.stopPoll = nil
	}
}

func (c *Coordinator) emit(event Event) {
	for _, fn := range c.subscribers {
		fn(event)
	}
}

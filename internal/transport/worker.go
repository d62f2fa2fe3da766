// Package transport implements the download transport: queued HTTP fetches written to disk with
// their status persisted in the database
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"webhost/internal/database"
	"webhost/pkg/models"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrInvalidURL is returned by Enqueue for URLs that cannot be fetched
	ErrInvalidURL = errors.New("invalid download url")

	// ErrQueueFull is returned by Enqueue when the worker cannot accept more transfers
	ErrQueueFull = errors.New("transfer queue is full")
)

const (
	// ReasonCancelled is recorded for transfers aborted through Cancel
	ReasonCancelled = "cancelled"

	// ReasonInterrupted is recorded for transfers left unfinished by a previous process
	ReasonInterrupted = "interrupted"

	defaultQueueSize        = 16
	defaultBackoff          = time.Second
	defaultProgressInterval = 250 * time.Millisecond
)

// permanentError marks failures that retrying cannot fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Worker processes queued transfers one at a time
type Worker struct {
	db            *database.DB
	client        *http.Client
	logger        *slog.Logger
	downloadsPath string
	queue         chan int64

	retries          int
	backoff          time.Duration
	progressInterval time.Duration

	mu        sync.Mutex
	headers   map[int64]map[string]string
	cancels   map[int64]context.CancelFunc
	cancelled map[int64]bool
	// finishing marks transfers past the point where a cancel can still stop them
	finishing map[int64]bool
}

// NewWorker creates a transport that stores files under downloadsPath and retries failed fetches
// up to retries times
func NewWorker(db *database.DB, downloadsPath string, retries int) *Worker {
	return &Worker{
		db: db,
		client: &http.Client{
			Timeout: time.Hour,
		},
		logger:           slog.Default(),
		downloadsPath:    downloadsPath,
		queue:            make(chan int64, defaultQueueSize),
		retries:          max(0, retries),
		backoff:          defaultBackoff,
		progressInterval: defaultProgressInterval,
		headers:          make(map[int64]map[string]string),
		cancels:          make(map[int64]context.CancelFunc),
		cancelled:        make(map[int64]bool),
		finishing:        make(map[int64]bool),
	}
}

// Start processes the queue until ctx is cancelled
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("Starting transport worker", "downloads_path", w.downloadsPath)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Transport worker shutting down")
			return
		case id := <-w.queue:
			w.processTransfer(ctx, id)
		}
	}
}

// Enqueue validates req, records a pending transfer and queues it
func (w *Worker) Enqueue(ctx context.Context, req models.TransferRequest) (int64, error) {
	if err := validateURL(req.URL); err != nil {
		return 0, err
	}

	now := time.Now()
	transfer := &models.Transfer{
		URL:       req.URL,
		Filename:  req.FileName,
		Directory: w.downloadsPath,
		MimeType:  req.MimeType,
		Status:    models.JobPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := w.db.CreateTransfer(transfer); err != nil {
		return 0, fmt.Errorf("failed to record transfer: %w", err)
	}

	w.mu.Lock()
	w.headers[transfer.ID] = req.Headers
	w.mu.Unlock()

	select {
	case w.queue <- transfer.ID:
		w.logger.Info("Transfer queued", "transfer_id", transfer.ID, "filename", transfer.Filename)
		return transfer.ID, nil
	default:
		w.logger.Error("Transfer queue is full", "transfer_id", transfer.ID)
		w.forget(transfer.ID)
		w.markFailed(transfer, ErrQueueFull.Error())
		return 0, ErrQueueFull
	}
}

// QueryStatus reads the persisted status of a transfer
func (w *Worker) QueryStatus(ctx context.Context, id int64) (*models.TransferStatus, error) {
	transfer, err := w.db.GetTransfer(id)
	if err != nil {
		return nil, err
	}
	return transfer.Snapshot(), nil
}

// Cancel aborts a queued or running transfer. The worker records the failure once it notices.
func (w *Worker) Cancel(id int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finishing[id] {
		w.logger.Info("Transfer already completing, cancel ignored", "transfer_id", id)
		return nil
	}

	w.cancelled[id] = true
	if cancel, ok := w.cancels[id]; ok {
		cancel()
	}

	w.logger.Info("Transfer cancel requested", "transfer_id", id)
	return nil
}

// RecoverOrphans fails transfers a previous process left pending or running and removes their
// temporary files
func (w *Worker) RecoverOrphans() (int, error) {
	orphans, err := w.db.GetOrphanedTransfers()
	if err != nil {
		return 0, fmt.Errorf("failed to get orphaned transfers: %w", err)
	}

	for _, transfer := range orphans {
		w.removeTemp(transfer)
		w.markFailed(transfer, ReasonInterrupted)
	}

	if len(orphans) > 0 {
		w.logger.Info("Recovered orphaned transfers", "count", len(orphans))
	}
	return len(orphans), nil
}

func (w *Worker) isCancelled(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cancelled[id]
}

// arm registers cancel for the attempt about to start, unless the transfer was cancelled first
func (w *Worker) arm(id int64, cancel context.CancelFunc) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancelled[id] {
		return false
	}
	w.cancels[id] = cancel
	return true
}

// commit claims a fully written transfer for the final rename. After it succeeds Cancel is a no-op.
func (w *Worker) commit(id int64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.cancelled[id] {
		return false
	}
	w.finishing[id] = true
	delete(w.cancels, id)
	return true
}

func (w *Worker) forget(id int64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.headers, id)
	delete(w.cancels, id)
	delete(w.cancelled, id)
	delete(w.finishing, id)
}

// processTransfer runs one transfer to completion, retrying transient failures with backoff
func (w *Worker) processTransfer(ctx context.Context, id int64) {
	defer w.forget(id)

	transfer, err := w.db.GetTransfer(id)
	if err != nil {
		w.logger.Error("Failed to get transfer", "transfer_id", id, "error", err)
		return
	}

	w.mu.Lock()
	headers := w.headers[id]
	w.mu.Unlock()

	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 {
			backoff := w.backoff << (attempt - 1)
			w.logger.Info("Retrying transfer after backoff",
				"transfer_id", id,
				"attempt", attempt,
				"backoff", backoff)

			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}

		attemptCtx, cancel := context.WithCancel(ctx)
		if !w.arm(id, cancel) {
			cancel()
			w.logger.Info("Transfer cancelled", "transfer_id", id)
			w.markFailed(transfer, ReasonCancelled)
			return
		}

		err := w.fetch(attemptCtx, transfer, headers)
		cancel()

		if err == nil {
			w.logger.Info("Transfer completed", "transfer_id", id, "filename", transfer.Filename)
			return
		}

		w.removeTemp(transfer)

		if w.isCancelled(id) {
			w.logger.Info("Transfer cancelled", "transfer_id", id)
			w.markFailed(transfer, ReasonCancelled)
			return
		}
		if ctx.Err() != nil {
			// Shutting down; the row is recovered as an orphan on the next start
			return
		}

		transfer.RetryCount = attempt + 1
		var permanent *permanentError
		if attempt < w.retries && !errors.As(err, &permanent) {
			w.logger.Warn("Transfer attempt failed, will retry",
				"transfer_id", id,
				"attempt", attempt+1,
				"error", err)
			transfer.Status = models.JobPending
			transfer.ErrorMessage = err.Error()
			transfer.UpdatedAt = time.Now()
			w.update(transfer)
			continue
		}

		w.logger.Error("Transfer failed", "transfer_id", id, "error", err)
		w.markFailed(transfer, err.Error())
		return
	}
}

// fetch performs one download attempt into a temporary file and renames it on success
func (w *Worker) fetch(ctx context.Context, transfer *models.Transfer, headers map[string]string) error {
	transfer.Status = models.JobRunning
	transfer.BytesDownloaded = 0
	transfer.UpdatedAt = time.Now()
	if err := w.db.UpdateTransfer(transfer); err != nil {
		return fmt.Errorf("failed to update transfer status: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, transfer.URL, nil)
	if err != nil {
		return &permanentError{fmt.Errorf("failed to create request: %w", err)}
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to start download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("server returned status %d", resp.StatusCode)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return &permanentError{err}
		}
		return err
	}

	transfer.TotalBytes = max(0, resp.ContentLength)

	if err := os.MkdirAll(transfer.Directory, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempPath := filepath.Join(transfer.Directory, transfer.TempFilename())
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if err := w.copyWithProgress(ctx, file, resp.Body, transfer); err != nil {
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}

	if !w.commit(transfer.ID) {
		return context.Canceled
	}

	finalName := uniqueFilename(transfer.Directory, transfer.Filename)
	finalPath := filepath.Join(transfer.Directory, finalName)
	if err := os.Rename(tempPath, finalPath); err != nil {
		w.mu.Lock()
		delete(w.finishing, transfer.ID)
		w.mu.Unlock()
		return fmt.Errorf("failed to move completed file: %w", err)
	}

	// The engine does not always know the type; sniff it from the content
	if transfer.MimeType == "" {
		if mtype, err := mimetype.DetectFile(finalPath); err == nil {
			transfer.MimeType = mtype.String()
		}
	}

	now := time.Now()
	transfer.Filename = finalName
	transfer.Status = models.JobSucceeded
	transfer.ErrorMessage = ""
	if transfer.TotalBytes == 0 {
		transfer.TotalBytes = transfer.BytesDownloaded
	}
	transfer.UpdatedAt = now
	transfer.CompletedAt = &now
	w.update(transfer)

	w.logger.Info("Transfer moved to final location", "transfer_id", transfer.ID, "final_path", finalPath)
	return nil
}

// copyWithProgress copies src to dst, persisting the byte count at most every progressInterval
func (w *Worker) copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, transfer *models.Transfer) error {
	buffer := make([]byte, 32*1024)
	lastUpdate := time.Now()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := src.Read(buffer)
		if n > 0 {
			if _, writeErr := dst.Write(buffer[:n]); writeErr != nil {
				return fmt.Errorf("failed to write to file: %w", writeErr)
			}
			transfer.BytesDownloaded += int64(n)

			if now := time.Now(); now.Sub(lastUpdate) >= w.progressInterval {
				transfer.UpdatedAt = now
				w.update(transfer)
				lastUpdate = now
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read from response: %w", err)
		}
	}
}

func (w *Worker) update(transfer *models.Transfer) {
	if err := w.db.UpdateTransfer(transfer); err != nil {
		w.logger.Warn("Failed to update transfer", "transfer_id", transfer.ID, "error", err)
	}
}

func (w *Worker) markFailed(transfer *models.Transfer, reason string) {
	now := time.Now()
	transfer.Status = models.JobFailed
	transfer.ErrorMessage = reason
	transfer.UpdatedAt = now
	transfer.CompletedAt = &now
	w.update(transfer)
}

func (w *Worker) removeTemp(transfer *models.Transfer) {
	tempPath := filepath.Join(transfer.Directory, transfer.TempFilename())
	if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
		w.logger.Warn("Failed to remove temporary file", "temp_path", tempPath, "error", err)
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return nil
}

// uniqueFilename returns name, or "base (n).ext" when name is already taken in dir
func uniqueFilename(dir, name string) string {
	if _, err := os.Stat(filepath.Join(dir, name)); os.IsNotExist(err) {
		return name
	}

	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
	}
}

// Package models defines the data structures used throughout the application
package models

import (
	"fmt"
	"time"
)

// JobState represents the lifecycle state of a download job or transfer
type JobState string

const (
	JobPending   JobState = "pending"
	JobRunning   JobState = "running"
	JobSucceeded JobState = "succeeded"
	JobFailed    JobState = "failed"
)

// IsActive reports whether the state occupies the single-flight slot
func (s JobState) IsActive() bool {
	return s == JobPending || s == JobRunning
}

// IsTerminal reports whether no further transitions are possible
func (s JobState) IsTerminal() bool {
	return s == JobSucceeded || s == JobFailed
}

// DownloadRequest is produced by the browser surface when a navigation turns into a download.
// It is immutable once created.
type DownloadRequest struct {
	URL                string `json:"url"`
	UserAgent          string `json:"user_agent"`
	ContentDisposition string `json:"content_disposition"`
	MimeType           string `json:"mime_type"`
	CookieHeader       string `json:"cookie_header"`
}

// DownloadJob is the coordinator's view of the single in-flight download
type DownloadJob struct {
	ID              int64    `json:"id"`
	FileName        string   `json:"file_name"`
	State           JobState `json:"state"`
	BytesDownloaded int64    `json:"bytes_downloaded"`
	TotalBytes      int64    `json:"total_bytes"`
	Percent         int      `json:"percent"`
}

// TransferRequest is what the coordinator hands to the transport
type TransferRequest struct {
	URL      string            `json:"url"`
	FileName string            `json:"file_name"`
	MimeType string            `json:"mime_type"`
	Headers  map[string]string `json:"headers"`
}

// TransferStatus is a single status sample read from the transport
type TransferStatus struct {
	State           JobState `json:"state"`
	BytesDownloaded int64    `json:"bytes_downloaded"`
	TotalBytes      int64    `json:"total_bytes"`
	Reason          string   `json:"reason,omitempty"`
}

// Transfer represents a transport record persisted in the database
type Transfer struct {
	ID              int64      `json:"id" db:"id"`
	URL             string     `json:"url" db:"url"`
	Filename        string     `json:"filename" db:"filename"`
	Directory       string     `json:"directory" db:"directory"`
	MimeType        string     `json:"mime_type" db:"mime_type"`
	Status          JobState   `json:"status" db:"status"`
	BytesDownloaded int64      `json:"bytes_downloaded" db:"bytes_downloaded"`
	TotalBytes      int64      `json:"total_bytes" db:"total_bytes"`
	ErrorMessage    string     `json:"error_message" db:"error_message"`
	RetryCount      int        `json:"retry_count" db:"retry_count"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at" db:"completed_at"`
}

// Snapshot converts the record into a status sample
func (t *Transfer) Snapshot() *TransferStatus {
	return &TransferStatus{
		State:           t.Status,
		BytesDownloaded: t.BytesDownloaded,
		TotalBytes:      t.TotalBytes,
		Reason:          t.ErrorMessage,
	}
}

// TempFilename returns the name used while the transfer is still being written
func (t *Transfer) TempFilename() string {
	return fmt.Sprintf("%s.%d.tmp", t.Filename, t.ID)
}

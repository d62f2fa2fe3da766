// Package cleanup prunes old transfer history and stray temporary files from the downloads directory
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"webhost/internal/database"
	"webhost/pkg/models"
)

// TempSuffix is the extension of files still being written by the transport
const TempSuffix = ".tmp"

// Service provides cleanup services
type Service struct {
	db            *database.DB
	logger        *slog.Logger
	downloadsPath string
	retention     time.Duration
}

// NewService creates a cleanup service that keeps finished transfers for retention
func NewService(db *database.DB, downloadsPath string, retention time.Duration) *Service {
	return &Service{
		db:            db,
		logger:        slog.Default(),
		downloadsPath: downloadsPath,
		retention:     retention,
	}
}

// Run cleans up immediately and then every interval until ctx is cancelled
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.RunOnce()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("History cleanup routine shutting down")
			return
		case <-ticker.C:
			s.RunOnce()
		}
	}
}

// RunOnce prunes history and sweeps temporary files, logging rather than returning failures
func (s *Service) RunOnce() {
	s.logger.Info("Running history cleanup", "retention", s.retention)

	if _, err := s.PruneHistory(); err != nil {
		s.logger.Error("Failed to prune transfer history", "error", err)
	}
	if _, err := s.SweepTempFiles(); err != nil {
		s.logger.Error("Failed to sweep temporary files", "error", err)
	}

	s.logger.Info("History cleanup completed")
}

// PruneHistory deletes finished transfers older than the retention period
func (s *Service) PruneHistory() (int64, error) {
	if s.retention <= 0 {
		return 0, nil
	}
	return s.db.DeleteOldTransfers(s.retention)
}

// SweepTempFiles removes temporary files in the downloads directory that no active transfer owns
func (s *Service) SweepTempFiles() (int, error) {
	active, err := s.db.GetOrphanedTransfers()
	if err != nil {
		return 0, fmt.Errorf("failed to get active transfers: %w", err)
	}

	owned := make(map[string]bool, len(active))
	for _, transfer := range active {
		owned[filepath.Join(transfer.Directory, transfer.TempFilename())] = true
	}

	entries, err := os.ReadDir(s.downloadsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read downloads directory: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), TempSuffix) {
			continue
		}

		path := filepath.Join(s.downloadsPath, entry.Name())
		if owned[path] || !s.isPathSafe(path) {
			continue
		}

		s.logger.Info("Deleting stray temporary file", "file", path, "size", s.getFileSize(path))
		if err := os.Remove(path); err != nil {
			s.logger.Warn("Failed to delete temporary file", "file", path, "error", err)
			continue
		}
		removed++
	}

	return removed, nil
}

// GetStats returns the number of transfers per state
func (s *Service) GetStats() (map[models.JobState]int, error) {
	raw, err := s.db.GetTransferStats()
	if err != nil {
		return nil, err
	}

	stats := make(map[models.JobState]int, len(raw))
	for status, count := range raw {
		stats[models.JobState(status)] = count
	}
	return stats, nil
}

// isPathSafe checks if a file path is inside the downloads directory
func (s *Service) isPathSafe(filePath string) bool {
	absFilePath, err := filepath.Abs(filePath)
	if err != nil {
		s.logger.Warn("Failed to get absolute path for file", "file", filePath, "error", err)
		return false
	}

	absBasePath, err := filepath.Abs(s.downloadsPath)
	if err != nil {
		s.logger.Warn("Failed to get absolute path for base directory", "base", s.downloadsPath, "error", err)
		return false
	}

	return strings.HasPrefix(absFilePath, absBasePath+string(os.PathSeparator))
}

// getFileSize returns the size of a file in bytes, or 0 if it can't be determined
func (s *Service) getFileSize(filePath string) int64 {
	if stat, err := os.Stat(filePath); err == nil {
		return stat.Size()
	}
	return 0
}

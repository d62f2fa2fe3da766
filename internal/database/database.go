// Package database provides SQLite database operations for the application
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"webhost/pkg/models"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Add connection parameters to help with concurrent access
	connString := dbPath
	if dbPath != ":memory:" {
		connString = dbPath + "?_busy_timeout=30000&_journal_mode=WAL&_synchronous=NORMAL"
	}

	conn, err := sql.Open("sqlite", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't handle concurrent writes well; a single connection also keeps :memory: shared
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transfers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		filename TEXT NOT NULL,
		directory TEXT NOT NULL,
		mime_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		bytes_downloaded INTEGER DEFAULT 0,
		total_bytes INTEGER DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		retry_count INTEGER DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		completed_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers(status);
	CREATE INDEX IF NOT EXISTS idx_transfers_created_at ON transfers(created_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// GetSetting returns the value stored under key, or ErrNotFound
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.conn.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("failed to get setting: %w", err)
	}
	return value, nil
}

// SetSetting inserts or replaces the value stored under key
func (db *DB) SetSetting(key, value string) error {
	query := `
	INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := db.conn.Exec(query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to set setting: %w", err)
	}
	return nil
}

// DeleteSetting removes key; deleting a missing key is not an error
func (db *DB) DeleteSetting(key string) error {
	if _, err := db.conn.Exec(`DELETE FROM settings WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}

const transferColumns = `id, url, filename, directory, mime_type, status,
		   bytes_downloaded, total_bytes, error_message, retry_count,
		   created_at, updated_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row scanner) (*models.Transfer, error) {
	var transfer models.Transfer
	err := row.Scan(
		&transfer.ID, &transfer.URL, &transfer.Filename, &transfer.Directory,
		&transfer.MimeType, &transfer.Status, &transfer.BytesDownloaded,
		&transfer.TotalBytes, &transfer.ErrorMessage, &transfer.RetryCount,
		&transfer.CreatedAt, &transfer.UpdatedAt, &transfer.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &transfer, nil
}

// CreateTransfer creates a new transfer record
func (db *DB) CreateTransfer(transfer *models.Transfer) error {
	query := `
	INSERT INTO transfers (
		url, filename, directory, mime_type, status,
		bytes_downloaded, total_bytes, error_message, retry_count,
		created_at, updated_at, completed_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		transfer.URL, transfer.Filename, transfer.Directory, transfer.MimeType,
		transfer.Status, transfer.BytesDownloaded, transfer.TotalBytes,
		transfer.ErrorMessage, transfer.RetryCount, transfer.CreatedAt,
		transfer.UpdatedAt, transfer.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create transfer: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	transfer.ID = id
	return nil
}

// GetTransfer retrieves a transfer by ID
func (db *DB) GetTransfer(id int64) (*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = ?`

	transfer, err := scanTransfer(db.conn.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transfer %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transfer: %w", err)
	}

	return transfer, nil
}

// UpdateTransfer updates an existing transfer record
func (db *DB) UpdateTransfer(transfer *models.Transfer) error {
	query := `
	UPDATE transfers SET
		filename = ?, mime_type = ?, status = ?, bytes_downloaded = ?, total_bytes = ?,
		error_message = ?, retry_count = ?, updated_at = ?, completed_at = ?
	WHERE id = ?
	`

	result, err := db.conn.Exec(query,
		transfer.Filename, transfer.MimeType, transfer.Status, transfer.BytesDownloaded,
		transfer.TotalBytes, transfer.ErrorMessage, transfer.RetryCount,
		transfer.UpdatedAt, transfer.CompletedAt, transfer.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer: %w", err)
	}

	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("transfer %d: %w", transfer.ID, ErrNotFound)
	}

	return nil
}

// ListTransfers retrieves transfers, newest first
func (db *DB) ListTransfers(limit, offset int) ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
	ORDER BY created_at DESC, id DESC
	LIMIT ? OFFSET ?`

	return db.queryTransfers(query, limit, offset)
}

// GetOrphanedTransfers retrieves transfers left pending or running by a previous process
func (db *DB) GetOrphanedTransfers() ([]*models.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers
	WHERE status IN (?, ?)
	ORDER BY created_at ASC, id ASC`

	return db.queryTransfers(query, models.JobPending, models.JobRunning)
}

func (db *DB) queryTransfers(query string, args ...any) ([]*models.Transfer, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var transfers []*models.Transfer
	for rows.Next() {
		transfer, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		transfers = append(transfers, transfer)
	}

	return transfers, rows.Err()
}

// DeleteOldTransfers deletes finished transfers older than the specified duration
func (db *DB) DeleteOldTransfers(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	// First get the transfers that will be deleted to clean up temp files
	selectQuery := `
		SELECT id, filename, directory FROM transfers
		WHERE created_at < ? AND status IN (?, ?)
	`

	rows, err := db.conn.Query(selectQuery, cutoff, models.JobFailed, models.JobSucceeded)
	if err != nil {
		return 0, fmt.Errorf("failed to query old transfers: %w", err)
	}

	var stale []models.Transfer
	for rows.Next() {
		var t models.Transfer
		if err := rows.Scan(&t.ID, &t.Filename, &t.Directory); err != nil {
			continue
		}
		stale = append(stale, t)
	}
	rows.Close()

	deleteQuery := `DELETE FROM transfers WHERE created_at < ? AND status IN (?, ?)`
	result, err := db.conn.Exec(deleteQuery, cutoff, models.JobFailed, models.JobSucceeded)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old transfers: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()

	// Best effort; a failed transfer may have left its temp file behind
	for _, t := range stale {
		os.Remove(filepath.Join(t.Directory, t.TempFilename()))
	}

	if rowsAffected > 0 {
		slog.Info("Deleted old transfers", "count", rowsAffected, "cutoff", cutoff)
	}

	return rowsAffected, nil
}

// GetTransferStats returns the number of transfers per status
func (db *DB) GetTransferStats() (map[string]int, error) {
	rows, err := db.conn.Query(`SELECT status, COUNT(*) FROM transfers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan transfer stats: %w", err)
		}
		stats[status] = count
	}

	return stats, rows.Err()
}

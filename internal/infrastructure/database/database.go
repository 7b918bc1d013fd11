package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Database configuration constants.
const (
	// dirPermissions is the permission mode for the store directory.
	dirPermissions = 0750

	// filePermissions is the permission mode for the store file.
	filePermissions = 0600

	// busyTimeout is the maximum time to wait for a database lock.
	// Several device processes may share one store file.
	busyTimeout = 5 * time.Second

	// connectionTimeout bounds the connectivity check at open time.
	connectionTimeout = 5 * time.Second
)

// DB wraps a sql.DB connection to the device store.
type DB struct {
	*sql.DB
	path string
}

// Open connects to the SQLite device store at path, creating the file and
// its directory on first use. WAL mode is always on so a device saving its
// session never blocks another device reading its own row.
//
// Parameters:
//   - path: Filesystem path to the store file
//
// Returns:
//   - *DB: Connected store
//   - error: If connection or configuration fails
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	// See: https://github.com/mattn/go-sqlite3#connection-string
	connStr := fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL",
		path,
		busyTimeout.Milliseconds(),
	)

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	// SQLite only supports one writer.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("verifying store connection: %w", err)
	}

	// Owner read/write only. The file might not exist yet on first run;
	// it will be created with these permissions after the first write.
	_ = os.Chmod(path, filePermissions)

	return db, nil
}

// Close closes the store connection.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}
	return nil
}

// Path returns the filesystem path to the store file.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck verifies the store is accessible.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}
	return nil
}

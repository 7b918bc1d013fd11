package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// SQLite driver, registered as "sqlite3".
	_ "github.com/mattn/go-sqlite3"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// SQLiteRepository implements Gateway using SQLite, for hosts that run
// several devices against one store.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a SQLite-backed store. The db parameter
// should be an open SQLite connection; call Init before first use.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Init creates the devices table if it does not exist.
func (r *SQLiteRepository) Init(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS devices (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			token      TEXT NOT NULL DEFAULT '',
			state      TEXT NOT NULL,
			error      TEXT NOT NULL DEFAULT '',
			config     TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating devices table: %w", err)
	}
	return nil
}

// Save upserts the device keyed by its ID.
func (r *SQLiteRepository) Save(ctx context.Context, d *device.Device) error {
	configJSON, err := json.Marshal(d.Config)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	query := `
		INSERT INTO devices (id, name, token, state, error, config, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			token = excluded.token,
			state = excluded.state,
			error = excluded.error,
			config = excluded.config,
			updated_at = excluded.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		d.ID,
		d.Name,
		d.Token,
		string(d.State),
		d.Error,
		string(configJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting device: %w", err)
	}
	return nil
}

// Load retrieves the device with the given ID, or the most recently saved
// device when id is empty.
func (r *SQLiteRepository) Load(ctx context.Context, id string) (*device.Device, error) {
	query := `
		SELECT id, name, token, state, error, config
		FROM devices
		WHERE id = ?`
	args := []any{id}
	if id == "" {
		query = `
			SELECT id, name, token, state, error, config
			FROM devices
			ORDER BY updated_at DESC
			LIMIT 1`
		args = nil
	}

	var d device.Device
	var state, configJSON string
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&d.ID,
		&d.Name,
		&d.Token,
		&state,
		&d.Error,
		&configJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoStoredDevice
		}
		return nil, fmt.Errorf("querying device: %w", err)
	}

	d.State = device.State(state)
	if err := json.Unmarshal([]byte(configJSON), &d.Config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &d, nil
}

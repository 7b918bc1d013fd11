package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/config"
	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/database"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// Persistence errors.
var (
	// ErrNoStoredDevice means the store holds no device yet; callers
	// typically create a fresh one and save it.
	ErrNoStoredDevice = errors.New("repository: no stored device")

	// ErrUnknownDriver means the configured storage driver is not one of
	// the supported backends.
	ErrUnknownDriver = errors.New("repository: unknown storage driver")
)

// Gateway stores and retrieves the device entity.
type Gateway interface {
	// Save writes the device, replacing any previously stored version.
	Save(ctx context.Context, d *device.Device) error

	// Load retrieves the stored device for the given ID. An empty ID
	// loads whichever device the store holds, which suits single-device
	// deployments. Returns ErrNoStoredDevice when nothing is stored.
	Load(ctx context.Context, id string) (*device.Device, error)
}

// Open builds the Gateway the configuration selects. The returned close
// function releases backend resources and is always safe to call.
func Open(cfg *config.Config) (Gateway, func() error, error) {
	switch cfg.Device.Storage {
	case "file":
		return NewFileRepository(cfg.Device.Path), func() error { return nil }, nil
	case "sqlite":
		db, err := database.Open(cfg.Device.Path)
		if err != nil {
			return nil, nil, err
		}
		repo := NewSQLiteRepository(db.DB)
		if err := repo.Init(context.Background()); err != nil {
			db.Close()
			return nil, nil, err
		}
		return repo, db.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Device.Storage)
	}
}

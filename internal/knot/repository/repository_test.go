package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/janael-pinheiro/knot-protocol-go/internal/infrastructure/config"
	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// storedDevice is a fully populated device as it looks mid-session.
func storedDevice() *device.Device {
	return &device.Device{
		ID:    "1964a231a4d14173",
		Name:  "thermostat",
		Token: "5b67ce6b-ef21-7013-3115-2d6297e1bd2b",
		Config: []device.SensorConfiguration{
			{
				SensorID: 1,
				Schema: device.Schema{
					TypeID:    65521,
					Unit:      0,
					ValueType: device.ValueTypeBool,
					Name:      "temperature",
				},
				Event: device.Event{
					Change:         true,
					TimeSec:        5,
					LowerThreshold: 4.0,
					UpperThreshold: 10.0,
				},
			},
		},
		State: device.StateRegistered,
	}
}

func TestFileRepositoryRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	repo := NewFileRepository(path)
	want := storedDevice()

	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestFileRepositoryLoadAnyDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	repo := NewFileRepository(path)
	want := storedDevice()

	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("ID = %q, want %q", got.ID, want.ID)
	}
}

func TestFileRepositoryLoadMissing(t *testing.T) {
	repo := NewFileRepository(filepath.Join(t.TempDir(), "device.yaml"))

	if _, err := repo.Load(context.Background(), ""); !errors.Is(err, ErrNoStoredDevice) {
		t.Errorf("Load error = %v, want %v", err, ErrNoStoredDevice)
	}
}

func TestFileRepositoryLoadDifferentID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	repo := NewFileRepository(path)

	if err := repo.Save(context.Background(), storedDevice()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.Load(context.Background(), "ffffffffffffffff"); !errors.Is(err, ErrNoStoredDevice) {
		t.Errorf("Load error = %v, want %v", err, ErrNoStoredDevice)
	}
}

func TestFileRepositoryLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatalf("writing corrupt store: %v", err)
	}

	if _, err := NewFileRepository(path).Load(context.Background(), ""); err == nil {
		t.Error("Load succeeded on corrupt store, want error")
	}
}

func TestFileRepositorySaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	repo := NewFileRepository(path)
	dev := storedDevice()

	if err := repo.Save(context.Background(), dev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dev.State = device.StateReady
	dev.Token = ""
	if err := repo.Save(context.Background(), dev); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := repo.Load(context.Background(), dev.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State != device.StateReady {
		t.Errorf("state = %q, want %q", got.State, device.StateReady)
	}
	if got.Token != "" {
		t.Errorf("token = %q, want empty", got.Token)
	}
}

// setupTestDB creates an in-memory SQLite store with the schema applied.
func setupTestDB(t *testing.T) *SQLiteRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := NewSQLiteRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return repo
}

func TestSQLiteRepositoryRoundTrip(t *testing.T) {
	repo := setupTestDB(t)
	want := storedDevice()

	if err := repo.Save(context.Background(), want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := repo.Load(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestSQLiteRepositorySaveUpserts(t *testing.T) {
	repo := setupTestDB(t)
	dev := storedDevice()

	if err := repo.Save(context.Background(), dev); err != nil {
		t.Fatalf("Save: %v", err)
	}
	dev.State = device.StateUnregistered
	dev.Token = ""
	if err := repo.Save(context.Background(), dev); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := repo.Load(context.Background(), dev.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.State != device.StateUnregistered {
		t.Errorf("state = %q, want %q", got.State, device.StateUnregistered)
	}
	if got.Token != "" {
		t.Errorf("token = %q, want empty", got.Token)
	}
}

func TestSQLiteRepositoryLoadMissing(t *testing.T) {
	repo := setupTestDB(t)

	if _, err := repo.Load(context.Background(), "1964a231a4d14173"); !errors.Is(err, ErrNoStoredDevice) {
		t.Errorf("Load error = %v, want %v", err, ErrNoStoredDevice)
	}
	if _, err := repo.Load(context.Background(), ""); !errors.Is(err, ErrNoStoredDevice) {
		t.Errorf("Load(any) error = %v, want %v", err, ErrNoStoredDevice)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	tests := []struct {
		name    string
		storage string
		wantErr error
	}{
		{"file", "file", nil},
		{"sqlite", "sqlite", nil},
		{"unknown", "redis", ErrUnknownDriver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Device.Storage = tt.storage
			cfg.Device.Path = filepath.Join(t.TempDir(), "store")

			gw, closer, err := Open(cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Open error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer closer()
			if gw == nil {
				t.Fatal("Open returned nil gateway")
			}
		})
	}
}

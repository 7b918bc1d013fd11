package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/janael-pinheiro/knot-protocol-go/internal/knot/device"
)

// FileRepository stores one device as a YAML document on disk.
type FileRepository struct {
	path string
}

// NewFileRepository creates a file-backed store at the given path. The
// file is created on first Save.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Save writes the device atomically: the document lands in a temporary
// file first and is renamed over the target, so a crash mid-write never
// leaves a truncated store behind.
func (r *FileRepository) Save(_ context.Context, d *device.Device) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding device: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing device store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing device store: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing device store: %w", err)
	}
	return nil
}

// Load reads the stored device. The id parameter is checked against the
// stored identity when non-empty.
func (r *FileRepository) Load(_ context.Context, id string) (*device.Device, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoStoredDevice
		}
		return nil, fmt.Errorf("reading device store: %w", err)
	}

	var d device.Device
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decoding device store: %w", err)
	}
	if d.ID == "" {
		return nil, ErrNoStoredDevice
	}
	if id != "" && d.ID != id {
		return nil, ErrNoStoredDevice
	}
	return &d, nil
}

// Package filestore persists collections as JSON files for a standalone terminal.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/anhhuy/fueltrack/internal/errs"
)

// FileStore writes one <collection>.json per collection under a data directory.
type FileStore struct {
	dir string
}

// New creates the data directory if needed.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// Get reads a collection file; a missing file maps to errs.ErrNotFound.
func (s *FileStore) Get(_ context.Context, collection string) ([]byte, error) {
	b, err := os.ReadFile(s.path(collection))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Set writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write never leaves a truncated collection.
func (s *FileStore) Set(_ context.Context, collection string, value []byte) error {
	tmp, err := os.CreateTemp(s.dir, collection+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path(collection)); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

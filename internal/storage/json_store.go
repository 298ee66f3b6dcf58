package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/julianstephens/smallwins/internal/models"
	"github.com/julianstephens/smallwins/internal/transfer"
)

// JSONStore keeps the collection in a single file using the export
// document format.
type JSONStore struct {
	path   string
	loaded bool
}

func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Init creates an empty store file if none exists. An existing file is
// checked to be readable and left untouched.
func (s *JSONStore) Init(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		return s.Load(ctx)
	}
	if err := s.write(models.Collection{}); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func (s *JSONStore) Load(ctx context.Context) error {
	if _, err := s.read(); err != nil {
		return err
	}
	s.loaded = true
	return nil
}

func (s *JSONStore) read() (models.Collection, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read storage: %w", err)
	}
	c, err := transfer.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse storage %s: %w", s.path, err)
	}
	return c, nil
}

func (s *JSONStore) LoadHabits(ctx context.Context) (models.Collection, error) {
	if !s.loaded {
		return nil, ErrNotInitialized
	}
	return s.read()
}

func (s *JSONStore) SaveHabits(ctx context.Context, c models.Collection) error {
	if !s.loaded {
		return ErrNotInitialized
	}
	return s.write(c)
}

// write replaces the file atomically so a crash never leaves a truncated
// store behind.
func (s *JSONStore) write(c models.Collection) error {
	data, err := transfer.Marshal(c)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set storage permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace storage: %w", err)
	}
	return nil
}

func (s *JSONStore) Close() error {
	s.loaded = false
	return nil
}

// GetConfigPath returns the path of the store file.
//
// Running multiple smallwins processes against the same file at the same
// time is not supported and may lose updates.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}

package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/valter-silva-au/commtrack/pkg/models"
	"gopkg.in/yaml.v3"
)

type yamlStore struct {
	path string
}

// NewYAMLStore creates a SnapshotStore backed by a single YAML file.
func NewYAMLStore(path string) SnapshotStore {
	return &yamlStore{path: path}
}

func (s *yamlStore) Load() (*models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return emptySnapshot(), nil
		}
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("loading snapshot: parsing YAML: %w", err)
	}
	if err := checkVersion(&snap); err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	fillEmpty(&snap)
	return &snap, nil
}

// Save replaces the snapshot under the snapshot lock.
func (s *yamlStore) Save(snap *models.Snapshot) error {
	return s.locked(func() error { return s.write(snap) })
}

// Update reads, transforms and rewrites the snapshot while holding the
// snapshot lock, so changes made by another process in between are never
// overwritten.
func (s *yamlStore) Update(fn func(latest *models.Snapshot) (*models.Snapshot, error)) error {
	return s.locked(func() error {
		latest, err := s.Load()
		if err != nil {
			return err
		}
		next, err := fn(latest)
		if err != nil || next == nil {
			return err
		}
		return s.write(next)
	})
}

func (s *yamlStore) locked(fn func() error) (err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("saving snapshot: creating directory: %w", err)
	}
	lock, err := lockSnapshot(s.path)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	defer func() {
		if rerr := lock.release(); rerr != nil && err == nil {
			err = fmt.Errorf("saving snapshot: %w", rerr)
		}
	}()
	return fn()
}

// write replaces the file through a temporary sibling and a rename.
func (s *yamlStore) write(snap *models.Snapshot) error {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("saving snapshot: marshaling YAML: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving snapshot: writing file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("saving snapshot: replacing file: %w", err)
	}
	return nil
}

func (s *yamlStore) Close() error { return nil }

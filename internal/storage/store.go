// Package storage persists commtrack snapshots. Every backend reads and
// writes whole models.Snapshot values; live state stays in core.
package storage

import (
	"fmt"
	"path/filepath"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

const (
	// YAMLFileName is the snapshot file used by the yaml backend.
	YAMLFileName = "commtrack.yaml"
	// SQLiteFileName is the database file used by the sqlite backend.
	SQLiteFileName = "commtrack.db"
)

// SnapshotStore loads and saves the tracking state. Load returns an empty
// snapshot when nothing has been saved yet.
//
// Update is the read-modify-write path: fn receives the snapshot as stored
// right now and returns the one to save, with no other writer able to slip
// in between. Returning a nil snapshot saves nothing. An error from fn is
// returned unchanged. The redis backend may call fn more than once when a
// concurrent writer wins the race.
type SnapshotStore interface {
	Load() (*models.Snapshot, error)
	Save(snap *models.Snapshot) error
	Update(fn func(latest *models.Snapshot) (*models.Snapshot, error)) error
	Close() error
}

// Open returns the backend selected by cfg.Backend, rooted at basePath for
// the file-based backends.
func Open(basePath string, cfg models.StorageConfig) (SnapshotStore, error) {
	switch cfg.Backend {
	case "", models.BackendYAML:
		return NewYAMLStore(filepath.Join(basePath, YAMLFileName)), nil
	case models.BackendSQLite:
		return OpenSQLiteStore(filepath.Join(basePath, SQLiteFileName))
	case models.BackendRedis:
		return NewRedisStore(cfg.Redis)
	default:
		return nil, fmt.Errorf("opening storage: unknown backend %q", cfg.Backend)
	}
}

// emptySnapshot is what Load returns before the first Save.
func emptySnapshot() *models.Snapshot {
	snap := models.NewSnapshot()
	snap.Methods = nil
	return snap
}

func checkVersion(snap *models.Snapshot) error {
	if snap.Version == "" {
		snap.Version = models.SnapshotVersion
	}
	if snap.Version != models.SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %q", snap.Version)
	}
	return nil
}

func fillEmpty(snap *models.Snapshot) {
	if snap.Companies == nil {
		snap.Companies = []models.Company{}
	}
	if snap.History == nil {
		snap.History = make(map[string][]models.LoggedCommunication)
	}
	if snap.Scheduled == nil {
		snap.Scheduled = []models.ScheduledCommunication{}
	}
}

package storage

import (
	"errors"
	"fmt"
	"sync"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// State is the live in-memory state a Sync keeps in step with a store.
// *core.Engine satisfies it.
type State interface {
	Snapshot() *models.Snapshot
	Restore(snap *models.Snapshot) error
}

// Sync applies mutations to the latest stored state instead of whatever the
// process loaded at startup, so two processes sharing a store never drop each
// other's changes.
type Sync struct {
	mu    sync.Mutex
	store SnapshotStore
	state State
}

// NewSync binds state to store.
func NewSync(store SnapshotStore, state State) *Sync {
	return &Sync{store: store, state: state}
}

// Refresh replaces the state with what the store holds now.
func (s *Sync) Refresh() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.store.Load()
	if err != nil {
		return err
	}
	return s.state.Restore(snap)
}

// Commit restores the latest stored snapshot, runs mutate against it and
// saves the result, all under the store's write lock. If mutate or the save
// fails the state is put back to the stored snapshot, so nothing that was
// not saved stays visible and a retry starts clean. Errors from mutate are
// returned unchanged; a failed save after a successful mutate is reported
// as such.
func (s *Sync) Commit(mutate func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		stored  *models.Snapshot
		applied bool
	)
	err := s.store.Update(func(latest *models.Snapshot) (*models.Snapshot, error) {
		applied = false
		if err := s.state.Restore(latest); err != nil {
			return nil, fmt.Errorf("restoring stored state: %w", err)
		}
		stored = latest
		if err := mutate(); err != nil {
			return nil, err
		}
		applied = true
		return s.state.Snapshot(), nil
	})
	if err == nil {
		return nil
	}
	if applied {
		err = fmt.Errorf("saving state: %w (the change was discarded)", err)
	}
	if stored == nil {
		return err
	}
	if rerr := s.state.Restore(stored); rerr != nil {
		return errors.Join(err, fmt.Errorf("rolling back: %w", rerr))
	}
	return err
}

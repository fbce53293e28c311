package storage

import (
	"fmt"
	"os"
	"syscall"
)

// snapshotLock is an exclusive flock(2) on the sibling <snapshot>.lock file.
// It is held for a whole load, mutate and save cycle so two commtrack
// processes sharing a yaml snapshot apply their changes one after the other.
type snapshotLock struct {
	f *os.File
}

func lockSnapshot(snapshotPath string) (*snapshotLock, error) {
	path := snapshotPath + ".lock"
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &snapshotLock{f: f}, nil
}

// release drops the lock. The lock file itself stays on disk; removing it
// would let a waiter and a newcomer lock different inodes.
func (l *snapshotLock) release() error {
	uerr := syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	cerr := l.f.Close()
	if uerr != nil {
		return fmt.Errorf("unlocking %s: %w", l.f.Name(), uerr)
	}
	return cerr
}

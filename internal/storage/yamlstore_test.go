package storage

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

func TestYAMLStore_RejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), YAMLFileName)
	if err := os.WriteFile(path, []byte("version: \"2.0\"\ncompanies: []\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewYAMLStore(path).Load(); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestYAMLStore_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), YAMLFileName)
	if err := os.WriteFile(path, []byte("companies: [oops\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := NewYAMLStore(path).Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestYAMLStore_SaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store := NewYAMLStore(filepath.Join(dir, YAMLFileName))
	if err := store.Save(sampleSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != YAMLFileName && e.Name() != YAMLFileName+".lock" {
			t.Errorf("unexpected file %s left behind", e.Name())
		}
	}
}

func TestYAMLStore_ConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), YAMLFileName)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- NewYAMLStore(path).Save(sampleSnapshot())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	snap, err := NewYAMLStore(path).Load()
	if err != nil {
		t.Fatalf("Load after concurrent saves: %v", err)
	}
	if len(snap.Companies) != len(sampleSnapshot().Companies) {
		t.Errorf("companies = %d, want %d", len(snap.Companies), len(sampleSnapshot().Companies))
	}
}

func TestSnapshotLock_Reacquire(t *testing.T) {
	path := filepath.Join(t.TempDir(), YAMLFileName)

	lock, err := lockSnapshot(path)
	if err != nil {
		t.Fatalf("lockSnapshot: %v", err)
	}
	if err := lock.release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	lock, err = lockSnapshot(path)
	if err != nil {
		t.Fatalf("lockSnapshot after release: %v", err)
	}
	if err := lock.release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Errorf("lock file should stay on disk: %v", err)
	}
}

func TestYAMLStore_SaveOverwritesMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), YAMLFileName)
	if err := os.WriteFile(path, []byte("companies: [oops\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := NewYAMLStore(path)

	if err := store.Update(func(*models.Snapshot) (*models.Snapshot, error) { return sampleSnapshot(), nil }); err == nil {
		t.Error("Update should refuse to build on a malformed snapshot")
	}
	if err := store.Save(sampleSnapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := store.Load(); err != nil {
		t.Errorf("Load after Save: %v", err)
	}
}

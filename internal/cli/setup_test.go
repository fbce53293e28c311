package cli

import (
	"bytes"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/storage"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

// cliNow is the fixed clock reading every CLI test runs at.
var cliNow = time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC)

type sequenceIDs struct{ n int }

func (s *sequenceIDs) NewID() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

// setupCLI wires a fresh engine and a YAML store in a temp dir, restoring
// the package-level services when the test ends.
func setupCLI(t *testing.T) string {
	t.Helper()

	origEngine, origStore := Engine, Store
	origAlerts, origMetrics, origNotifier, origEvents := AlertEngine, MetricsCalc, Notifier, EventLog
	origInit := WorkspaceInit
	t.Cleanup(func() {
		Engine, Store = origEngine, origStore
		AlertEngine, MetricsCalc, Notifier, EventLog = origAlerts, origMetrics, origNotifier, origEvents
		WorkspaceInit = origInit
		resetFlags(rootCmd)
	})

	dir := t.TempDir()
	Engine = core.NewEngine(core.EngineOptions{
		IDs:      &sequenceIDs{},
		Clock:    func() time.Time { return cliNow },
		Location: time.UTC,
	})
	Store = storage.NewYAMLStore(filepath.Join(dir, storage.YAMLFileName))
	AlertEngine, MetricsCalc, Notifier, EventLog = nil, nil, nil, nil
	return dir
}

// runCLI executes the root command with args and returns combined output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags returns every flag in the tree to its default so package-level
// flag variables do not leak between test runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// saveEngine writes the engine state to the store, the way an earlier
// command would have left it on disk.
func saveEngine(t *testing.T) {
	t.Helper()
	if err := Store.Save(Engine.Snapshot()); err != nil {
		t.Fatalf("saving test state: %v", err)
	}
}

func mustAddCompany(t *testing.T, name string) models.Company {
	t.Helper()
	c, err := Engine.Registry.Add(models.Company{Name: name, Location: "Berlin"})
	if err != nil {
		t.Fatalf("adding company %s: %v", name, err)
	}
	saveEngine(t)
	return c
}

func mustSchedule(t *testing.T, companyID string, typ models.CommunicationType, when time.Time) models.ScheduledCommunication {
	t.Helper()
	item, err := Engine.Ledger.Schedule(companyID, core.ScheduleDraft{Type: typ, ScheduledDate: when})
	if err != nil {
		t.Fatalf("scheduling: %v", err)
	}
	saveEngine(t)
	return item
}

func mustLog(t *testing.T, companyID string, typ models.CommunicationType, outcome string) models.LoggedCommunication {
	t.Helper()
	entry, err := Engine.Ledger.Log(companyID, core.LogDraft{Type: typ, Outcome: outcome})
	if err != nil {
		t.Fatalf("logging: %v", err)
	}
	saveEngine(t)
	return entry
}

// loadSaved reads back what the command persisted.
func loadSaved(t *testing.T) *models.Snapshot {
	t.Helper()
	snap, err := Store.Load()
	if err != nil {
		t.Fatalf("loading saved state: %v", err)
	}
	return snap
}

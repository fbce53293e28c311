package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/commtrack/internal/cli"
	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/observability"
	"github.com/valter-silva-au/commtrack/internal/storage"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

// newTestApp builds an App in a fresh directory and restores the CLI
// package variables afterwards.
func newTestApp(t *testing.T, config string) *App {
	t.Helper()
	dir := t.TempDir()
	if config != "" {
		if err := os.WriteFile(filepath.Join(dir, core.ConfigFileName), []byte(config), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return newTestAppIn(t, dir)
}

func newTestAppIn(t *testing.T, dir string) *App {
	t.Helper()
	origEngine, origStore, origInit := cli.Engine, cli.Store, cli.WorkspaceInit
	origLog, origAlerts, origMetrics, origNotifier := cli.EventLog, cli.AlertEngine, cli.MetricsCalc, cli.Notifier
	t.Cleanup(func() {
		cli.Engine, cli.Store, cli.WorkspaceInit = origEngine, origStore, origInit
		cli.EventLog, cli.AlertEngine, cli.MetricsCalc, cli.Notifier = origLog, origAlerts, origMetrics, origNotifier
	})

	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestResolveBasePath_HomeSet(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("COMMTRACK_HOME", tmpDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FindsConfig(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "sub", "nested")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmpDir, core.ConfigFileName), []byte("time:\n  zone: UTC\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COMMTRACK_HOME", "")
	t.Chdir(subDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FallbackToCwd(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("COMMTRACK_HOME", "")
	t.Chdir(tmpDir)

	got := ResolveBasePath()
	cwd, _ := os.Getwd()
	if got != cwd {
		t.Errorf("ResolveBasePath() = %q, want cwd %q", got, cwd)
	}
}

func TestNewApp_Defaults(t *testing.T) {
	app := newTestApp(t, "")

	if app.Engine == nil || app.Store == nil {
		t.Fatal("expected engine and store to be wired")
	}
	if app.Config.Storage.Backend != models.BackendYAML {
		t.Errorf("backend = %q, want yaml", app.Config.Storage.Backend)
	}
	if got := len(app.Engine.Methods.List()); got != 5 {
		t.Errorf("methods = %d, want the 5 defaults", got)
	}
	if app.EventLog == nil || app.MetricsCalc == nil || app.AlertEngine == nil {
		t.Error("expected observability to be wired")
	}
	if app.Notifier != nil {
		t.Error("expected no notifier without a webhook")
	}

	if cli.Engine != app.Engine || cli.Store != app.Store {
		t.Error("cli state variables not wired")
	}
	if cli.WorkspaceInit == nil || cli.AlertEngine == nil || cli.MetricsCalc == nil || cli.EventLog == nil {
		t.Error("cli service variables not wired")
	}
}

func TestNewApp_RestoresSavedState(t *testing.T) {
	dir := t.TempDir()
	snap := models.NewSnapshot()
	snap.Companies = []models.Company{{ID: "c1", Name: "Acme", Location: "Berlin", CommunicationPeriodicity: 14}}
	if err := storage.NewYAMLStore(filepath.Join(dir, storage.YAMLFileName)).Save(snap); err != nil {
		t.Fatalf("Save: %v", err)
	}

	app := newTestAppIn(t, dir)

	got, ok := app.Engine.Registry.Lookup("c1")
	if !ok || got.Name != "Acme" {
		t.Errorf("Lookup(c1) = %+v, %v", got, ok)
	}
}

func TestNewApp_SQLiteBackend(t *testing.T) {
	app := newTestApp(t, "storage:\n  backend: sqlite\n")

	if _, err := os.Stat(filepath.Join(app.BasePath, storage.SQLiteFileName)); err != nil {
		t.Errorf("expected sqlite database: %v", err)
	}
	if _, err := app.Engine.Registry.Add(models.Company{Name: "Acme", Location: "Berlin"}); err != nil {
		t.Fatal(err)
	}
	if err := app.Store.Save(app.Engine.Snapshot()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := app.Store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Companies) != 1 {
		t.Errorf("companies = %d, want 1", len(loaded.Companies))
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, core.ConfigFileName), []byte("storage:\n  backend: mongo\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := NewApp(dir)
	if err == nil {
		t.Fatal("expected error for invalid backend")
	}
	if !strings.Contains(err.Error(), "storage.backend") {
		t.Errorf("error = %v, want it to name storage.backend", err)
	}
}

func TestNewApp_MalformedConfigFallsBackLoudly(t *testing.T) {
	app := newTestApp(t, "storage: [oops\ntime:\n  zone: Europe/Berlin\n")

	if app.Config.TimeZone != core.DefaultGlobalConfig().TimeZone {
		t.Errorf("time zone = %q, want the default instead of the malformed file's", app.Config.TimeZone)
	}
	if len(app.Warnings) != 1 || !strings.Contains(app.Warnings[0], "ignoring "+core.ConfigFileName) {
		t.Fatalf("Warnings = %q, want the ignored config file", app.Warnings)
	}

	events, err := app.EventLog.Read(observability.EventFilter{Level: observability.LevelWarn})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 1 || events[0].Type != observability.EventConfigFallback || events[0].Data["error"] == nil {
		t.Errorf("warn events = %+v, want one config.fallback", events)
	}
}

func TestNewApp_ValidConfigHasNoWarnings(t *testing.T) {
	app := newTestApp(t, "alerts:\n  overdue_days: 3\n")

	if len(app.Warnings) != 0 {
		t.Errorf("Warnings = %q, want none", app.Warnings)
	}
	events, err := app.EventLog.Read(observability.EventFilter{Level: observability.LevelWarn})
	if err != nil || len(events) != 0 {
		t.Errorf("warn events = %+v, %v, want none", events, err)
	}
}

func TestNewApp_SlackNotifier(t *testing.T) {
	app := newTestApp(t, "notifications:\n  enabled: true\n  slack:\n    webhook_url: https://hooks.example.com/T000\n")

	if app.Notifier == nil || cli.Notifier == nil {
		t.Error("expected a Slack notifier when notifications are enabled")
	}
}

func TestNewApp_RecordsEvents(t *testing.T) {
	app := newTestApp(t, "")

	if _, err := app.Engine.Registry.Add(models.Company{Name: "Acme", Location: "Berlin"}); err != nil {
		t.Fatal(err)
	}

	events, err := app.EventLog.Read(observability.EventFilter{Type: observability.EventCompanyAdded})
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(events) != 1 || events[0].Level != observability.LevelInfo {
		t.Errorf("events = %+v, want one INFO company.added", events)
	}
}

func TestApp_CloseWithoutServices(t *testing.T) {
	app := &App{}
	if err := app.Close(); err != nil {
		t.Errorf("Close on empty App: %v", err)
	}
}

func TestAlertSourceAdapter(t *testing.T) {
	now := time.Date(2024, 12, 20, 12, 0, 0, 0, time.UTC)
	engine := core.NewEngine(core.EngineOptions{Location: time.UTC, Clock: func() time.Time { return now }})
	acme, err := engine.Registry.Add(models.Company{Name: "Acme", Location: "Berlin"})
	if err != nil {
		t.Fatal(err)
	}
	globex, err := engine.Registry.Add(models.Company{Name: "Globex", Location: "Paris"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Ledger.Schedule(acme.ID, core.ScheduleDraft{Type: models.TypeEmail, ScheduledDate: now.AddDate(0, 0, -3)}); err != nil {
		t.Fatal(err)
	}
	if _, err := engine.Ledger.Schedule(acme.ID, core.ScheduleDraft{Type: models.TypeMeeting, ScheduledDate: now}); err != nil {
		t.Fatal(err)
	}

	src := &alertSourceAdapter{engine: engine}

	pending := src.Pending(now)
	if len(pending) != 2 {
		t.Fatalf("pending = %+v, want 2", pending)
	}
	if pending[0].DaysOverdue != 3 || pending[0].CompanyName != "Acme" || pending[0].Type != "Email" {
		t.Errorf("overdue item = %+v", pending[0])
	}
	if pending[1].DaysOverdue != 0 {
		t.Errorf("due today item = %+v, want 0 days overdue", pending[1])
	}

	gaps := src.ContactGaps(now)
	if len(gaps) != 1 || gaps[0].CompanyID != globex.ID || !gaps[0].NeverContacted {
		t.Errorf("gaps = %+v, want Globex never contacted", gaps)
	}

	alerts := observability.NewAlertEngine(src, observability.DefaultAlertThresholds()).Evaluate(now)
	if len(alerts) != 3 {
		t.Errorf("alerts = %d, want 3", len(alerts))
	}
}

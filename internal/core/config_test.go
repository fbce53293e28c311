package core

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoadGlobalConfig_Defaults_WhenNoFile(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())

	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TimeZone != "Local" {
		t.Errorf("TimeZone = %q, want Local", cfg.TimeZone)
	}
	if cfg.Storage.Backend != models.BackendYAML {
		t.Errorf("Storage.Backend = %q, want yaml", cfg.Storage.Backend)
	}
	if cfg.DefaultPeriodicityDays != 14 {
		t.Errorf("DefaultPeriodicityDays = %d, want 14", cfg.DefaultPeriodicityDays)
	}
	if cfg.Alerts.OverdueDays != 7 {
		t.Errorf("Alerts.OverdueDays = %d, want 7", cfg.Alerts.OverdueDays)
	}
	if cfg.Notifications.Enabled {
		t.Errorf("Notifications.Enabled = true, want false")
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadGlobalConfig_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, `
time:
  zone: UTC
defaults:
  periodicity_days: 30
storage:
  backend: Redis
  redis:
    addr: "redis.internal:6380"
    db: 2
    namespace: sales
alerts:
  overdue_days: 3
notifications:
  enabled: true
  slack:
    webhook_url: "https://hooks.slack.test/abc"
`)

	cm := NewConfigurationManager(dir)
	cfg, err := cm.LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TimeZone != "UTC" {
		t.Errorf("TimeZone = %q, want UTC", cfg.TimeZone)
	}
	if cfg.DefaultPeriodicityDays != 30 {
		t.Errorf("DefaultPeriodicityDays = %d, want 30", cfg.DefaultPeriodicityDays)
	}
	if cfg.Storage.Backend != models.BackendRedis {
		t.Errorf("Storage.Backend = %q, want redis", cfg.Storage.Backend)
	}
	if cfg.Storage.Redis.Addr != "redis.internal:6380" || cfg.Storage.Redis.DB != 2 || cfg.Storage.Redis.Namespace != "sales" {
		t.Errorf("Storage.Redis = %+v", cfg.Storage.Redis)
	}
	if cfg.Alerts.OverdueDays != 3 {
		t.Errorf("Alerts.OverdueDays = %d, want 3", cfg.Alerts.OverdueDays)
	}
	if !cfg.Notifications.Enabled || cfg.Notifications.Slack.WebhookURL != "https://hooks.slack.test/abc" {
		t.Errorf("Notifications = %+v", cfg.Notifications)
	}
	if err := cm.ValidateConfig(cfg); err != nil {
		t.Errorf("config should validate: %v", err)
	}
}

func TestLoadGlobalConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "storage:\n  backend: yaml\n")
	t.Setenv("COMMTRACK_STORAGE_BACKEND", "sqlite")

	cfg, err := NewConfigurationManager(dir).LoadGlobalConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != models.BackendSQLite {
		t.Errorf("Storage.Backend = %q, want sqlite from env", cfg.Storage.Backend)
	}
}

func TestLoadGlobalConfig_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ConfigFileName, "storage: [unclosed\n")

	if _, err := NewConfigurationManager(dir).LoadGlobalConfig(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestValidateConfig_ReportsEveryField(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultGlobalConfig()
	cfg.TimeZone = "Mars/Olympus_Mons"
	cfg.DefaultPeriodicityDays = 0
	cfg.Storage.Backend = "postgres"
	cfg.Alerts.OverdueDays = -1
	cfg.Notifications.Enabled = true

	err := cm.ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, key := range []string{"time.zone", "defaults.periodicity_days", "storage.backend", "alerts.overdue_days", "notifications.slack.webhook_url"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}

	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestValidateConfig_RedisNeedsAddr(t *testing.T) {
	cfg := DefaultGlobalConfig()
	cfg.Storage.Backend = models.BackendRedis
	cfg.Storage.Redis.Addr = ""

	err := NewConfigurationManager("").ValidateConfig(cfg)
	if err == nil || !strings.Contains(err.Error(), "storage.redis.addr") {
		t.Errorf("error = %v, want storage.redis.addr complaint", err)
	}
}

func TestLoadLocation(t *testing.T) {
	if loc, err := LoadLocation(""); err != nil || loc != time.Local {
		t.Errorf("LoadLocation(\"\") = %v, %v", loc, err)
	}
	if loc, err := LoadLocation("UTC"); err != nil || loc != time.UTC {
		t.Errorf("LoadLocation(UTC) = %v, %v", loc, err)
	}
	if _, err := LoadLocation("Nowhere/Special"); err == nil {
		t.Error("expected error for unknown zone")
	}
}

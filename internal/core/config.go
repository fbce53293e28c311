// Package core contains the business logic for commtrack: the company
// registry, the communication ledger, status classification, notification
// aggregation, analytics, and configuration loading.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

// ConfigFileName is the configuration file looked up in the base directory.
const ConfigFileName = ".commtrack.yaml"

// ConfigurationManager loads and validates .commtrack.yaml.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .commtrack.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns the configuration used when no file exists.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		TimeZone:               "Local",
		DefaultPeriodicityDays: models.DefaultCommunicationPeriodicity,
		Storage: models.StorageConfig{
			Backend: models.BackendYAML,
			Redis: models.RedisConfig{
				Addr:      "localhost:6379",
				Namespace: "default",
			},
		},
		Alerts: models.AlertsConfig{OverdueDays: 7},
	}
}

// LoadGlobalConfig reads .commtrack.yaml using Viper. Missing keys and a
// missing file fall back to DefaultGlobalConfig. COMMTRACK_* environment
// variables override file values (COMMTRACK_STORAGE_BACKEND and so on).
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(strings.TrimSuffix(ConfigFileName, ".yaml"))
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("COMMTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("time.zone", cfg.TimeZone)
	v.SetDefault("defaults.periodicity_days", cfg.DefaultPeriodicityDays)
	v.SetDefault("storage.backend", string(cfg.Storage.Backend))
	v.SetDefault("storage.redis.addr", cfg.Storage.Redis.Addr)
	v.SetDefault("storage.redis.password", "")
	v.SetDefault("storage.redis.db", 0)
	v.SetDefault("storage.redis.namespace", cfg.Storage.Redis.Namespace)
	v.SetDefault("alerts.overdue_days", cfg.Alerts.OverdueDays)
	v.SetDefault("notifications.enabled", false)
	v.SetDefault("notifications.slack.webhook_url", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s: %w", ConfigFileName, err)
		}
	}

	cfg.TimeZone = v.GetString("time.zone")
	cfg.DefaultPeriodicityDays = v.GetInt("defaults.periodicity_days")
	cfg.Storage.Backend = models.StorageBackend(strings.ToLower(v.GetString("storage.backend")))
	cfg.Storage.Redis.Addr = v.GetString("storage.redis.addr")
	cfg.Storage.Redis.Password = v.GetString("storage.redis.password")
	cfg.Storage.Redis.DB = v.GetInt("storage.redis.db")
	cfg.Storage.Redis.Namespace = v.GetString("storage.redis.namespace")
	cfg.Alerts.OverdueDays = v.GetInt("alerts.overdue_days")
	cfg.Notifications.Enabled = v.GetBool("notifications.enabled")
	cfg.Notifications.Slack.WebhookURL = v.GetString("notifications.slack.webhook_url")

	return cfg, nil
}

var validBackends = map[models.StorageBackend]bool{
	models.BackendYAML:   true,
	models.BackendSQLite: true,
	models.BackendRedis:  true,
}

// ValidateConfig reports every invalid field at once, naming each by its
// configuration key.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if _, err := LoadLocation(cfg.TimeZone); err != nil {
		errs = append(errs, fmt.Sprintf("time.zone %q is not a known location", cfg.TimeZone))
	}
	if cfg.DefaultPeriodicityDays < 1 {
		errs = append(errs, fmt.Sprintf("defaults.periodicity_days must be at least 1, got %d", cfg.DefaultPeriodicityDays))
	}
	if !validBackends[cfg.Storage.Backend] {
		errs = append(errs, fmt.Sprintf(
			"storage.backend %q is invalid, must be one of: yaml, sqlite, redis",
			cfg.Storage.Backend,
		))
	}
	if cfg.Storage.Backend == models.BackendRedis {
		if cfg.Storage.Redis.Addr == "" {
			errs = append(errs, "storage.redis.addr must not be empty")
		}
		if cfg.Storage.Redis.Namespace == "" {
			errs = append(errs, "storage.redis.namespace must not be empty")
		}
	}
	if cfg.Alerts.OverdueDays < 0 {
		errs = append(errs, fmt.Sprintf("alerts.overdue_days must be non-negative, got %d", cfg.Alerts.OverdueDays))
	}
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL == "" {
		errs = append(errs, "notifications.slack.webhook_url must be set when notifications are enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// LoadLocation resolves a time.zone setting. Empty and "Local" select the
// host zone.
func LoadLocation(name string) (*time.Location, error) {
	switch name {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading time zone %q: %w", name, err)
	}
	return loc, nil
}

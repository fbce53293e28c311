package models

// StorageBackend names a snapshot persistence backend.
type StorageBackend string

const (
	BackendYAML   StorageBackend = "yaml"
	BackendSQLite StorageBackend = "sqlite"
	BackendRedis  StorageBackend = "redis"
)

// RedisConfig holds connection settings for the redis storage backend.
type RedisConfig struct {
	Addr      string `yaml:"addr" mapstructure:"addr"`
	Password  string `yaml:"password,omitempty" mapstructure:"password"`
	DB        int    `yaml:"db" mapstructure:"db"`
	Namespace string `yaml:"namespace" mapstructure:"namespace"`
}

// StorageConfig selects and configures the snapshot backend.
type StorageConfig struct {
	Backend StorageBackend `yaml:"backend" mapstructure:"backend"`
	Redis   RedisConfig    `yaml:"redis" mapstructure:"redis"`
}

// SlackConfig holds Slack webhook settings for alert notifications.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotificationsConfig controls delivery of overdue alerts.
type NotificationsConfig struct {
	Enabled bool        `yaml:"enabled" mapstructure:"enabled"`
	Slack   SlackConfig `yaml:"slack" mapstructure:"slack"`
}

// AlertsConfig tunes alert severity thresholds.
type AlertsConfig struct {
	OverdueDays int `yaml:"overdue_days" mapstructure:"overdue_days"`
}

// GlobalConfig holds settings read from .commtrack.yaml via Viper.
type GlobalConfig struct {
	// TimeZone is the IANA location used to compute calendar days.
	// "Local" uses the host zone.
	TimeZone               string              `yaml:"time_zone" mapstructure:"time_zone"`
	DefaultPeriodicityDays int                 `yaml:"default_periodicity_days" mapstructure:"default_periodicity_days"`
	Storage                StorageConfig       `yaml:"storage" mapstructure:"storage"`
	Alerts                 AlertsConfig        `yaml:"alerts" mapstructure:"alerts"`
	Notifications          NotificationsConfig `yaml:"notifications" mapstructure:"notifications"`
}

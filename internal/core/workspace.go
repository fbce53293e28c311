package core

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// InitConfig holds the parameters for initializing a commtrack workspace.
type InitConfig struct {
	BasePath        string
	TimeZone        string
	Backend         models.StorageBackend
	PeriodicityDays int
	OverdueDays     int
	SlackWebhookURL string
	RedisAddr       string
	RedisNamespace  string
}

// NotificationsEnabled reports whether the written configuration turns Slack
// notifications on, which it does whenever a webhook URL is given.
func (c InitConfig) NotificationsEnabled() bool {
	return c.SlackWebhookURL != ""
}

// InitResult holds a summary of what was created vs. skipped.
type InitResult struct {
	Created []string
	Skipped []string
}

// WorkspaceInitializer writes the configuration a commtrack workspace needs.
type WorkspaceInitializer interface {
	Init(config InitConfig) (*InitResult, error)
}

type workspaceInitializer struct{}

// NewWorkspaceInitializer creates a WorkspaceInitializer.
func NewWorkspaceInitializer() WorkspaceInitializer {
	return workspaceInitializer{}
}

var configTemplate = template.Must(template.New(ConfigFileName).Parse(`# commtrack configuration
time:
  zone: {{printf "%q" .TimeZone}}
defaults:
  periodicity_days: {{.PeriodicityDays}}
storage:
  backend: {{.Backend}}
  redis:
    addr: {{printf "%q" .RedisAddr}}
    namespace: {{printf "%q" .RedisNamespace}}
alerts:
  overdue_days: {{.OverdueDays}}
notifications:
  enabled: {{.NotificationsEnabled}}
  slack:
    webhook_url: {{printf "%q" .SlackWebhookURL}}
`))

const workspaceGitignore = `# commtrack state
commtrack.db
commtrack.db-wal
commtrack.db-shm
commtrack.yaml.lock
commtrack.yaml.tmp
commtrack-events.jsonl
`

// Init creates the base directory, .commtrack.yaml and a .gitignore for the
// local state files. Files that already exist are skipped and never
// overwritten. Zero fields in config take DefaultGlobalConfig values.
func (workspaceInitializer) Init(config InitConfig) (*InitResult, error) {
	config = withInitDefaults(config)
	if _, err := LoadLocation(config.TimeZone); err != nil {
		return nil, fmt.Errorf("initializing workspace: %w", err)
	}
	if !validBackends[config.Backend] {
		return nil, fmt.Errorf("initializing workspace: %w", &ValidationError{
			Field:  "storage.backend",
			Reason: fmt.Sprintf("%q is not one of yaml, sqlite, redis", config.Backend),
		})
	}

	result := &InitResult{}

	created, err := ensureDir(config.BasePath)
	if err != nil {
		return nil, fmt.Errorf("initializing workspace: creating directory %s: %w", config.BasePath, err)
	}
	if created {
		result.Created = append(result.Created, config.BasePath)
	} else {
		result.Skipped = append(result.Skipped, config.BasePath)
	}

	configPath := filepath.Join(config.BasePath, ConfigFileName)
	if err := writeFileIfNotExists(configPath, func() ([]byte, error) {
		var buf bytes.Buffer
		if err := configTemplate.Execute(&buf, config); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", ConfigFileName, err)
		}
		return buf.Bytes(), nil
	}, result); err != nil {
		return nil, err
	}

	gitignorePath := filepath.Join(config.BasePath, ".gitignore")
	if err := writeFileIfNotExists(gitignorePath, func() ([]byte, error) {
		return []byte(workspaceGitignore), nil
	}, result); err != nil {
		return nil, err
	}

	return result, nil
}

func withInitDefaults(config InitConfig) InitConfig {
	defaults := DefaultGlobalConfig()
	if config.TimeZone == "" {
		config.TimeZone = defaults.TimeZone
	}
	if config.Backend == "" {
		config.Backend = defaults.Storage.Backend
	}
	if config.PeriodicityDays < 1 {
		config.PeriodicityDays = defaults.DefaultPeriodicityDays
	}
	if config.OverdueDays < 1 {
		config.OverdueDays = defaults.Alerts.OverdueDays
	}
	if config.RedisAddr == "" {
		config.RedisAddr = defaults.Storage.Redis.Addr
	}
	if config.RedisNamespace == "" {
		config.RedisNamespace = defaults.Storage.Redis.Namespace
	}
	return config
}

// ensureDir creates a directory if it does not exist. Returns true if created.
func ensureDir(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(path, 0o750); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileIfNotExists writes content from contentFn if the file does not
// exist, recording created or skipped in result.
func writeFileIfNotExists(path string, contentFn func() ([]byte, error), result *InitResult) error {
	if _, err := os.Stat(path); err == nil {
		result.Skipped = append(result.Skipped, path)
		return nil
	}
	content, err := contentFn()
	if err != nil {
		return fmt.Errorf("initializing workspace: generating content for %s: %w", path, err)
	}
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return fmt.Errorf("initializing workspace: writing %s: %w", path, err)
	}
	result.Created = append(result.Created, path)
	return nil
}

// Package internal provides the App struct that wires the commtrack
// components together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/commtrack/internal/cli"
	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/observability"
	"github.com/valter-silva-au/commtrack/internal/storage"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

// App holds all service dependencies for commtrack.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.GlobalConfig
	Location  *time.Location

	// State
	Engine *core.Engine
	Store  storage.SnapshotStore

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier

	// Warnings lists problems that were worked around during startup,
	// e.g. an unreadable config file.
	Warnings []string
}

// NewApp creates and wires every component. basePath is the directory that
// holds .commtrack.yaml and the file-based stores.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadGlobalConfig()
	var configErr error
	if err != nil {
		configErr = err
		cfg = core.DefaultGlobalConfig()
		app.Warnings = append(app.Warnings, fmt.Sprintf("ignoring %s, using defaults: %v", core.ConfigFileName, err))
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	app.Location, err = core.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, err
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, observability.EventLogFileName)
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: run without an audit trail.
		app.EventLog = nil
	}
	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
		if configErr != nil {
			_ = app.EventLog.Write(observability.Event{
				Level:   observability.LevelWarn,
				Type:    observability.EventConfigFallback,
				Message: app.Warnings[0],
				Data:    map[string]any{"file": core.ConfigFileName, "error": configErr.Error()},
			})
		}
	}

	// --- Engine and storage ---
	app.Engine = core.NewEngine(core.EngineOptions{
		Events:             events,
		Location:           app.Location,
		DefaultPeriodicity: cfg.DefaultPeriodicityDays,
	})

	app.Store, err = storage.Open(basePath, cfg.Storage)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err), app.Close())
	}
	snap, err := app.Store.Load()
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}
	if err := app.Engine.Restore(snap); err != nil {
		return nil, errors.Join(err, app.Close())
	}

	thresholds := observability.DefaultAlertThresholds()
	if cfg.Alerts.OverdueDays > 0 {
		thresholds.OverdueDays = cfg.Alerts.OverdueDays
	}
	app.AlertEngine = observability.NewAlertEngine(&alertSourceAdapter{engine: app.Engine}, thresholds)
	if cfg.Notifications.Enabled && cfg.Notifications.Slack.WebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Notifications.Slack.WebhookURL)
	}

	// --- Wire CLI package-level variables ---
	cli.Engine = app.Engine
	cli.Store = app.Store
	cli.WorkspaceInit = core.NewWorkspaceInitializer()

	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases the store and the event log file handle. It is safe to call
// on a partially initialized App.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.EventLog != nil {
		errs = append(errs, a.EventLog.Close())
	}
	return errors.Join(errs...)
}

// ResolveBasePath determines the commtrack data directory. It checks the
// COMMTRACK_HOME env var, then walks up from the working directory looking
// for .commtrack.yaml, and falls back to the working directory.
func ResolveBasePath() string {
	if home := os.Getenv("COMMTRACK_HOME"); home != "" {
		return home
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	return a.log.Write(observability.NewEvent(eventType, data))
}

// alertSourceAdapter feeds the alert engine from the engine's notification
// aggregator.
type alertSourceAdapter struct {
	engine *core.Engine
}

func (a *alertSourceAdapter) Pending(now time.Time) []observability.PendingCommunication {
	n := a.engine.Notifications.CollectNotifications(now)
	out := make([]observability.PendingCommunication, 0, n.Total)
	for _, group := range [][]core.Notification{n.Overdue, n.DueToday} {
		for _, item := range group {
			out = append(out, observability.PendingCommunication{
				ID:            item.ID,
				CompanyID:     item.CompanyID,
				CompanyName:   item.CompanyName,
				Type:          string(item.Type),
				ScheduledDate: item.ScheduledDate,
				DaysOverdue:   item.DaysOverdue,
			})
		}
	}
	return out
}

func (a *alertSourceAdapter) ContactGaps(now time.Time) []observability.ContactGap {
	gaps := a.engine.Notifications.CadenceGaps(now)
	out := make([]observability.ContactGap, 0, len(gaps))
	for _, g := range gaps {
		out = append(out, observability.ContactGap{
			CompanyID:       g.CompanyID,
			CompanyName:     g.CompanyName,
			PeriodicityDays: g.PeriodicityDays,
			DaysSince:       g.DaysSince,
			NeverContacted:  g.LastContact == nil,
		})
	}
	return out
}

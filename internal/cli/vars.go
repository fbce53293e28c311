package cli

import (
	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/observability"
	"github.com/valter-silva-au/commtrack/internal/storage"
)

// Service instances, set during app initialization in app.go.
var (
	Engine *core.Engine
	Store  storage.SnapshotStore
)

// Observability service instances, set during app initialization in app.go.
var (
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)

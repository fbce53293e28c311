package core

import (
	"fmt"
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// EngineOptions configures NewEngine. Zero values select production defaults.
type EngineOptions struct {
	IDs                IDGenerator
	Clock              Clock
	Events             EventLogger
	Location           *time.Location
	DefaultPeriodicity int
}

// Engine bundles the sources of truth with the derivations computed from
// them. It is created per process and passed explicitly to every surface.
type Engine struct {
	Registry      CompanyRegistry
	Ledger        CommunicationLedger
	Methods       MethodCatalogue
	Notifications NotificationAggregator
	Analytics     AnalyticsEngine
	Location      *time.Location

	clock              Clock
	defaultPeriodicity int
}

// NewEngine creates an empty engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.IDs == nil {
		opts.IDs = NewUUIDGenerator()
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.DefaultPeriodicity < 1 {
		opts.DefaultPeriodicity = models.DefaultCommunicationPeriodicity
	}

	registry := NewCompanyRegistry(opts.IDs, opts.Events, opts.DefaultPeriodicity)
	ledger := NewCommunicationLedger(opts.IDs, opts.Clock, opts.Events)
	return &Engine{
		Registry:           registry,
		Ledger:             ledger,
		Methods:            NewMethodCatalogue(opts.IDs, opts.Events),
		Notifications:      NewNotificationAggregator(registry, ledger, opts.Location),
		Analytics:          NewAnalyticsEngine(registry, ledger, opts.Location),
		Location:           opts.Location,
		clock:              opts.Clock,
		defaultPeriodicity: opts.DefaultPeriodicity,
	}
}

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time {
	return e.clock()
}

// Snapshot copies the whole state into its persisted form.
func (e *Engine) Snapshot() *models.Snapshot {
	state := e.Ledger.State()
	snap := models.NewSnapshot()
	snap.Companies = e.Registry.List()
	snap.History = state.History
	snap.Scheduled = state.Scheduled
	snap.Methods = e.Methods.List()
	return snap
}

// Restore replaces the whole state with snap. Every part is validated before
// any is applied, so a rejected snapshot leaves the engine unchanged. A
// snapshot without methods restores the default catalogue.
func (e *Engine) Restore(snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("restoring snapshot: %w", &ValidationError{Field: "snapshot", Reason: "must not be nil"})
	}
	if snap.Version != "" && snap.Version != models.SnapshotVersion {
		return fmt.Errorf("restoring snapshot: %w", &ValidationError{
			Field:  "version",
			Reason: fmt.Sprintf("unsupported snapshot version %q", snap.Version),
		})
	}

	state := LedgerState{History: snap.History, Scheduled: snap.Scheduled}
	if state.History == nil {
		state.History = map[string][]models.LoggedCommunication{}
	}
	methods := snap.Methods
	if len(methods) == 0 {
		methods = DefaultCommunicationMethods()
	}

	if _, err := normalizeCompanies(snap.Companies, e.defaultPeriodicity); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	if err := validateLedgerState(state); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	if _, err := normalizeMethods(methods); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}

	if err := e.Registry.Restore(snap.Companies); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	if err := e.Ledger.Restore(state); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	if err := e.Methods.Restore(methods); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	return nil
}

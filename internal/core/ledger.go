package core

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// LogDraft describes a completed communication to record. A zero Timestamp
// means "now" according to the ledger clock.
type LogDraft struct {
	Type      models.CommunicationType
	Timestamp time.Time
	Notes     string
	Outcome   string
}

// ScheduleDraft describes a communication to plan.
type ScheduleDraft struct {
	Type          models.CommunicationType
	ScheduledDate time.Time
	Notes         string
}

// Completion carries the final details of a scheduled communication being
// marked complete. Empty Type and Notes keep the scheduled values; a zero
// Timestamp means "now".
type Completion struct {
	Type      models.CommunicationType
	Timestamp time.Time
	Notes     string
	Outcome   string
}

// LedgerState is a point-in-time copy of the ledger contents.
type LedgerState struct {
	History   map[string][]models.LoggedCommunication
	Scheduled []models.ScheduledCommunication
}

// CommunicationLedger owns per-company communication history and the global
// set of pending scheduled communications.
type CommunicationLedger interface {
	// Log prepends a completed communication to the company's history.
	Log(companyID string, draft LogDraft) (models.LoggedCommunication, error)
	// LogMany logs the same draft for several companies, all or nothing.
	LogMany(companyIDs []string, draft LogDraft) ([]models.LoggedCommunication, error)
	// Schedule appends a pending communication for the company.
	Schedule(companyID string, draft ScheduleDraft) (models.ScheduledCommunication, error)
	// ScheduleMany schedules the same draft for several companies, all or nothing.
	ScheduleMany(companyIDs []string, draft ScheduleDraft) ([]models.ScheduledCommunication, error)
	// UpdateScheduled replaces the type, date and notes of a pending item.
	UpdateScheduled(item models.ScheduledCommunication) error
	// DeleteScheduled removes a pending item and reports whether it existed.
	DeleteScheduled(id string) bool
	// MarkComplete moves a pending item into its company's history.
	MarkComplete(scheduleID string, completion Completion) (models.LoggedCommunication, error)
	// HistoryFor returns the company's history, most recent first.
	HistoryFor(companyID string) []models.LoggedCommunication
	// ScheduledAll returns every pending item in insertion order.
	ScheduledAll() []models.ScheduledCommunication
	// State returns a consistent copy of history and scheduled items.
	State() LedgerState
	// Restore replaces the ledger contents.
	Restore(state LedgerState) error
}

type memLedger struct {
	mu        sync.RWMutex
	history   map[string][]models.LoggedCommunication
	scheduled []models.ScheduledCommunication
	ids       IDGenerator
	clock     Clock
	events    EventLogger
}

// NewCommunicationLedger creates an empty in-memory ledger. clock supplies
// default timestamps; events may be nil.
func NewCommunicationLedger(ids IDGenerator, clock Clock, events EventLogger) CommunicationLedger {
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	if clock == nil {
		clock = SystemClock
	}
	return &memLedger{
		history:   make(map[string][]models.LoggedCommunication),
		scheduled: []models.ScheduledCommunication{},
		ids:       ids,
		clock:     clock,
		events:    events,
	}
}

func (l *memLedger) Log(companyID string, draft LogDraft) (models.LoggedCommunication, error) {
	entries, err := l.LogMany([]string{companyID}, draft)
	if err != nil {
		return models.LoggedCommunication{}, err
	}
	return entries[0], nil
}

func (l *memLedger) LogMany(companyIDs []string, draft LogDraft) ([]models.LoggedCommunication, error) {
	if len(companyIDs) == 0 {
		return nil, fmt.Errorf("logging communication: %w", &ValidationError{Field: "company_id", Reason: "at least one company is required"})
	}
	if err := validateType(draft.Type); err != nil {
		return nil, fmt.Errorf("logging communication: %w", err)
	}

	l.mu.Lock()
	entries := make([]models.LoggedCommunication, 0, len(companyIDs))
	for _, companyID := range companyIDs {
		entry := l.newLogged(companyID, draft)
		l.prepend(entry)
		entries = append(entries, entry)
	}
	l.mu.Unlock()

	for _, e := range entries {
		logEvent(l.events, "communication.logged", map[string]any{
			"communication_id": e.ID,
			"company_id":       e.CompanyID,
			"type":             string(e.Type),
			"successful":       e.Successful(),
		})
	}
	return entries, nil
}

func (l *memLedger) Schedule(companyID string, draft ScheduleDraft) (models.ScheduledCommunication, error) {
	items, err := l.ScheduleMany([]string{companyID}, draft)
	if err != nil {
		return models.ScheduledCommunication{}, err
	}
	return items[0], nil
}

func (l *memLedger) ScheduleMany(companyIDs []string, draft ScheduleDraft) ([]models.ScheduledCommunication, error) {
	if len(companyIDs) == 0 {
		return nil, fmt.Errorf("scheduling communication: %w", &ValidationError{Field: "company_id", Reason: "at least one company is required"})
	}
	if err := validateScheduled(draft.Type, draft.ScheduledDate); err != nil {
		return nil, fmt.Errorf("scheduling communication: %w", err)
	}

	l.mu.Lock()
	items := make([]models.ScheduledCommunication, 0, len(companyIDs))
	for _, companyID := range companyIDs {
		item := models.ScheduledCommunication{
			ID:            l.ids.NewID(),
			CompanyID:     companyID,
			Type:          draft.Type,
			ScheduledDate: draft.ScheduledDate.UTC(),
			Notes:         draft.Notes,
		}
		l.scheduled = append(l.scheduled, item)
		items = append(items, item)
	}
	l.mu.Unlock()

	for _, item := range items {
		logEvent(l.events, "communication.scheduled", map[string]any{
			"communication_id": item.ID,
			"company_id":       item.CompanyID,
			"type":             string(item.Type),
			"scheduled_date":   item.ScheduledDate.Format(time.RFC3339),
		})
	}
	return items, nil
}

func (l *memLedger) UpdateScheduled(item models.ScheduledCommunication) error {
	if err := validateScheduled(item.Type, item.ScheduledDate); err != nil {
		return fmt.Errorf("updating scheduled communication %s: %w", item.ID, err)
	}

	l.mu.Lock()
	idx := l.scheduledIndex(item.ID)
	if idx >= 0 {
		current := &l.scheduled[idx]
		current.Type = item.Type
		current.ScheduledDate = item.ScheduledDate.UTC()
		current.Notes = item.Notes
		if item.CompanyID != "" {
			current.CompanyID = item.CompanyID
		}
	}
	l.mu.Unlock()

	if idx < 0 {
		return fmt.Errorf("updating scheduled communication: %w", &NotFoundError{Kind: "scheduled communication", ID: item.ID})
	}
	logEvent(l.events, "communication.rescheduled", map[string]any{
		"communication_id": item.ID,
		"scheduled_date":   item.ScheduledDate.UTC().Format(time.RFC3339),
	})
	return nil
}

func (l *memLedger) DeleteScheduled(id string) bool {
	l.mu.Lock()
	idx := l.scheduledIndex(id)
	if idx >= 0 {
		l.scheduled = slices.Delete(l.scheduled, idx, idx+1)
	}
	l.mu.Unlock()

	if idx < 0 {
		return false
	}
	logEvent(l.events, "communication.unscheduled", map[string]any{"communication_id": id})
	return true
}

func (l *memLedger) MarkComplete(scheduleID string, completion Completion) (models.LoggedCommunication, error) {
	entry, err := l.markComplete(scheduleID, completion)
	if err != nil {
		return models.LoggedCommunication{}, fmt.Errorf("completing scheduled communication: %w", err)
	}

	logEvent(l.events, "communication.completed", map[string]any{
		"schedule_id":      scheduleID,
		"communication_id": entry.ID,
		"company_id":       entry.CompanyID,
		"type":             string(entry.Type),
		"successful":       entry.Successful(),
	})
	return entry, nil
}

// markComplete validates the completion before touching state, then removes
// the scheduled item and prepends the history entry under one write lock.
func (l *memLedger) markComplete(scheduleID string, completion Completion) (models.LoggedCommunication, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	idx := l.scheduledIndex(scheduleID)
	if idx < 0 {
		return models.LoggedCommunication{}, &NotFoundError{Kind: "scheduled communication", ID: scheduleID}
	}
	item := l.scheduled[idx]

	draft := LogDraft{
		Type:      item.Type,
		Timestamp: completion.Timestamp,
		Notes:     item.Notes,
		Outcome:   completion.Outcome,
	}
	if completion.Type != "" {
		draft.Type = completion.Type
	}
	if completion.Notes != "" {
		draft.Notes = completion.Notes
	}
	if err := validateType(draft.Type); err != nil {
		return models.LoggedCommunication{}, err
	}

	entry := l.newLogged(item.CompanyID, draft)
	l.scheduled = slices.Delete(l.scheduled, idx, idx+1)
	l.prepend(entry)
	return entry, nil
}

func (l *memLedger) HistoryFor(companyID string) []models.LoggedCommunication {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return slices.Clone(l.history[companyID])
}

func (l *memLedger) ScheduledAll() []models.ScheduledCommunication {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.ScheduledCommunication, len(l.scheduled))
	copy(out, l.scheduled)
	return out
}

func (l *memLedger) State() LedgerState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	state := LedgerState{
		History:   make(map[string][]models.LoggedCommunication, len(l.history)),
		Scheduled: make([]models.ScheduledCommunication, len(l.scheduled)),
	}
	for companyID, entries := range l.history {
		state.History[companyID] = slices.Clone(entries)
	}
	copy(state.Scheduled, l.scheduled)
	return state
}

func (l *memLedger) Restore(state LedgerState) error {
	if err := validateLedgerState(state); err != nil {
		return fmt.Errorf("restoring ledger: %w", err)
	}

	history := make(map[string][]models.LoggedCommunication, len(state.History))
	for companyID, entries := range state.History {
		cloned := slices.Clone(entries)
		for i := range cloned {
			cloned[i].CompanyID = companyID
			cloned[i].Timestamp = cloned[i].Timestamp.UTC()
		}
		history[companyID] = cloned
	}
	scheduled := make([]models.ScheduledCommunication, len(state.Scheduled))
	for i, item := range state.Scheduled {
		item.ScheduledDate = item.ScheduledDate.UTC()
		scheduled[i] = item
	}

	l.mu.Lock()
	l.history = history
	l.scheduled = scheduled
	l.mu.Unlock()
	return nil
}

// newLogged builds a history entry from an already-validated draft.
// It must be called with l.mu held.
func (l *memLedger) newLogged(companyID string, draft LogDraft) models.LoggedCommunication {
	ts := draft.Timestamp
	if ts.IsZero() {
		ts = l.clock()
	}
	return models.LoggedCommunication{
		ID:        l.ids.NewID(),
		CompanyID: companyID,
		Type:      draft.Type,
		Timestamp: ts.UTC(),
		Notes:     draft.Notes,
		Outcome:   draft.Outcome,
	}
}

// prepend must be called with l.mu held.
func (l *memLedger) prepend(entry models.LoggedCommunication) {
	l.history[entry.CompanyID] = append([]models.LoggedCommunication{entry}, l.history[entry.CompanyID]...)
}

// scheduledIndex must be called with l.mu held.
func (l *memLedger) scheduledIndex(id string) int {
	return slices.IndexFunc(l.scheduled, func(s models.ScheduledCommunication) bool { return s.ID == id })
}

func validateType(t models.CommunicationType) error {
	if t == "" {
		return &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	if !t.Valid() {
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("%q is not a known communication type", t)}
	}
	return nil
}

func validateScheduled(t models.CommunicationType, date time.Time) error {
	if err := validateType(t); err != nil {
		return err
	}
	if date.IsZero() {
		return &ValidationError{Field: "scheduled_date", Reason: "must be set"}
	}
	return nil
}

func validateLedgerState(state LedgerState) error {
	seen := make(map[string]bool)

	companyIDs := make([]string, 0, len(state.History))
	for companyID := range state.History {
		companyIDs = append(companyIDs, companyID)
	}
	sort.Strings(companyIDs)

	for _, companyID := range companyIDs {
		for _, entry := range state.History[companyID] {
			if entry.ID == "" {
				return &ValidationError{Field: "communication.id", Reason: "must not be empty"}
			}
			if seen[entry.ID] {
				return &ValidationError{Field: "communication.id", Reason: fmt.Sprintf("duplicate id %q", entry.ID)}
			}
			seen[entry.ID] = true
			if err := validateType(entry.Type); err != nil {
				return err
			}
			if entry.Timestamp.IsZero() {
				return &ValidationError{Field: "timestamp", Reason: fmt.Sprintf("communication %q has no timestamp", entry.ID)}
			}
		}
	}

	scheduledSeen := make(map[string]bool, len(state.Scheduled))
	for _, item := range state.Scheduled {
		if item.ID == "" {
			return &ValidationError{Field: "scheduled.id", Reason: "must not be empty"}
		}
		if scheduledSeen[item.ID] {
			return &ValidationError{Field: "scheduled.id", Reason: fmt.Sprintf("duplicate id %q", item.ID)}
		}
		scheduledSeen[item.ID] = true
		if err := validateScheduled(item.Type, item.ScheduledDate); err != nil {
			return err
		}
	}
	return nil
}

package observability

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// EventLogFileName is the event log file kept in the base directory.
const EventLogFileName = "commtrack-events.jsonl"

// Event levels.
const (
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Event types recorded by commtrack. The engine emits the company, method
// and communication families; the app adds config warnings.
const (
	EventCompanyAdded   = "company.added"
	EventCompanyUpdated = "company.updated"
	EventCompanyDeleted = "company.deleted"

	EventCommunicationLogged      = "communication.logged"
	EventCommunicationScheduled   = "communication.scheduled"
	EventCommunicationRescheduled = "communication.rescheduled"
	EventCommunicationUnscheduled = "communication.unscheduled"
	EventCommunicationCompleted   = "communication.completed"

	EventMethodAdded     = "method.added"
	EventMethodUpdated   = "method.updated"
	EventMethodDeleted   = "method.deleted"
	EventMethodReordered = "method.reordered"

	EventConfigFallback = "config.fallback"
)

// Event families, the part of an event type before the first dot.
const (
	CategoryCompany       = "company"
	CategoryCommunication = "communication"
	CategoryMethod        = "method"
	CategoryConfig        = "config"
)

// Event is one line of the audit trail.
type Event struct {
	Time    time.Time      `json:"time"`
	Level   string         `json:"level"`
	Type    string         `json:"type"`
	Message string         `json:"msg"`
	Data    map[string]any `json:"data,omitempty"`
}

// NewEvent stamps an INFO event of the given type with the current time.
func NewEvent(eventType string, data map[string]any) Event {
	return Event{
		Time:    time.Now().UTC(),
		Level:   LevelInfo,
		Type:    eventType,
		Message: strings.ReplaceAll(eventType, ".", " "),
		Data:    data,
	}
}

// Category returns the event family, e.g. "communication".
func (e Event) Category() string {
	category, _, _ := strings.Cut(e.Type, ".")
	return category
}

// CompanyID returns the company the event is about, or "" for events that
// only carry a communication or method id.
func (e Event) CompanyID() string {
	id, _ := e.Data["company_id"].(string)
	return id
}

// CommunicationType returns the communication type of a communication
// event, e.g. "Email".
func (e Event) CommunicationType() string {
	typ, _ := e.Data["type"].(string)
	return typ
}

// IsContact reports whether the event records a contact that took place:
// a logged communication or a completed scheduled one.
func (e Event) IsContact() bool {
	return e.Type == EventCommunicationLogged || e.Type == EventCommunicationCompleted
}

// Successful reports whether a contact event had a successful outcome.
func (e Event) Successful() bool {
	ok, _ := e.Data["successful"].(bool)
	return e.IsContact() && ok
}

// EventFilter selects events. Zero fields match everything; Limit keeps
// only the newest matches.
type EventFilter struct {
	Since     *time.Time
	Until     *time.Time
	Type      string
	Category  string
	CompanyID string
	Level     string
	Limit     int
}

// Match reports whether e passes every criterion of f.
func (f EventFilter) Match(e Event) bool {
	switch {
	case f.Since != nil && e.Time.Before(*f.Since):
		return false
	case f.Until != nil && e.Time.After(*f.Until):
		return false
	case f.Type != "" && e.Type != f.Type:
		return false
	case f.Category != "" && e.Category() != f.Category:
		return false
	case f.CompanyID != "" && e.CompanyID() != f.CompanyID:
		return false
	case f.Level != "" && e.Level != f.Level:
		return false
	}
	return true
}

// EventLog is the append-only audit trail of state changes.
type EventLog interface {
	Write(event Event) error
	Read(filter EventFilter) ([]Event, error)
	Close() error
}

// maxEventLine bounds one JSONL line; reorder events carry every method id.
const maxEventLine = 1 << 20

type jsonlEventLog struct {
	mu   sync.Mutex
	path string
	file *os.File
	enc  *json.Encoder
}

// NewJSONLEventLog opens (or creates) the JSONL event log at path.
func NewJSONLEventLog(path string) (EventLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating event log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening event log: %w", err)
	}
	return &jsonlEventLog{path: path, file: f, enc: json.NewEncoder(f)}, nil
}

// Write appends event as one line. A missing time, level or message is
// filled in so every stored line is complete.
func (l *jsonlEventLog) Write(event Event) error {
	if event.Type == "" {
		return fmt.Errorf("writing event: type is required")
	}
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}
	if event.Level == "" {
		event.Level = LevelInfo
	}
	if event.Message == "" {
		event.Message = strings.ReplaceAll(event.Type, ".", " ")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(event); err != nil {
		return fmt.Errorf("writing %s event: %w", event.Type, err)
	}
	return nil
}

// Read returns the events matching filter in the order they were written.
// Lines that do not decode are skipped.
func (l *jsonlEventLog) Read(filter EventFilter) ([]Event, error) {
	f, err := os.Open(l.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening event log for reading: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventLine)
	for scanner.Scan() {
		var e Event
		if json.Unmarshal(scanner.Bytes(), &e) != nil {
			continue
		}
		if filter.Match(e) {
			events = append(events, e)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning event log: %w", err)
	}

	if filter.Limit > 0 && len(events) > filter.Limit {
		events = events[len(events)-filter.Limit:]
	}
	return events, nil
}

func (l *jsonlEventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Close(); err != nil {
		return fmt.Errorf("closing event log: %w", err)
	}
	return nil
}

package observability

import (
	"fmt"
	"time"
)

// Metrics holds activity counters derived from the event log.
type Metrics struct {
	CompaniesAdded          int            `json:"companies_added"`
	CompaniesDeleted        int            `json:"companies_deleted"`
	CommunicationsLogged    int            `json:"communications_logged"`
	CommunicationsScheduled int            `json:"communications_scheduled"`
	CommunicationsCompleted int            `json:"communications_completed"`
	Rescheduled             int            `json:"rescheduled"`
	Unscheduled             int            `json:"unscheduled"`
	MethodChanges           int            `json:"method_changes"`
	Warnings                int            `json:"warnings"`
	SuccessfulOutcomes      int            `json:"successful_outcomes"`
	SuccessRate             float64        `json:"success_rate"`
	ByType                  map[string]int `json:"by_type"`
	ByCompany               map[string]int `json:"by_company"`
	EventCount              int            `json:"event_count"`
	OldestEvent             *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent             *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event since the given time. Contacts (logged
// and completed communications) feed ByType, ByCompany and the success
// rate, the percent of contacts whose outcome was successful.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{ByType: make(map[string]int), ByCompany: make(map[string]int)}
	m.EventCount = len(events)
	if len(events) > 0 {
		oldest, newest := events[0].Time, events[len(events)-1].Time
		m.OldestEvent, m.NewestEvent = &oldest, &newest
	}

	contacts := 0
	for _, e := range events {
		if e.Level == LevelWarn {
			m.Warnings++
		}

		switch e.Category() {
		case CategoryCompany:
			switch e.Type {
			case EventCompanyAdded:
				m.CompaniesAdded++
			case EventCompanyDeleted:
				m.CompaniesDeleted++
			}
		case CategoryMethod:
			m.MethodChanges++
		case CategoryCommunication:
			switch e.Type {
			case EventCommunicationLogged:
				m.CommunicationsLogged++
			case EventCommunicationCompleted:
				m.CommunicationsCompleted++
			case EventCommunicationScheduled:
				m.CommunicationsScheduled++
			case EventCommunicationRescheduled:
				m.Rescheduled++
			case EventCommunicationUnscheduled:
				m.Unscheduled++
			}
		}

		if !e.IsContact() {
			continue
		}
		contacts++
		if typ := e.CommunicationType(); typ != "" {
			m.ByType[typ]++
		}
		if id := e.CompanyID(); id != "" {
			m.ByCompany[id]++
		}
		if e.Successful() {
			m.SuccessfulOutcomes++
		}
	}

	if contacts > 0 {
		m.SuccessRate = float64(m.SuccessfulOutcomes) / float64(contacts) * 100
	}
	return m, nil
}

package core

import (
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// Notification is a scheduled communication that needs attention.
type Notification struct {
	ID            string                   `json:"id"`
	CompanyID     string                   `json:"company_id"`
	CompanyName   string                   `json:"company_name"`
	Type          models.CommunicationType `json:"type"`
	ScheduledDate time.Time                `json:"scheduled_date"`
	Notes         string                   `json:"notes,omitempty"`
	Status        Status                   `json:"status"`
	DaysOverdue   int                      `json:"days_overdue,omitempty"`
}

// Notifications partitions pending communications into overdue and due-today
// lists. Total is the only count surfaced to badges.
type Notifications struct {
	Overdue  []Notification `json:"overdue"`
	DueToday []Notification `json:"due_today"`
	Total    int            `json:"total"`
}

// NotificationAggregator derives notifications from the registry and ledger.
type NotificationAggregator interface {
	CollectNotifications(now time.Time) Notifications
	CadenceGaps(now time.Time) []CadenceGap
}

type notificationAggregator struct {
	registry CompanyRegistry
	ledger   CommunicationLedger
	loc      *time.Location
}

// NewNotificationAggregator creates a NotificationAggregator that classifies
// calendar days in loc.
func NewNotificationAggregator(registry CompanyRegistry, ledger CommunicationLedger, loc *time.Location) NotificationAggregator {
	return &notificationAggregator{registry: registry, ledger: ledger, loc: loc}
}

func (a *notificationAggregator) CollectNotifications(now time.Time) Notifications {
	return CollectNotifications(a.registry.List(), a.ledger.ScheduledAll(), now, a.loc)
}

func (a *notificationAggregator) CadenceGaps(now time.Time) []CadenceGap {
	return CadenceGaps(a.registry.List(), a.ledger.State(), now, a.loc)
}

// CollectNotifications classifies every scheduled item against now. Items
// whose company is not in companies are skipped. Order within each partition
// follows the order of scheduled.
func CollectNotifications(companies []models.Company, scheduled []models.ScheduledCommunication, now time.Time, loc *time.Location) Notifications {
	byID := indexCompanies(companies)
	today := CalendarDay(now, loc)
	out := Notifications{
		Overdue:  []Notification{},
		DueToday: []Notification{},
	}

	for _, item := range scheduled {
		company, ok := byID[item.CompanyID]
		if !ok {
			continue
		}
		status := Classify(item.ScheduledDate, now, loc)
		n := Notification{
			ID:            item.ID,
			CompanyID:     item.CompanyID,
			CompanyName:   company.Name,
			Type:          item.Type,
			ScheduledDate: item.ScheduledDate,
			Notes:         item.Notes,
			Status:        status,
		}
		switch status {
		case StatusOverdue:
			n.DaysOverdue = daysBetween(CalendarDay(item.ScheduledDate, loc), today)
			out.Overdue = append(out.Overdue, n)
		case StatusDueToday:
			out.DueToday = append(out.DueToday, n)
		}
	}

	out.Total = len(out.Overdue) + len(out.DueToday)
	return out
}

// CadenceGap is a company whose last logged communication is older than its
// communication periodicity and that has nothing scheduled.
type CadenceGap struct {
	CompanyID       string     `json:"company_id"`
	CompanyName     string     `json:"company_name"`
	PeriodicityDays int        `json:"periodicity_days"`
	LastContact     *time.Time `json:"last_contact,omitempty"`
	DaysSince       int        `json:"days_since,omitempty"`
}

// CadenceGaps lists registered companies that are due for contact: no
// pending scheduled communication, and either never contacted or last
// contacted at least PeriodicityDays calendar days before now.
func CadenceGaps(companies []models.Company, state LedgerState, now time.Time, loc *time.Location) []CadenceGap {
	pending := make(map[string]bool, len(state.Scheduled))
	for _, item := range state.Scheduled {
		pending[item.CompanyID] = true
	}
	today := CalendarDay(now, loc)

	gaps := []CadenceGap{}
	for _, c := range companies {
		if pending[c.ID] {
			continue
		}
		periodicity := c.CommunicationPeriodicity
		if periodicity < 1 {
			periodicity = models.DefaultCommunicationPeriodicity
		}
		gap := CadenceGap{CompanyID: c.ID, CompanyName: c.Name, PeriodicityDays: periodicity}

		var last time.Time
		for _, e := range state.History[c.ID] {
			if e.Timestamp.After(last) {
				last = e.Timestamp
			}
		}
		if !last.IsZero() {
			days := daysBetween(CalendarDay(last, loc), today)
			if days < periodicity {
				continue
			}
			gap.LastContact = &last
			gap.DaysSince = days
		}
		gaps = append(gaps, gap)
	}
	return gaps
}

// daysBetween counts calendar days from a to b, both at midnight.
func daysBetween(a, b time.Time) int {
	ya, ma, da := a.Date()
	yb, mb, db := b.Date()
	ua := time.Date(ya, ma, da, 0, 0, 0, 0, time.UTC)
	ub := time.Date(yb, mb, db, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

func indexCompanies(companies []models.Company) map[string]models.Company {
	byID := make(map[string]models.Company, len(companies))
	for _, c := range companies {
		byID[c.ID] = c
	}
	return byID
}

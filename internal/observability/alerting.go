package observability

import (
	"fmt"
	"sort"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	CompanyID   string        `json:"company_id,omitempty"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// Alert conditions.
const (
	ConditionOverdue       = "communication_overdue"
	ConditionDueToday      = "communication_due_today"
	ConditionCadenceLapsed = "contact_cadence_lapsed"
)

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	// OverdueDays is the number of calendar days after which an overdue
	// communication escalates from medium to high severity.
	OverdueDays int `yaml:"overdue_days" json:"overdue_days"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{OverdueDays: 7}
}

// PendingCommunication is an overdue or due-today scheduled communication.
// DaysOverdue is zero for items due today.
type PendingCommunication struct {
	ID            string
	CompanyID     string
	CompanyName   string
	Type          string
	ScheduledDate time.Time
	DaysOverdue   int
}

// ContactGap is a company that has gone longer than its periodicity without
// contact and has nothing scheduled. DaysSince is zero when the company was
// never contacted.
type ContactGap struct {
	CompanyID       string
	CompanyName     string
	PeriodicityDays int
	DaysSince       int
	NeverContacted  bool
}

// AlertSource supplies the communication state alerts are evaluated against.
type AlertSource interface {
	Pending(now time.Time) []PendingCommunication
	ContactGaps(now time.Time) []ContactGap
}

// AlertEngine evaluates alert conditions against the communication state.
// Digest groups the same state for notification channels.
type AlertEngine interface {
	Evaluate(now time.Time) []Alert
	Digest(now time.Time) Digest
}

// Digest is the follow-up summary posted to notification channels: pending
// communications split into overdue and due today, and the companies whose
// contact cadence lapsed. Overdue is ordered most days late first.
type Digest struct {
	GeneratedAt       time.Time
	EscalateAfterDays int
	Overdue           []PendingCommunication
	DueToday          []PendingCommunication
	Lapsed            []ContactGap
}

// Total counts every item in the digest.
func (d Digest) Total() int {
	return len(d.Overdue) + len(d.DueToday) + len(d.Lapsed)
}

// Empty reports whether there is nothing to follow up on.
func (d Digest) Empty() bool {
	return d.Total() == 0
}

type alertEngine struct {
	source     AlertSource
	thresholds AlertThresholds
}

// NewAlertEngine creates a new AlertEngine over the given source. A
// non-positive OverdueDays falls back to the default.
func NewAlertEngine(source AlertSource, thresholds AlertThresholds) AlertEngine {
	if thresholds.OverdueDays < 1 {
		thresholds.OverdueDays = DefaultAlertThresholds().OverdueDays
	}
	return &alertEngine{source: source, thresholds: thresholds}
}

// Evaluate returns every triggered alert, most severe first. Alerts of equal
// severity keep the order the source reported them in.
func (ae *alertEngine) Evaluate(now time.Time) []Alert {
	now = now.UTC()
	alerts := []Alert{}
	alerts = append(alerts, ae.checkPending(now)...)
	alerts = append(alerts, ae.checkCadence(now)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank(alerts[i].Severity) < severityRank(alerts[j].Severity)
	})
	return alerts
}

// Digest collects the pending communications and cadence gaps at now.
func (ae *alertEngine) Digest(now time.Time) Digest {
	d := Digest{GeneratedAt: now.UTC(), EscalateAfterDays: ae.thresholds.OverdueDays}
	for _, p := range ae.source.Pending(now) {
		if p.DaysOverdue == 0 {
			d.DueToday = append(d.DueToday, p)
		} else {
			d.Overdue = append(d.Overdue, p)
		}
	}
	sort.SliceStable(d.Overdue, func(i, j int) bool {
		return d.Overdue[i].DaysOverdue > d.Overdue[j].DaysOverdue
	})
	d.Lapsed = ae.source.ContactGaps(now)
	return d
}

// overdueSeverity escalates an overdue communication to high once it is
// escalateAfter days late.
func overdueSeverity(p PendingCommunication, escalateAfter int) AlertSeverity {
	if p.DaysOverdue >= escalateAfter {
		return SeverityHigh
	}
	return SeverityMedium
}

// cadenceSeverity escalates a lapsed cadence to medium once it reaches
// twice the company's periodicity.
func cadenceSeverity(g ContactGap) AlertSeverity {
	if !g.NeverContacted && g.PeriodicityDays > 0 && g.DaysSince >= 2*g.PeriodicityDays {
		return SeverityMedium
	}
	return SeverityLow
}

func (ae *alertEngine) checkPending(now time.Time) []Alert {
	var alerts []Alert
	for _, p := range ae.source.Pending(now) {
		when := p.ScheduledDate.UTC().Format("2006-01-02 15:04")
		if p.DaysOverdue == 0 {
			alerts = append(alerts, Alert{
				ID:          fmt.Sprintf("due-%s", p.ID),
				Condition:   ConditionDueToday,
				Severity:    SeverityLow,
				Message:     fmt.Sprintf("%s with %s is due today (%s UTC)", p.Type, p.CompanyName, when),
				CompanyID:   p.CompanyID,
				TriggeredAt: now,
			})
			continue
		}

		alerts = append(alerts, Alert{
			ID:          fmt.Sprintf("overdue-%s", p.ID),
			Condition:   ConditionOverdue,
			Severity:    overdueSeverity(p, ae.thresholds.OverdueDays),
			Message:     fmt.Sprintf("%s with %s is %s overdue (scheduled %s UTC)", p.Type, p.CompanyName, pluralDays(p.DaysOverdue), when),
			CompanyID:   p.CompanyID,
			TriggeredAt: now,
		})
	}
	return alerts
}

func (ae *alertEngine) checkCadence(now time.Time) []Alert {
	var alerts []Alert
	for _, g := range ae.source.ContactGaps(now) {
		a := Alert{
			ID:          fmt.Sprintf("cadence-%s", g.CompanyID),
			Condition:   ConditionCadenceLapsed,
			Severity:    cadenceSeverity(g),
			CompanyID:   g.CompanyID,
			TriggeredAt: now,
		}
		if g.NeverContacted {
			a.Message = fmt.Sprintf("%s has never been contacted and nothing is scheduled", g.CompanyName)
		} else {
			a.Message = fmt.Sprintf("%s was last contacted %s ago (every %s expected)",
				g.CompanyName, pluralDays(g.DaysSince), pluralDays(g.PeriodicityDays))
		}
		alerts = append(alerts, a)
	}
	return alerts
}

func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	default:
		return 2
	}
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

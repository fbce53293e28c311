package core

import (
	"fmt"
	"sort"
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

// AllCompanies is the company filter value that disables filtering.
const AllCompanies = "all"

// UnknownActivityCompany is the company name shown in the activity log for
// dangling references.
const UnknownActivityCompany = "Unknown"

// overviewRecentLimit is the number of history entries shown per company in
// the overview grid.
const overviewRecentLimit = 5

// DateRange is an inclusive range of calendar days. A zero bound is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether the calendar day of t in loc lies within the range.
func (r DateRange) Contains(t time.Time, loc *time.Location) bool {
	day := CalendarDay(t, loc)
	if !r.Start.IsZero() && day.Before(CalendarDay(r.Start, loc)) {
		return false
	}
	if !r.End.IsZero() && day.After(CalendarDay(r.End, loc)) {
		return false
	}
	return true
}

// Filter restricts analytics to one company and a day range.
type Filter struct {
	CompanyID string
	Range     DateRange
}

func (f Filter) matchesCompany(companyID string) bool {
	return f.CompanyID == "" || f.CompanyID == AllCompanies || f.CompanyID == companyID
}

// TypeCount is the number of communications of one type.
type TypeCount struct {
	Type  models.CommunicationType `json:"type"`
	Count int                      `json:"count"`
}

// TypeEffectiveness is the success percentage of one communication type.
type TypeEffectiveness struct {
	Type          models.CommunicationType `json:"type"`
	Successful    int                      `json:"successful"`
	Total         int                      `json:"total"`
	Effectiveness float64                  `json:"effectiveness"`
}

// MonthCount is the number of overdue communications scheduled in one month.
type MonthCount struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Label   string     `json:"label"`
	Overdue int        `json:"overdue"`
}

// ActivityStatus distinguishes history from pending items in the activity log.
type ActivityStatus string

const (
	ActivityCompleted ActivityStatus = "Completed"
	ActivityScheduled ActivityStatus = "Scheduled"
)

// ActivityEntry is one row of the merged activity feed.
type ActivityEntry struct {
	ID          string                   `json:"id"`
	Date        time.Time                `json:"date"`
	CompanyID   string                   `json:"company_id"`
	CompanyName string                   `json:"company"`
	Type        models.CommunicationType `json:"type"`
	Status      ActivityStatus           `json:"status"`
	Notes       string                   `json:"notes,omitempty"`
	Outcome     string                   `json:"outcome,omitempty"`
}

// CalendarEvent is a logged or scheduled communication placed on a calendar.
type CalendarEvent struct {
	ID          string                   `json:"id"`
	Title       string                   `json:"title"`
	Start       time.Time                `json:"start"`
	CompanyName string                   `json:"company_name"`
	Type        models.CommunicationType `json:"type"`
	Notes       string                   `json:"notes,omitempty"`
	Status      string                   `json:"status"`
}

// CompanyOverview is one row of the per-company dashboard grid.
type CompanyOverview struct {
	Company   models.Company                 `json:"company"`
	Recent    []models.LoggedCommunication   `json:"recent"`
	Next      *models.ScheduledCommunication `json:"next,omitempty"`
	Highlight Status                         `json:"highlight,omitempty"`
}

// AnalyticsEngine computes aggregate views over the registry and ledger.
// Every method works on a fresh snapshot and never mutates state.
type AnalyticsEngine interface {
	FrequencyByType(filter Filter) []TypeCount
	EffectivenessByType(filter Filter) []TypeEffectiveness
	OverdueTrend(filter Filter, now time.Time) []MonthCount
	ActivityLog() []ActivityEntry
	CalendarEvents(window DateRange) []CalendarEvent
	CompanyOverview(now time.Time, highlight bool) []CompanyOverview
}

type analyticsEngine struct {
	registry CompanyRegistry
	ledger   CommunicationLedger
	loc      *time.Location
}

// NewAnalyticsEngine creates an AnalyticsEngine computing calendar days in loc.
func NewAnalyticsEngine(registry CompanyRegistry, ledger CommunicationLedger, loc *time.Location) AnalyticsEngine {
	if loc == nil {
		loc = time.UTC
	}
	return &analyticsEngine{registry: registry, ledger: ledger, loc: loc}
}

func (a *analyticsEngine) FrequencyByType(filter Filter) []TypeCount {
	return FrequencyByType(a.ledger.State(), filter, a.loc)
}

func (a *analyticsEngine) EffectivenessByType(filter Filter) []TypeEffectiveness {
	return EffectivenessByType(a.ledger.State(), filter)
}

func (a *analyticsEngine) OverdueTrend(filter Filter, now time.Time) []MonthCount {
	return OverdueTrend(a.ledger.ScheduledAll(), filter, now, a.loc)
}

func (a *analyticsEngine) ActivityLog() []ActivityEntry {
	return ActivityLog(a.registry.List(), a.ledger.State())
}

func (a *analyticsEngine) CalendarEvents(window DateRange) []CalendarEvent {
	return CalendarEvents(a.registry.List(), a.ledger.State(), window, a.loc)
}

func (a *analyticsEngine) CompanyOverview(now time.Time, highlight bool) []CompanyOverview {
	return BuildCompanyOverview(a.registry.List(), a.ledger.State(), now, highlight, a.loc)
}

// FrequencyByType counts history entries per type whose company matches the
// filter and whose timestamp falls in the filter's day range. Types are
// reported in enumeration order; with no matches the baseline types are
// returned with zero counts.
func FrequencyByType(state LedgerState, filter Filter, loc *time.Location) []TypeCount {
	counts := make(map[models.CommunicationType]int)
	for companyID, entries := range state.History {
		if !filter.matchesCompany(companyID) {
			continue
		}
		for _, e := range entries {
			if filter.Range.Contains(e.Timestamp, loc) {
				counts[e.Type]++
			}
		}
	}

	if len(counts) == 0 {
		baseline := models.BaselineCommunicationTypes()
		out := make([]TypeCount, len(baseline))
		for i, t := range baseline {
			out[i] = TypeCount{Type: t}
		}
		return out
	}

	out := make([]TypeCount, 0, len(counts))
	for _, t := range orderedTypes(counts) {
		out = append(out, TypeCount{Type: t, Count: counts[t]})
	}
	return out
}

// EffectivenessByType reports, per type, the percentage of history entries
// whose outcome marks success. The date range is ignored. With no matches the
// baseline types are returned with zero effectiveness.
func EffectivenessByType(state LedgerState, filter Filter) []TypeEffectiveness {
	type tally struct{ total, successful int }
	tallies := make(map[models.CommunicationType]*tally)
	for companyID, entries := range state.History {
		if !filter.matchesCompany(companyID) {
			continue
		}
		for _, e := range entries {
			t, ok := tallies[e.Type]
			if !ok {
				t = &tally{}
				tallies[e.Type] = t
			}
			t.total++
			if e.Successful() {
				t.successful++
			}
		}
	}

	if len(tallies) == 0 {
		baseline := models.BaselineCommunicationTypes()
		out := make([]TypeEffectiveness, len(baseline))
		for i, t := range baseline {
			out[i] = TypeEffectiveness{Type: t}
		}
		return out
	}

	out := make([]TypeEffectiveness, 0, len(tallies))
	for _, typ := range orderedTypes(tallies) {
		t := tallies[typ]
		out = append(out, TypeEffectiveness{
			Type:          typ,
			Successful:    t.successful,
			Total:         t.total,
			Effectiveness: percentage(t.successful, t.total),
		})
	}
	return out
}

// OverdueTrend buckets currently overdue scheduled items by the month of
// their scheduled date, oldest month first. With no overdue items a single
// zero bucket for the current month is returned.
func OverdueTrend(scheduled []models.ScheduledCommunication, filter Filter, now time.Time, loc *time.Location) []MonthCount {
	if loc == nil {
		loc = time.UTC
	}
	buckets := make(map[time.Time]int)
	for _, item := range scheduled {
		if !filter.matchesCompany(item.CompanyID) {
			continue
		}
		if Classify(item.ScheduledDate, now, loc) != StatusOverdue {
			continue
		}
		buckets[monthStart(item.ScheduledDate, loc)]++
	}

	if len(buckets) == 0 {
		return []MonthCount{newMonthCount(monthStart(now, loc), 0)}
	}

	months := make([]time.Time, 0, len(buckets))
	for m := range buckets {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	out := make([]MonthCount, len(months))
	for i, m := range months {
		out[i] = newMonthCount(m, buckets[m])
	}
	return out
}

// ActivityLog merges history and scheduled items into one feed ordered by
// date, newest first. Equal dates keep history before scheduled items, and
// history grouped by company id.
func ActivityLog(companies []models.Company, state LedgerState) []ActivityEntry {
	byID := indexCompanies(companies)
	name := func(companyID string) string {
		if c, ok := byID[companyID]; ok {
			return c.Name
		}
		return UnknownActivityCompany
	}

	var entries []ActivityEntry
	for _, companyID := range sortedKeys(state.History) {
		for _, e := range state.History[companyID] {
			entries = append(entries, ActivityEntry{
				ID:          e.ID,
				Date:        e.Timestamp,
				CompanyID:   companyID,
				CompanyName: name(companyID),
				Type:        e.Type,
				Status:      ActivityCompleted,
				Notes:       e.Notes,
				Outcome:     e.Outcome,
			})
		}
	}
	for _, item := range state.Scheduled {
		entries = append(entries, ActivityEntry{
			ID:          item.ID,
			Date:        item.ScheduledDate,
			CompanyID:   item.CompanyID,
			CompanyName: name(item.CompanyID),
			Type:        item.Type,
			Status:      ActivityScheduled,
			Notes:       item.Notes,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	if entries == nil {
		entries = []ActivityEntry{}
	}
	return entries
}

// CalendarEvents places history and scheduled items on a calendar, limited to
// the given day window. Events are ordered by start time.
func CalendarEvents(companies []models.Company, state LedgerState, window DateRange, loc *time.Location) []CalendarEvent {
	byID := indexCompanies(companies)
	name := func(companyID string) string {
		if c, ok := byID[companyID]; ok {
			return c.Name
		}
		return UnknownCompanyName
	}

	events := []CalendarEvent{}
	for _, companyID := range sortedKeys(state.History) {
		for _, e := range state.History[companyID] {
			if !window.Contains(e.Timestamp, loc) {
				continue
			}
			events = append(events, CalendarEvent{
				ID:          "past-" + e.ID,
				Title:       fmt.Sprintf("%s - %s", name(companyID), e.Type),
				Start:       e.Timestamp,
				CompanyName: name(companyID),
				Type:        e.Type,
				Notes:       e.Notes,
				Status:      "completed",
			})
		}
	}
	for _, item := range state.Scheduled {
		if !window.Contains(item.ScheduledDate, loc) {
			continue
		}
		events = append(events, CalendarEvent{
			ID:          "upcoming-" + item.ID,
			Title:       fmt.Sprintf("%s - %s", name(item.CompanyID), item.Type),
			Start:       item.ScheduledDate,
			CompanyName: name(item.CompanyID),
			Type:        item.Type,
			Notes:       item.Notes,
			Status:      "scheduled",
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

// BuildCompanyOverview returns one row per company with its five most recent
// history entries and its earliest pending communication. When highlight is
// set the pending item is classified against now.
func BuildCompanyOverview(companies []models.Company, state LedgerState, now time.Time, highlight bool, loc *time.Location) []CompanyOverview {
	next := make(map[string]models.ScheduledCommunication)
	for _, item := range state.Scheduled {
		current, ok := next[item.CompanyID]
		if !ok || item.ScheduledDate.Before(current.ScheduledDate) {
			next[item.CompanyID] = item
		}
	}

	rows := make([]CompanyOverview, 0, len(companies))
	for _, c := range companies {
		history := state.History[c.ID]
		if len(history) > overviewRecentLimit {
			history = history[:overviewRecentLimit]
		}
		row := CompanyOverview{
			Company: c,
			Recent:  append([]models.LoggedCommunication{}, history...),
		}
		if item, ok := next[c.ID]; ok {
			item := item
			row.Next = &item
			if highlight {
				row.Highlight = Classify(item.ScheduledDate, now, loc)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func orderedTypes[V any](present map[models.CommunicationType]V) []models.CommunicationType {
	out := make([]models.CommunicationType, 0, len(present))
	for _, t := range models.CommunicationTypes() {
		if _, ok := present[t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func monthStart(t time.Time, loc *time.Location) time.Time {
	y, m, _ := t.In(loc).Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, loc)
}

func newMonthCount(month time.Time, overdue int) MonthCount {
	return MonthCount{
		Year:    month.Year(),
		Month:   month.Month(),
		Label:   month.Format("Jan 2006"),
		Overdue: overdue,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

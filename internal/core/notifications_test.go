package core

import (
	"testing"
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

func TestCollectNotifications_OverdueScenario(t *testing.T) {
	engine := NewEngine(EngineOptions{IDs: newSeqIDs("s"), Location: time.UTC})
	if err := engine.Registry.Restore([]models.Company{{ID: "1", Name: "Acme", Location: "Berlin"}}); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	item, err := engine.Ledger.Schedule("1", ScheduleDraft{Type: models.TypeEmail, ScheduledDate: mustTime("2024-01-01T00:00:00Z")})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if item.ID != "s1" {
		t.Fatalf("scheduled id = %q, want s1", item.ID)
	}

	got := engine.Notifications.CollectNotifications(mustTime("2025-01-01T00:00:00Z"))

	if got.Total != 1 {
		t.Errorf("Total = %d, want 1", got.Total)
	}
	if len(got.Overdue) != 1 || got.Overdue[0].ID != "s1" {
		t.Fatalf("Overdue = %+v, want [s1]", got.Overdue)
	}
	if got.Overdue[0].CompanyName != "Acme" || got.Overdue[0].Status != StatusOverdue {
		t.Errorf("notification = %+v", got.Overdue[0])
	}
	if len(got.DueToday) != 0 {
		t.Errorf("DueToday = %+v, want empty", got.DueToday)
	}
}

func TestCollectNotifications_Partitions(t *testing.T) {
	companies := []models.Company{
		{ID: "a", Name: "Alpha"},
		{ID: "b", Name: "Beta"},
	}
	now := mustTime("2024-06-10T12:00:00Z")
	scheduled := []models.ScheduledCommunication{
		{ID: "1", CompanyID: "a", Type: models.TypeEmail, ScheduledDate: mustTime("2024-06-10T18:00:00Z")},
		{ID: "2", CompanyID: "b", Type: models.TypeMeeting, ScheduledDate: mustTime("2024-06-01T10:00:00Z")},
		{ID: "3", CompanyID: "a", Type: models.TypeEmail, ScheduledDate: mustTime("2024-06-11T10:00:00Z")},
		{ID: "4", CompanyID: "gone", Type: models.TypeEmail, ScheduledDate: mustTime("2024-06-01T10:00:00Z")},
		{ID: "5", CompanyID: "a", Type: models.TypePhoneCall, ScheduledDate: mustTime("2024-05-01T10:00:00Z")},
	}

	got := CollectNotifications(companies, scheduled, now, time.UTC)

	if ids := notificationIDs(got.Overdue); len(ids) != 2 || ids[0] != "2" || ids[1] != "5" {
		t.Errorf("Overdue ids = %v, want [2 5]", ids)
	}
	if ids := notificationIDs(got.DueToday); len(ids) != 1 || ids[0] != "1" {
		t.Errorf("DueToday ids = %v, want [1]", ids)
	}
	if len(got.Overdue) == 2 && (got.Overdue[0].DaysOverdue != 9 || got.Overdue[1].DaysOverdue != 40) {
		t.Errorf("DaysOverdue = %d, %d, want 9, 40", got.Overdue[0].DaysOverdue, got.Overdue[1].DaysOverdue)
	}
	if len(got.DueToday) == 1 && got.DueToday[0].DaysOverdue != 0 {
		t.Errorf("due today DaysOverdue = %d, want 0", got.DueToday[0].DaysOverdue)
	}
	if got.Total != len(got.Overdue)+len(got.DueToday) {
		t.Errorf("Total = %d, want %d", got.Total, len(got.Overdue)+len(got.DueToday))
	}
}

func TestCollectNotifications_EmptyIsNonNil(t *testing.T) {
	got := CollectNotifications(nil, nil, time.Now(), nil)
	if got.Overdue == nil || got.DueToday == nil || got.Total != 0 {
		t.Errorf("got %+v, want empty non-nil partitions", got)
	}
}

func notificationIDs(ns []Notification) []string {
	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = n.ID
	}
	return ids
}

func TestCadenceGaps(t *testing.T) {
	companies := []models.Company{
		{ID: "recent", Name: "Recent", CommunicationPeriodicity: 14},
		{ID: "stale", Name: "Stale", CommunicationPeriodicity: 7},
		{ID: "never", Name: "Never"},
		{ID: "planned", Name: "Planned", CommunicationPeriodicity: 1},
	}
	state := LedgerState{
		History: map[string][]models.LoggedCommunication{
			"recent":  {{ID: "1", Type: models.TypeEmail, Timestamp: mustTime("2024-06-05T10:00:00Z")}},
			"stale":   {{ID: "2", Type: models.TypeEmail, Timestamp: mustTime("2024-06-03T23:00:00Z")}},
			"planned": {{ID: "3", Type: models.TypeEmail, Timestamp: mustTime("2024-01-01T10:00:00Z")}},
		},
		Scheduled: []models.ScheduledCommunication{
			{ID: "4", CompanyID: "planned", Type: models.TypeEmail, ScheduledDate: mustTime("2024-07-01T10:00:00Z")},
		},
	}
	now := mustTime("2024-06-10T08:00:00Z")

	gaps := CadenceGaps(companies, state, now, time.UTC)
	if len(gaps) != 2 {
		t.Fatalf("gaps = %+v, want stale and never", gaps)
	}
	if gaps[0].CompanyID != "stale" || gaps[0].DaysSince != 7 || gaps[0].LastContact == nil {
		t.Errorf("gaps[0] = %+v", gaps[0])
	}
	if gaps[1].CompanyID != "never" || gaps[1].LastContact != nil || gaps[1].PeriodicityDays != models.DefaultCommunicationPeriodicity {
		t.Errorf("gaps[1] = %+v", gaps[1])
	}
}

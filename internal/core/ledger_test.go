package core

import (
	"reflect"
	"testing"
	"time"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

var ledgerNow = mustTime("2024-06-10T09:30:00Z")

func newTestLedger() (CommunicationLedger, *recordingEvents) {
	events := &recordingEvents{}
	return NewCommunicationLedger(newSeqIDs("x"), fixedClock(ledgerNow), events), events
}

func TestLedger_LogPrependsNewestFirst(t *testing.T) {
	l, _ := newTestLedger()

	first, err := l.Log("acme", LogDraft{Type: models.TypeEmail, Timestamp: mustTime("2024-06-01T10:00:00Z")})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	second, err := l.Log("acme", LogDraft{Type: models.TypePhoneCall, Timestamp: mustTime("2024-05-01T10:00:00Z")})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}

	history := l.HistoryFor("acme")
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}
	// Order is by logging, not by timestamp.
	if history[0].ID != second.ID || history[1].ID != first.ID {
		t.Errorf("history order = [%s %s], want [%s %s]", history[0].ID, history[1].ID, second.ID, first.ID)
	}
	if history[0].CompanyID != "acme" {
		t.Errorf("CompanyID = %q, want acme", history[0].CompanyID)
	}
}

func TestLedger_LogDefaultsTimestampToClock(t *testing.T) {
	l, events := newTestLedger()

	entry, err := l.Log("acme", LogDraft{Type: models.TypeMeeting, Notes: "kickoff"})
	if err != nil {
		t.Fatalf("Log: %v", err)
	}
	if !entry.Timestamp.Equal(ledgerNow) {
		t.Errorf("Timestamp = %v, want %v", entry.Timestamp, ledgerNow)
	}
	if got := events.types(); !reflect.DeepEqual(got, []string{"communication.logged"}) {
		t.Errorf("events = %v", got)
	}
}

func TestLedger_LogRejectsUnknownType(t *testing.T) {
	l, events := newTestLedger()

	for _, typ := range []models.CommunicationType{"", "Carrier Pigeon"} {
		if _, err := l.Log("acme", LogDraft{Type: typ}); !IsValidation(err) {
			t.Errorf("Log(type=%q) error = %v, want ValidationError", typ, err)
		}
	}
	if n := len(l.HistoryFor("acme")); n != 0 {
		t.Errorf("history has %d entries after rejected logs", n)
	}
	if n := len(events.types()); n != 0 {
		t.Errorf("%d events emitted for rejected logs", n)
	}
}

func TestLedger_LogManyIsAllOrNothing(t *testing.T) {
	l, _ := newTestLedger()

	if _, err := l.LogMany(nil, LogDraft{Type: models.TypeEmail}); !IsValidation(err) {
		t.Errorf("LogMany(no companies) error = %v, want ValidationError", err)
	}
	if _, err := l.LogMany([]string{"a", "b"}, LogDraft{Type: "Fax"}); !IsValidation(err) {
		t.Errorf("LogMany(bad type) error = %v, want ValidationError", err)
	}
	if n := len(l.State().History); n != 0 {
		t.Fatalf("history touched by rejected LogMany: %d companies", n)
	}

	entries, err := l.LogMany([]string{"a", "b"}, LogDraft{Type: models.TypeLinkedInPost, Outcome: "success"})
	if err != nil {
		t.Fatalf("LogMany: %v", err)
	}
	if len(entries) != 2 || entries[0].CompanyID != "a" || entries[1].CompanyID != "b" {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].ID == entries[1].ID {
		t.Errorf("entries share id %q", entries[0].ID)
	}
	if len(l.HistoryFor("a")) != 1 || len(l.HistoryFor("b")) != 1 {
		t.Errorf("each company should have one entry")
	}
}

func TestLedger_ScheduleValidates(t *testing.T) {
	l, _ := newTestLedger()

	if _, err := l.Schedule("acme", ScheduleDraft{Type: models.TypeEmail}); !IsValidation(err) {
		t.Errorf("Schedule(zero date) error = %v, want ValidationError", err)
	}
	if _, err := l.Schedule("acme", ScheduleDraft{Type: "Telegram", ScheduledDate: ledgerNow}); !IsValidation(err) {
		t.Errorf("Schedule(bad type) error = %v, want ValidationError", err)
	}
	if n := len(l.ScheduledAll()); n != 0 {
		t.Errorf("scheduled has %d items after rejected schedules", n)
	}
}

func TestLedger_ScheduleAppendsInOrder(t *testing.T) {
	l, _ := newTestLedger()

	a, _ := l.Schedule("acme", ScheduleDraft{Type: models.TypeEmail, ScheduledDate: mustTime("2024-07-01T10:00:00Z")})
	b, _ := l.Schedule("ghost", ScheduleDraft{Type: models.TypeMeeting, ScheduledDate: mustTime("2024-06-01T10:00:00Z")})

	all := l.ScheduledAll()
	if len(all) != 2 || all[0].ID != a.ID || all[1].ID != b.ID {
		t.Errorf("ScheduledAll = %+v, want [%s %s]", all, a.ID, b.ID)
	}
}

func TestLedger_MarkCompleteMovesItem(t *testing.T) {
	l, events := newTestLedger()
	item, err := l.Schedule("acme", ScheduleDraft{
		Type:          models.TypeMeeting,
		ScheduledDate: mustTime("2024-06-12T10:00:00Z"),
		Notes:         "quarterly review",
	})
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	entry, err := l.MarkComplete(item.ID, Completion{Outcome: "Successful - signed"})
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}

	if entry.Type != models.TypeMeeting || entry.Notes != "quarterly review" {
		t.Errorf("defaults not carried from scheduled item: %+v", entry)
	}
	if !entry.Timestamp.Equal(ledgerNow) {
		t.Errorf("Timestamp = %v, want clock now %v", entry.Timestamp, ledgerNow)
	}
	if entry.ID == item.ID {
		t.Errorf("logged entry reuses the scheduled id")
	}
	if n := len(l.ScheduledAll()); n != 0 {
		t.Errorf("scheduled still has %d items", n)
	}
	history := l.HistoryFor("acme")
	if len(history) != 1 || history[0].ID != entry.ID {
		t.Errorf("history = %+v, want the completed entry", history)
	}

	types := events.types()
	if types[len(types)-1] != "communication.completed" {
		t.Errorf("last event = %q, want communication.completed", types[len(types)-1])
	}
}

func TestLedger_MarkCompleteOverridesDefaults(t *testing.T) {
	l, _ := newTestLedger()
	item, _ := l.Schedule("acme", ScheduleDraft{Type: models.TypeMeeting, ScheduledDate: ledgerNow, Notes: "plan"})
	at := mustTime("2024-06-09T15:00:00Z")

	entry, err := l.MarkComplete(item.ID, Completion{Type: models.TypePhoneCall, Timestamp: at, Notes: "moved to a call"})
	if err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if entry.Type != models.TypePhoneCall || entry.Notes != "moved to a call" || !entry.Timestamp.Equal(at) {
		t.Errorf("entry = %+v", entry)
	}
}

func TestLedger_MarkCompleteNotFound(t *testing.T) {
	l, _ := newTestLedger()
	_, _ = l.Log("acme", LogDraft{Type: models.TypeEmail})
	before := l.State()

	_, err := l.MarkComplete("missing", Completion{})
	if !IsNotFound(err) {
		t.Fatalf("error = %v, want NotFoundError", err)
	}
	if !reflect.DeepEqual(before, l.State()) {
		t.Errorf("state changed after failed MarkComplete")
	}
}

func TestLedger_MarkCompleteInvalidLeavesItemScheduled(t *testing.T) {
	l, _ := newTestLedger()
	item, _ := l.Schedule("acme", ScheduleDraft{Type: models.TypeEmail, ScheduledDate: ledgerNow})

	if _, err := l.MarkComplete(item.ID, Completion{Type: "Smoke Signal"}); !IsValidation(err) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if all := l.ScheduledAll(); len(all) != 1 || all[0].ID != item.ID {
		t.Errorf("scheduled item lost after rejected completion: %+v", all)
	}
	if n := len(l.HistoryFor("acme")); n != 0 {
		t.Errorf("history has %d entries after rejected completion", n)
	}
}

func TestLedger_UpdateScheduled(t *testing.T) {
	l, _ := newTestLedger()
	item, _ := l.Schedule("acme", ScheduleDraft{Type: models.TypeEmail, ScheduledDate: ledgerNow})

	moved := mustTime("2024-07-01T08:00:00Z")
	err := l.UpdateScheduled(models.ScheduledCommunication{ID: item.ID, Type: models.TypePhoneCall, ScheduledDate: moved, Notes: "call instead"})
	if err != nil {
		t.Fatalf("UpdateScheduled: %v", err)
	}

	got := l.ScheduledAll()[0]
	if got.Type != models.TypePhoneCall || !got.ScheduledDate.Equal(moved) || got.Notes != "call instead" {
		t.Errorf("updated item = %+v", got)
	}
	if got.CompanyID != "acme" {
		t.Errorf("CompanyID = %q, want acme to be kept", got.CompanyID)
	}

	if err := l.UpdateScheduled(models.ScheduledCommunication{ID: "nope", Type: models.TypeEmail, ScheduledDate: moved}); !IsNotFound(err) {
		t.Errorf("update of missing id error = %v, want NotFoundError", err)
	}
	if err := l.UpdateScheduled(models.ScheduledCommunication{ID: item.ID, Type: models.TypeEmail}); !IsValidation(err) {
		t.Errorf("update with zero date error = %v, want ValidationError", err)
	}
}

func TestLedger_DeleteScheduledIsIdempotent(t *testing.T) {
	l, _ := newTestLedger()
	item, _ := l.Schedule("acme", ScheduleDraft{Type: models.TypeEmail, ScheduledDate: ledgerNow})

	if !l.DeleteScheduled(item.ID) {
		t.Errorf("first delete = false, want true")
	}
	if l.DeleteScheduled(item.ID) {
		t.Errorf("second delete = true, want false")
	}
	if len(l.ScheduledAll()) != 0 {
		t.Errorf("item still scheduled")
	}
}

func TestLedger_StateIsACopy(t *testing.T) {
	l, _ := newTestLedger()
	_, _ = l.Log("acme", LogDraft{Type: models.TypeEmail})
	_, _ = l.Schedule("acme", ScheduleDraft{Type: models.TypeEmail, ScheduledDate: ledgerNow})

	state := l.State()
	state.History["acme"][0].Notes = "mutated"
	state.Scheduled[0].Notes = "mutated"

	if l.HistoryFor("acme")[0].Notes == "mutated" || l.ScheduledAll()[0].Notes == "mutated" {
		t.Errorf("ledger state leaked through State()")
	}
}

func TestLedger_RestoreValidates(t *testing.T) {
	l, _ := newTestLedger()
	_, _ = l.Log("acme", LogDraft{Type: models.TypeEmail})
	before := l.State()

	bad := LedgerState{
		History: map[string][]models.LoggedCommunication{
			"a": {{ID: "1", Type: models.TypeEmail, Timestamp: ledgerNow}},
			"b": {{ID: "1", Type: models.TypeEmail, Timestamp: ledgerNow}},
		},
	}
	if err := l.Restore(bad); !IsValidation(err) {
		t.Fatalf("Restore(duplicate ids) error = %v, want ValidationError", err)
	}
	if !reflect.DeepEqual(before, l.State()) {
		t.Errorf("state changed after rejected restore")
	}

	berlin := time.FixedZone("CEST", 2*60*60)
	good := LedgerState{
		History: map[string][]models.LoggedCommunication{
			"a": {{ID: "1", Type: models.TypeEmail, Timestamp: time.Date(2024, 6, 1, 12, 0, 0, 0, berlin)}},
		},
		Scheduled: []models.ScheduledCommunication{{ID: "2", CompanyID: "a", Type: models.TypeMeeting, ScheduledDate: ledgerNow}},
	}
	if err := l.Restore(good); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	h := l.HistoryFor("a")
	if len(h) != 1 || h[0].CompanyID != "a" || h[0].Timestamp.Location() != time.UTC {
		t.Errorf("restored history = %+v", h)
	}
	if len(l.HistoryFor("acme")) != 0 {
		t.Errorf("old history survived restore")
	}
}

package cli

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/observability"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

func TestDashboardModel_Init(t *testing.T) {
	m := newDashboardModel()

	if m.activePanel != panelNotifications {
		t.Errorf("expected activePanel = %d, got %d", panelNotifications, m.activePanel)
	}
	if !m.loading {
		t.Error("expected loading = true on init")
	}
	if cmd := m.Init(); cmd == nil {
		t.Error("expected Init to return a non-nil command")
	}
}

func TestDashboardModel_KeyQ(t *testing.T) {
	m := newDashboardModel()
	m.loading = false

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected tea.Quit command from q key")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
	if dm := updated.(dashboardModel); dm.activePanel != panelNotifications {
		t.Errorf("expected activePanel unchanged, got %d", dm.activePanel)
	}
}

func TestDashboardModel_KeyEsc(t *testing.T) {
	m := newDashboardModel()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected tea.Quit command from esc key")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestDashboardModel_KeyTabCycles(t *testing.T) {
	m := newDashboardModel()

	want := []int{panelAnalytics, panelActivity, panelAlerts, panelNotifications}
	var model tea.Model = m
	for i, panel := range want {
		var cmd tea.Cmd
		model, cmd = model.Update(tea.KeyMsg{Type: tea.KeyTab})
		if cmd != nil {
			t.Error("expected no command from tab key")
		}
		if got := model.(dashboardModel).activePanel; got != panel {
			t.Errorf("after %d tabs: panel = %d, want %d", i+1, got, panel)
		}
	}
}

func TestDashboardModel_KeyShiftTab(t *testing.T) {
	m := newDashboardModel()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if cmd != nil {
		t.Error("expected no command from shift+tab")
	}
	if dm := updated.(dashboardModel); dm.activePanel != panelAlerts {
		t.Errorf("expected panel %d after shift+tab from 0, got %d", panelAlerts, dm.activePanel)
	}
}

func TestDashboardModel_KeyR(t *testing.T) {
	m := newDashboardModel()
	m.loading = false

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if !updated.(dashboardModel).loading {
		t.Error("expected loading = true after pressing r")
	}
	if cmd == nil {
		t.Error("expected a command (loadData) from r key")
	}
}

func TestDashboardModel_DataLoaded(t *testing.T) {
	m := newDashboardModel()

	updated, cmd := m.Update(dataLoadedMsg{
		notifications: []notificationSnapshot{{status: core.StatusOverdue, company: "Acme", kind: "Meeting"}},
		frequency:     []core.TypeCount{{Type: models.TypeEmail, Count: 3}},
		effectiveness: []core.TypeEffectiveness{{Type: models.TypeEmail, Effectiveness: 50}},
		activity:      []activitySnapshot{{company: "Acme", kind: "Email", status: "Completed"}},
		alerts:        []alertSnapshot{{severity: "high", message: "Meeting with Acme is 4 days overdue"}},
	})
	if cmd != nil {
		t.Error("expected no command after dataLoadedMsg")
	}

	dm := updated.(dashboardModel)
	if dm.loading || dm.err != nil {
		t.Fatalf("loading = %v, err = %v", dm.loading, dm.err)
	}
	if len(dm.notifications) != 1 || len(dm.frequency) != 1 || len(dm.effectiveness) != 1 || len(dm.activity) != 1 || len(dm.alerts) != 1 {
		t.Errorf("model = %+v", dm)
	}
}

func TestDashboardModel_DataLoadedError(t *testing.T) {
	m := newDashboardModel()

	updated, _ := m.Update(dataLoadedMsg{err: errors.New("store unavailable")})
	dm := updated.(dashboardModel)
	if dm.loading {
		t.Error("expected loading = false after error")
	}
	if dm.err == nil || dm.err.Error() != "store unavailable" {
		t.Errorf("err = %v", dm.err)
	}

	dm.width = 100
	if view := dm.View(); !strings.Contains(view, "Error: store unavailable") {
		t.Errorf("view = %q", view)
	}
}

func TestDashboardModel_WindowResize(t *testing.T) {
	m := newDashboardModel()

	updated, cmd := m.Update(tea.WindowSizeMsg{Width: 200, Height: 50})
	if cmd != nil {
		t.Error("expected no command from window resize")
	}
	dm := updated.(dashboardModel)
	if dm.width != 200 || dm.height != 50 {
		t.Errorf("size = %dx%d, want 200x50", dm.width, dm.height)
	}
}

func TestDashboardModel_ViewLoading(t *testing.T) {
	m := newDashboardModel()
	if view := m.View(); view != "Loading..." {
		t.Errorf("view before size = %q", view)
	}

	m.width = 100
	if view := m.View(); !strings.Contains(view, "Loading data") {
		t.Error("expected loading view to contain 'Loading data'")
	}
}

func TestDashboardModel_ViewWithData(t *testing.T) {
	for _, width := range []int{100, 160} {
		m := newDashboardModel()
		m.width = width
		m.loading = false
		m.notifications = []notificationSnapshot{{status: core.StatusDueToday, company: "Globex", kind: "Phone Call"}}
		m.frequency = []core.TypeCount{{Type: models.TypeEmail, Count: 2}}
		m.effectiveness = []core.TypeEffectiveness{{Type: models.TypeEmail, Effectiveness: 50}}
		m.alerts = []alertSnapshot{{severity: "medium", message: "Acme was last contacted 20 days ago"}}

		view := m.View()
		for _, want := range []string{"Needs attention", "TODAY", "Globex", "Frequency and effectiveness", "50.0%", "Recent activity", "No activity yet.", "Alerts", "[MEDIUM]"} {
			if !strings.Contains(view, want) {
				t.Errorf("width %d: view missing %q", width, want)
			}
		}
	}
}

func TestDashboardLoadData(t *testing.T) {
	setupCLI(t)
	acme := mustAddCompany(t, "Acme")
	mustLog(t, acme.ID, models.TypeEmail, "Successful")
	mustSchedule(t, acme.ID, models.TypeMeeting, cliNow.AddDate(0, 0, -2))
	mustSchedule(t, acme.ID, models.TypePhoneCall, cliNow)
	AlertEngine = &alertsMock{evaluateFn: func(now time.Time) []observability.Alert {
		return []observability.Alert{{Severity: observability.SeverityMedium, Message: "overdue"}}
	}}

	msg, ok := loadData().(dataLoadedMsg)
	if !ok {
		t.Fatalf("loadData returned %T", msg)
	}
	if msg.err != nil {
		t.Fatalf("err = %v", msg.err)
	}
	if len(msg.notifications) != 2 || msg.notifications[0].status != core.StatusOverdue {
		t.Errorf("notifications = %+v, want overdue first", msg.notifications)
	}
	if len(msg.activity) != 3 {
		t.Errorf("activity = %+v, want 3 entries", msg.activity)
	}
	if len(msg.alerts) != 1 || msg.alerts[0].severity != "medium" {
		t.Errorf("alerts = %+v", msg.alerts)
	}
	if len(msg.frequency) == 0 || len(msg.effectiveness) == 0 {
		t.Error("expected analytics rows")
	}
}

func TestDashboardLoadData_NoEngine(t *testing.T) {
	setupCLI(t)
	Engine = nil

	msg := loadData().(dataLoadedMsg)
	if msg.err == nil {
		t.Fatal("expected error without an engine")
	}
}

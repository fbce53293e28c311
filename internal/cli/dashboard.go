package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
)

// Dashboard panel indices.
const (
	panelNotifications = iota
	panelAnalytics
	panelActivity
	panelAlerts
	panelCount
)

// dashboardActivityLimit caps the activity panel.
const dashboardActivityLimit = 8

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	notifications []notificationSnapshot
	frequency     []core.TypeCount
	effectiveness []core.TypeEffectiveness
	activity      []activitySnapshot
	alerts        []alertSnapshot

	// State.
	loading bool
	err     error
}

type notificationSnapshot struct {
	status  core.Status
	company string
	kind    string
	when    string
}

type activitySnapshot struct {
	when    string
	company string
	kind    string
	status  string
}

type alertSnapshot struct {
	severity string
	message  string
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	notifications []notificationSnapshot
	frequency     []core.TypeCount
	effectiveness []core.TypeEffectiveness
	activity      []activitySnapshot
	alerts        []alertSnapshot
	err           error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("62")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	statusOverdue   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	statusDueToday  = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	statusCompleted = lipgloss.NewStyle().Foreground(lipgloss.Color("46"))
	statusScheduled = lipgloss.NewStyle().Foreground(lipgloss.Color("141"))

	severityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	severityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	severityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))

	barStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelNotifications,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.notifications = msg.notifications
		m.frequency = msg.frequency
		m.effectiveness = msg.effectiveness
		m.activity = msg.activity
		m.alerts = msg.alerts
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(fmt.Sprintf(" commtrack | %d notification(s) ", len(m.notifications)))
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	panels := []string{
		m.renderNotificationsPanel(),
		m.renderAnalyticsPanel(),
		m.renderActivityPanel(),
		m.renderAlertsPanel(),
	}

	availableWidth := m.width - 2

	var body string
	if availableWidth > 120 {
		// Two by two grid.
		colWidth := availableWidth/2 - 4
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], colWidth)
		}
		top := lipgloss.JoinHorizontal(lipgloss.Top, panels[panelNotifications], panels[panelAnalytics])
		bottom := lipgloss.JoinHorizontal(lipgloss.Top, panels[panelActivity], panels[panelAlerts])
		body = lipgloss.JoinVertical(lipgloss.Left, top, bottom)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		for i := range panels {
			panels[i] = m.applyPanelStyle(i, panels[i], panelWidth)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, panels...)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderNotificationsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Needs attention"))
	b.WriteString("\n")

	if len(m.notifications) == 0 {
		b.WriteString("  Nothing overdue or due today.")
		return b.String()
	}

	for _, n := range m.notifications {
		label := "OVERDUE"
		if n.status == core.StatusDueToday {
			label = "TODAY"
		}
		tag := styleForStatus(string(n.status)).Render(fmt.Sprintf("%-8s", label))
		b.WriteString(fmt.Sprintf("  %s %-22s %-16s %s\n", tag, n.company, n.kind, n.when))
	}
	return b.String()
}

func (m dashboardModel) renderAnalyticsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Frequency and effectiveness"))
	b.WriteString("\n")

	if len(m.frequency) == 0 && len(m.effectiveness) == 0 {
		b.WriteString("  No analytics available.")
		return b.String()
	}

	for _, f := range m.frequency {
		b.WriteString(fmt.Sprintf("  %-18s %3d %s\n", f.Type, f.Count, barStyle.Render(strings.Repeat("█", f.Count))))
	}
	b.WriteString("\n")
	for _, e := range m.effectiveness {
		b.WriteString(fmt.Sprintf("  %-18s %5.1f%%\n", e.Type, e.Effectiveness))
	}
	return b.String()
}

func (m dashboardModel) renderActivityPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Recent activity"))
	b.WriteString("\n")

	if len(m.activity) == 0 {
		b.WriteString("  No activity yet.")
		return b.String()
	}

	for _, a := range m.activity {
		status := styleForStatus(strings.ToLower(a.status)).Render(fmt.Sprintf("%-9s", a.status))
		b.WriteString(fmt.Sprintf("  %s %s %-22s %s\n", a.when, status, a.company, a.kind))
	}
	return b.String()
}

func (m dashboardModel) renderAlertsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Alerts"))
	b.WriteString("\n")

	if len(m.alerts) == 0 {
		b.WriteString("  No active alerts.")
		return b.String()
	}

	for _, a := range m.alerts {
		sev := styleForSeverity(a.severity).Render(fmt.Sprintf("[%s]", strings.ToUpper(a.severity)))
		b.WriteString(fmt.Sprintf("  %s %s\n", sev, a.message))
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d alert(s)", len(m.alerts)))

	return b.String()
}

func styleForStatus(status string) lipgloss.Style {
	switch status {
	case string(core.StatusOverdue):
		return statusOverdue
	case string(core.StatusDueToday):
		return statusDueToday
	case "completed":
		return statusCompleted
	case "scheduled":
		return statusScheduled
	default:
		return lipgloss.NewStyle()
	}
}

func styleForSeverity(severity string) lipgloss.Style {
	switch strings.ToLower(severity) {
	case "high":
		return severityHigh
	case "medium":
		return severityMedium
	case "low":
		return severityLow
	default:
		return lipgloss.NewStyle()
	}
}

func loadData() tea.Msg {
	if Engine == nil {
		return dataLoadedMsg{err: fmt.Errorf("engine not initialized")}
	}

	now := Engine.Now()
	result := dataLoadedMsg{
		frequency:     Engine.Analytics.FrequencyByType(core.Filter{}),
		effectiveness: Engine.Analytics.EffectivenessByType(core.Filter{}),
	}

	n := Engine.Notifications.CollectNotifications(now)
	for _, group := range [][]core.Notification{n.Overdue, n.DueToday} {
		for _, item := range group {
			result.notifications = append(result.notifications, notificationSnapshot{
				status:  item.Status,
				company: item.CompanyName,
				kind:    string(item.Type),
				when:    localTime(item.ScheduledDate),
			})
		}
	}

	activity := Engine.Analytics.ActivityLog()
	if len(activity) > dashboardActivityLimit {
		activity = activity[:dashboardActivityLimit]
	}
	for _, a := range activity {
		result.activity = append(result.activity, activitySnapshot{
			when:    a.Date.In(Engine.Location).Format(displayDate),
			company: a.CompanyName,
			kind:    string(a.Type),
			status:  string(a.Status),
		})
	}

	// Alerts arrive ordered by severity.
	if AlertEngine != nil {
		for _, a := range AlertEngine.Evaluate(now) {
			result.alerts = append(result.alerts, alertSnapshot{
				severity: string(a.Severity),
				message:  a.Message,
			})
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for notifications, analytics and alerts",
	Long: `Launch an interactive terminal dashboard showing communications that
need attention, frequency and effectiveness by type, recent activity and
active alerts.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

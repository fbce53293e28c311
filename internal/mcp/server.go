// Package mcp provides an MCP (Model Context Protocol) server that exposes
// commtrack functionality as MCP tools for AI assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/observability"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

// StateSync keeps the engine in step with persistent storage. Refresh
// reloads what other processes saved; Commit applies a mutation to the
// latest stored state and saves it, leaving the engine untouched on failure.
// *storage.Sync implements it.
type StateSync interface {
	Refresh() error
	Commit(mutate func() error) error
}

// Server wraps the commtrack engine and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	engine      *core.Engine
	state       StateSync
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over engine. state may be nil, in which
// case mutations only touch memory. metricsCalc and alertEngine may be nil if
// observability is disabled.
func NewServer(engine *core.Engine, state StateSync, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		engine:      engine,
		state:       state,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "commtrack", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type listCompaniesInput struct{}

type companyOutput struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Location        string   `json:"location"`
	LinkedInProfile string   `json:"linkedin_profile,omitempty"`
	Emails          []string `json:"emails"`
	PhoneNumbers    []string `json:"phone_numbers"`
	Comments        string   `json:"comments,omitempty"`
	PeriodicityDays int      `json:"periodicity_days"`
}

type listCompaniesOutput struct {
	Companies []companyOutput `json:"companies"`
	Count     int             `json:"count"`
}

type getCompanyInput struct {
	CompanyID string `json:"company_id" jsonschema:"the company identifier"`
}

type communicationOutput struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Type      string `json:"type"`
	Date      string `json:"date"`
	Notes     string `json:"notes,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Status    string `json:"status,omitempty"`
}

type companyDetailOutput struct {
	Company   companyOutput         `json:"company"`
	History   []communicationOutput `json:"history"`
	Scheduled []communicationOutput `json:"scheduled"`
}

type logCommunicationInput struct {
	CompanyIDs []string `json:"company_ids" jsonschema:"companies the communication was made with"`
	Type       string   `json:"type" jsonschema:"one of Email, LinkedIn Post, LinkedIn Message, Phone Call, Meeting, Other"`
	Timestamp  string   `json:"timestamp,omitempty" jsonschema:"when it happened (RFC 3339 or YYYY-MM-DD HH:MM). Defaults to now."`
	Notes      string   `json:"notes,omitempty" jsonschema:"free-form notes"`
	Outcome    string   `json:"outcome,omitempty" jsonschema:"outcome text. Outcomes containing 'success' count as successful."`
}

type scheduleCommunicationInput struct {
	CompanyIDs    []string `json:"company_ids" jsonschema:"companies to schedule the communication with"`
	Type          string   `json:"type" jsonschema:"one of Email, LinkedIn Post, LinkedIn Message, Phone Call, Meeting, Other"`
	ScheduledDate string   `json:"scheduled_date" jsonschema:"when it should happen (RFC 3339 or YYYY-MM-DD HH:MM)"`
	Notes         string   `json:"notes,omitempty" jsonschema:"free-form notes"`
}

type communicationsOutput struct {
	Communications []communicationOutput `json:"communications"`
	Count          int                   `json:"count"`
}

type completeCommunicationInput struct {
	ScheduleID string `json:"schedule_id" jsonschema:"the scheduled communication identifier"`
	Type       string `json:"type,omitempty" jsonschema:"actual type if it differs from the scheduled one"`
	Timestamp  string `json:"timestamp,omitempty" jsonschema:"when it happened. Defaults to now."`
	Notes      string `json:"notes,omitempty" jsonschema:"notes replacing the scheduled notes"`
	Outcome    string `json:"outcome,omitempty" jsonschema:"outcome text"`
}

type getNotificationsInput struct{}

type notificationOutput struct {
	ID            string `json:"id"`
	CompanyID     string `json:"company_id"`
	CompanyName   string `json:"company_name"`
	Type          string `json:"type"`
	ScheduledDate string `json:"scheduled_date"`
	Notes         string `json:"notes,omitempty"`
	DaysOverdue   int    `json:"days_overdue,omitempty"`
}

type notificationsOutput struct {
	Overdue  []notificationOutput `json:"overdue"`
	DueToday []notificationOutput `json:"due_today"`
	Total    int                  `json:"total"`
}

type getAnalyticsInput struct {
	CompanyID string `json:"company_id,omitempty" jsonschema:"restrict to one company. Omit or use 'all' for every company."`
	Start     string `json:"start,omitempty" jsonschema:"first day included in frequency counts (YYYY-MM-DD)"`
	End       string `json:"end,omitempty" jsonschema:"last day included in frequency counts (YYYY-MM-DD)"`
}

type typeCountOutput struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type effectivenessOutput struct {
	Type          string  `json:"type"`
	Successful    int     `json:"successful"`
	Total         int     `json:"total"`
	Effectiveness float64 `json:"effectiveness"`
}

type monthOutput struct {
	Month   string `json:"month"`
	Overdue int    `json:"overdue"`
}

type analyticsOutput struct {
	Frequency     []typeCountOutput     `json:"frequency"`
	Effectiveness []effectivenessOutput `json:"effectiveness"`
	OverdueTrend  []monthOutput         `json:"overdue_trend"`
}

type getActivityLogInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries, newest first. 0 returns all."`
}

type activityOutput struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	Notes       string `json:"notes,omitempty"`
	Outcome     string `json:"outcome,omitempty"`
}

type activityLogOutput struct {
	Entries []activityOutput `json:"entries"`
	Count   int              `json:"count"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	CompaniesAdded          int            `json:"companies_added"`
	CompaniesDeleted        int            `json:"companies_deleted"`
	CommunicationsLogged    int            `json:"communications_logged"`
	CommunicationsScheduled int            `json:"communications_scheduled"`
	CommunicationsCompleted int            `json:"communications_completed"`
	SuccessRate             float64        `json:"success_rate"`
	ByType                  map[string]int `json:"by_type"`
	ByCompany               map[string]int `json:"by_company" jsonschema:"contacts per company id"`
	MethodChanges           int            `json:"method_changes"`
	Warnings                int            `json:"warnings"`
	EventCount              int            `json:"event_count"`
	OldestEvent             string         `json:"oldest_event,omitempty"`
	NewestEvent             string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	CompanyID   string `json:"company_id,omitempty"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_companies",
		Description: "List every tracked company in insertion order.",
	}, s.handleListCompanies)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_company",
		Description: "Get a company with its communication history (newest first) and pending scheduled communications.",
	}, s.handleGetCompany)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "log_communication",
		Description: "Record a completed communication for one or more companies. All companies are logged or none.",
	}, s.handleLogCommunication)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "schedule_communication",
		Description: "Plan a future communication for one or more companies. All companies are scheduled or none.",
	}, s.handleScheduleCommunication)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "complete_communication",
		Description: "Mark a scheduled communication as done, moving it into the company's history.",
	}, s.handleCompleteCommunication)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_notifications",
		Description: "List overdue and due-today scheduled communications with the total badge count.",
	}, s.handleGetNotifications)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_analytics",
		Description: "Get communication frequency and effectiveness by type plus the monthly overdue trend.",
	}, s.handleGetAnalytics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_activity_log",
		Description: "Get the merged feed of completed and scheduled communications, newest first.",
	}, s.handleGetActivityLog)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log, including companies added and communications logged, scheduled and completed.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (overdue communications, communications due today, lapsed contact cadence).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleListCompanies(_ context.Context, _ *gomcp.CallToolRequest, _ listCompaniesInput) (*gomcp.CallToolResult, listCompaniesOutput, error) {
	if res := s.refresh(); res != nil {
		return res, listCompaniesOutput{Companies: []companyOutput{}}, nil
	}
	companies := s.engine.Registry.List()
	out := listCompaniesOutput{
		Companies: make([]companyOutput, len(companies)),
		Count:     len(companies),
	}
	for i, c := range companies {
		out.Companies[i] = companyToOutput(c)
	}
	return nil, out, nil
}

func (s *Server) handleGetCompany(_ context.Context, _ *gomcp.CallToolRequest, input getCompanyInput) (*gomcp.CallToolResult, companyDetailOutput, error) {
	if res := s.refresh(); res != nil {
		return res, emptyCompanyDetail(), nil
	}
	if input.CompanyID == "" {
		return errorResult("company_id is required"), emptyCompanyDetail(), nil
	}
	company, ok := s.engine.Registry.Lookup(input.CompanyID)
	if !ok {
		return errorResult(fmt.Sprintf("company %q not found", input.CompanyID)), emptyCompanyDetail(), nil
	}

	out := companyDetailOutput{
		Company:   companyToOutput(company),
		History:   []communicationOutput{},
		Scheduled: []communicationOutput{},
	}
	for _, e := range s.engine.Ledger.HistoryFor(company.ID) {
		out.History = append(out.History, loggedToOutput(e))
	}
	now := s.engine.Now()
	for _, item := range s.engine.Ledger.ScheduledAll() {
		if item.CompanyID == company.ID {
			out.Scheduled = append(out.Scheduled, scheduledToOutput(item, core.Classify(item.ScheduledDate, now, s.engine.Location)))
		}
	}
	return nil, out, nil
}

func (s *Server) handleLogCommunication(_ context.Context, _ *gomcp.CallToolRequest, input logCommunicationInput) (*gomcp.CallToolResult, communicationsOutput, error) {
	if len(input.CompanyIDs) == 0 {
		return errorResult("company_ids is required"), emptyCommunications(), nil
	}
	draft := core.LogDraft{
		Type:    models.CommunicationType(input.Type),
		Notes:   input.Notes,
		Outcome: input.Outcome,
	}
	if input.Timestamp != "" {
		ts, err := core.ParseInstant(input.Timestamp, s.engine.Location)
		if err != nil {
			return errorResult(err.Error()), emptyCommunications(), nil
		}
		draft.Timestamp = ts
	}

	var entries []models.LoggedCommunication
	if res := s.commit(func() error {
		if err := s.unknownCompany(input.CompanyIDs); err != nil {
			return err
		}
		var err error
		entries, err = s.engine.Ledger.LogMany(input.CompanyIDs, draft)
		return err
	}); res != nil {
		return res, emptyCommunications(), nil
	}

	out := communicationsOutput{Communications: make([]communicationOutput, len(entries)), Count: len(entries)}
	for i, e := range entries {
		out.Communications[i] = loggedToOutput(e)
	}
	return nil, out, nil
}

func (s *Server) handleScheduleCommunication(_ context.Context, _ *gomcp.CallToolRequest, input scheduleCommunicationInput) (*gomcp.CallToolResult, communicationsOutput, error) {
	if len(input.CompanyIDs) == 0 {
		return errorResult("company_ids is required"), emptyCommunications(), nil
	}
	date, err := core.ParseInstant(input.ScheduledDate, s.engine.Location)
	if err != nil {
		return errorResult(err.Error()), emptyCommunications(), nil
	}

	var items []models.ScheduledCommunication
	if res := s.commit(func() error {
		if err := s.unknownCompany(input.CompanyIDs); err != nil {
			return err
		}
		var err error
		items, err = s.engine.Ledger.ScheduleMany(input.CompanyIDs, core.ScheduleDraft{
			Type:          models.CommunicationType(input.Type),
			ScheduledDate: date,
			Notes:         input.Notes,
		})
		return err
	}); res != nil {
		return res, emptyCommunications(), nil
	}

	now := s.engine.Now()
	out := communicationsOutput{Communications: make([]communicationOutput, len(items)), Count: len(items)}
	for i, item := range items {
		out.Communications[i] = scheduledToOutput(item, core.Classify(item.ScheduledDate, now, s.engine.Location))
	}
	return nil, out, nil
}

func (s *Server) handleCompleteCommunication(_ context.Context, _ *gomcp.CallToolRequest, input completeCommunicationInput) (*gomcp.CallToolResult, communicationOutput, error) {
	if input.ScheduleID == "" {
		return errorResult("schedule_id is required"), communicationOutput{}, nil
	}

	completion := core.Completion{
		Type:    models.CommunicationType(input.Type),
		Notes:   input.Notes,
		Outcome: input.Outcome,
	}
	if input.Timestamp != "" {
		ts, err := core.ParseInstant(input.Timestamp, s.engine.Location)
		if err != nil {
			return errorResult(err.Error()), communicationOutput{}, nil
		}
		completion.Timestamp = ts
	}

	var entry models.LoggedCommunication
	if res := s.commit(func() error {
		var err error
		entry, err = s.engine.Ledger.MarkComplete(input.ScheduleID, completion)
		if err != nil {
			return fmt.Errorf("completing %s: %w", input.ScheduleID, err)
		}
		return nil
	}); res != nil {
		return res, communicationOutput{}, nil
	}
	return nil, loggedToOutput(entry), nil
}

func (s *Server) handleGetNotifications(_ context.Context, _ *gomcp.CallToolRequest, _ getNotificationsInput) (*gomcp.CallToolResult, notificationsOutput, error) {
	if res := s.refresh(); res != nil {
		return res, notificationsOutput{Overdue: []notificationOutput{}, DueToday: []notificationOutput{}}, nil
	}
	n := s.engine.Notifications.CollectNotifications(s.engine.Now())
	out := notificationsOutput{
		Overdue:  make([]notificationOutput, len(n.Overdue)),
		DueToday: make([]notificationOutput, len(n.DueToday)),
		Total:    n.Total,
	}
	for i, item := range n.Overdue {
		out.Overdue[i] = notificationToOutput(item)
	}
	for i, item := range n.DueToday {
		out.DueToday[i] = notificationToOutput(item)
	}
	return nil, out, nil
}

func (s *Server) handleGetAnalytics(_ context.Context, _ *gomcp.CallToolRequest, input getAnalyticsInput) (*gomcp.CallToolResult, analyticsOutput, error) {
	if res := s.refresh(); res != nil {
		return res, emptyAnalytics(), nil
	}
	filter := core.Filter{CompanyID: input.CompanyID}
	for _, bound := range []struct {
		raw string
		dst *time.Time
	}{{input.Start, &filter.Range.Start}, {input.End, &filter.Range.End}} {
		if bound.raw == "" {
			continue
		}
		t, err := core.ParseDateTime(bound.raw, "", s.engine.Location)
		if err != nil {
			return errorResult(err.Error()), emptyAnalytics(), nil
		}
		*bound.dst = t
	}

	a := s.engine.Analytics
	out := emptyAnalytics()
	for _, f := range a.FrequencyByType(filter) {
		out.Frequency = append(out.Frequency, typeCountOutput{Type: string(f.Type), Count: f.Count})
	}
	for _, e := range a.EffectivenessByType(filter) {
		out.Effectiveness = append(out.Effectiveness, effectivenessOutput{
			Type:          string(e.Type),
			Successful:    e.Successful,
			Total:         e.Total,
			Effectiveness: e.Effectiveness,
		})
	}
	for _, m := range a.OverdueTrend(filter, s.engine.Now()) {
		out.OverdueTrend = append(out.OverdueTrend, monthOutput{Month: m.Label, Overdue: m.Overdue})
	}
	return nil, out, nil
}

func (s *Server) handleGetActivityLog(_ context.Context, _ *gomcp.CallToolRequest, input getActivityLogInput) (*gomcp.CallToolResult, activityLogOutput, error) {
	if res := s.refresh(); res != nil {
		return res, activityLogOutput{Entries: []activityOutput{}}, nil
	}
	if input.Limit < 0 {
		return errorResult("limit must not be negative"), activityLogOutput{Entries: []activityOutput{}}, nil
	}

	entries := s.engine.Analytics.ActivityLog()
	if input.Limit > 0 && len(entries) > input.Limit {
		entries = entries[:input.Limit]
	}
	out := activityLogOutput{Entries: make([]activityOutput, len(entries)), Count: len(entries)}
	for i, e := range entries {
		out.Entries[i] = activityOutput{
			ID:          e.ID,
			Date:        e.Date.Format(time.RFC3339),
			CompanyID:   e.CompanyID,
			CompanyName: e.CompanyName,
			Type:        string(e.Type),
			Status:      string(e.Status),
			Notes:       e.Notes,
			Outcome:     e.Outcome,
		}
	}
	return nil, out, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr, time.Now().UTC())
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		CompaniesAdded:          metrics.CompaniesAdded,
		CompaniesDeleted:        metrics.CompaniesDeleted,
		CommunicationsLogged:    metrics.CommunicationsLogged,
		CommunicationsScheduled: metrics.CommunicationsScheduled,
		CommunicationsCompleted: metrics.CommunicationsCompleted,
		SuccessRate:             metrics.SuccessRate,
		ByType:                  metrics.ByType,
		ByCompany:               metrics.ByCompany,
		MethodChanges:           metrics.MethodChanges,
		Warnings:                metrics.Warnings,
		EventCount:              metrics.EventCount,
	}
	if out.ByType == nil {
		out.ByType = make(map[string]int)
	}
	if out.ByCompany == nil {
		out.ByCompany = make(map[string]int)
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if res := s.refresh(); res != nil {
		return res, getAlertsOutput{Alerts: []alertOutput{}}, nil
	}
	if s.alertEngine == nil {
		return errorResult("alert engine not available (observability may be disabled)"), getAlertsOutput{Alerts: []alertOutput{}}, nil
	}

	alerts := s.alertEngine.Evaluate(s.engine.Now())

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			CompanyID:   a.CompanyID,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

// commit runs mutate against the latest stored state and saves it. Any
// failure, from the mutation or the save, becomes a tool error.
func (s *Server) commit(mutate func() error) *gomcp.CallToolResult {
	var err error
	if s.state == nil {
		err = mutate()
	} else {
		err = s.state.Commit(mutate)
	}
	if err != nil {
		return errorResult(err.Error())
	}
	return nil
}

// refresh picks up changes saved by other commtrack processes.
func (s *Server) refresh() *gomcp.CallToolResult {
	if s.state == nil {
		return nil
	}
	if err := s.state.Refresh(); err != nil {
		return errorResult(fmt.Sprintf("reloading state: %s", err))
	}
	return nil
}

func (s *Server) unknownCompany(ids []string) error {
	for _, id := range ids {
		if _, ok := s.engine.Registry.Lookup(id); !ok {
			return fmt.Errorf("company %q not found", id)
		}
	}
	return nil
}

func companyToOutput(c models.Company) companyOutput {
	out := companyOutput{
		ID:              c.ID,
		Name:            c.Name,
		Location:        c.Location,
		LinkedInProfile: c.LinkedInProfile,
		Emails:          c.Emails,
		PhoneNumbers:    c.PhoneNumbers,
		Comments:        c.Comments,
		PeriodicityDays: c.CommunicationPeriodicity,
	}
	if out.Emails == nil {
		out.Emails = []string{}
	}
	if out.PhoneNumbers == nil {
		out.PhoneNumbers = []string{}
	}
	return out
}

func loggedToOutput(e models.LoggedCommunication) communicationOutput {
	return communicationOutput{
		ID:        e.ID,
		CompanyID: e.CompanyID,
		Type:      string(e.Type),
		Date:      e.Timestamp.Format(time.RFC3339),
		Notes:     e.Notes,
		Outcome:   e.Outcome,
		Status:    "completed",
	}
}

func scheduledToOutput(item models.ScheduledCommunication, status core.Status) communicationOutput {
	return communicationOutput{
		ID:        item.ID,
		CompanyID: item.CompanyID,
		Type:      string(item.Type),
		Date:      item.ScheduledDate.Format(time.RFC3339),
		Notes:     item.Notes,
		Status:    string(status),
	}
}

func notificationToOutput(n core.Notification) notificationOutput {
	return notificationOutput{
		ID:            n.ID,
		CompanyID:     n.CompanyID,
		CompanyName:   n.CompanyName,
		Type:          string(n.Type),
		ScheduledDate: n.ScheduledDate.Format(time.RFC3339),
		Notes:         n.Notes,
		DaysOverdue:   n.DaysOverdue,
	}
}

func emptyCompanyDetail() companyDetailOutput {
	return companyDetailOutput{
		Company:   companyOutput{Emails: []string{}, PhoneNumbers: []string{}},
		History:   []communicationOutput{},
		Scheduled: []communicationOutput{},
	}
}

func emptyCommunications() communicationsOutput {
	return communicationsOutput{Communications: []communicationOutput{}}
}

func emptyAnalytics() analyticsOutput {
	return analyticsOutput{
		Frequency:     []typeCountOutput{},
		Effectiveness: []effectivenessOutput{},
		OverdueTrend:  []monthOutput{},
	}
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{ByType: make(map[string]int), ByCompany: make(map[string]int)}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time before now.
func parseSince(s string, now time.Time) (time.Time, error) {
	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}

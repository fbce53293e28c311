// Package report renders analytics results as CSV and Markdown documents.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/valter-silva-au/commtrack/internal/core"
)

// Title heads every rendered report.
const Title = "Communication Analytics Report"

// Report bundles the analytics rows that go into an export.
type Report struct {
	Title         string
	GeneratedAt   time.Time
	Scope         string
	Frequency     []core.TypeCount
	Effectiveness []core.TypeEffectiveness
	Trend         []core.MonthCount
}

// Build collects frequency, effectiveness and overdue trend rows for filter.
func Build(analytics core.AnalyticsEngine, filter core.Filter, now time.Time) Report {
	return Report{
		Title:         Title,
		GeneratedAt:   now.UTC(),
		Scope:         describeFilter(filter),
		Frequency:     analytics.FrequencyByType(filter),
		Effectiveness: analytics.EffectivenessByType(filter),
		Trend:         analytics.OverdueTrend(filter, now),
	}
}

func describeFilter(f core.Filter) string {
	company := "all companies"
	if f.CompanyID != "" && f.CompanyID != core.AllCompanies {
		company = "company " + f.CompanyID
	}
	switch {
	case !f.Range.Start.IsZero() && !f.Range.End.IsZero():
		return fmt.Sprintf("%s, %s to %s", company, f.Range.Start.Format("2006-01-02"), f.Range.End.Format("2006-01-02"))
	case !f.Range.Start.IsZero():
		return fmt.Sprintf("%s, from %s", company, f.Range.Start.Format("2006-01-02"))
	case !f.Range.End.IsZero():
		return fmt.Sprintf("%s, until %s", company, f.Range.End.Format("2006-01-02"))
	}
	return company
}

// WriteCSV writes the frequency rows under a Type,Count header, then a blank
// line and the effectiveness rows under Type,Effectiveness (%) with one
// decimal place.
func WriteCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)

	rows := [][]string{{"Type", "Count"}}
	for _, f := range r.Frequency {
		rows = append(rows, []string{string(f.Type), strconv.Itoa(f.Count)})
	}
	rows = append(rows, nil, []string{"Type", "Effectiveness (%)"})
	for _, e := range r.Effectiveness {
		rows = append(rows, []string{string(e.Type), formatPercent(e.Effectiveness)})
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv report: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv report: %w", err)
	}
	return nil
}

var markdownTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"percent": formatPercent,
	"cell":    escapeCell,
}).Parse(`# {{.Title}}

Generated {{.GeneratedAt.Format "2006-01-02 15:04"}} UTC for {{.Scope}}.

## Communication Frequency

| Communication Type | Frequency |
|---|---|
{{range .Frequency}}| {{cell (print .Type)}} | {{.Count}} |
{{end}}
## Engagement Effectiveness

| Communication Type | Successful | Total | Effectiveness (%) |
|---|---|---|---|
{{range .Effectiveness}}| {{cell (print .Type)}} | {{.Successful}} | {{.Total}} | {{percent .Effectiveness}} |
{{end}}
## Overdue Trend

| Month | Overdue |
|---|---|
{{range .Trend}}| {{.Label}} | {{.Overdue}} |
{{end}}`))

// WriteMarkdown renders r as a Markdown document with one table per section.
func WriteMarkdown(w io.Writer, r Report) error {
	if err := markdownTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("rendering markdown report: %w", err)
	}
	return nil
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

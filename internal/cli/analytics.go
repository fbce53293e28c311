package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/internal/report"
)

var (
	analyticsCompany string
	analyticsFrom    string
	analyticsTo      string
	activityLimit    int
	exportFormat     string
	exportOutput     string
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Report on communication frequency, effectiveness and overdue trends",
}

var analyticsFrequencyCmd = &cobra.Command{
	Use:   "frequency",
	Short: "Count logged communications by type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := analyticsFilter()
		if err != nil {
			return err
		}

		rows := Engine.Analytics.FrequencyByType(filter)
		if outputJSON {
			return printJSON(out(cmd), rows)
		}
		w := out(cmd)
		fmt.Fprintf(w, "%-18s %s\n", "TYPE", "COUNT")
		for _, r := range rows {
			fmt.Fprintf(w, "%-18s %d\n", r.Type, r.Count)
		}
		return nil
	},
}

var analyticsEffectivenessCmd = &cobra.Command{
	Use:   "effectiveness",
	Short: "Show the share of successful outcomes per type",
	Long: `Show the share of successful outcomes per communication type. An outcome
counts as successful when it contains "success" in any case. The date range
flags are accepted but do not narrow this report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := analyticsFilter()
		if err != nil {
			return err
		}

		rows := Engine.Analytics.EffectivenessByType(filter)
		if outputJSON {
			return printJSON(out(cmd), rows)
		}
		w := out(cmd)
		fmt.Fprintf(w, "%-18s %-10s %-6s %s\n", "TYPE", "SUCCESSFUL", "TOTAL", "EFFECTIVENESS")
		for _, r := range rows {
			fmt.Fprintf(w, "%-18s %-10d %-6d %.1f%%\n", r.Type, r.Successful, r.Total, r.Effectiveness)
		}
		return nil
	},
}

var analyticsTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Count overdue scheduled communications per month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := analyticsFilter()
		if err != nil {
			return err
		}

		rows := Engine.Analytics.OverdueTrend(filter, Engine.Now())
		if outputJSON {
			return printJSON(out(cmd), rows)
		}
		w := out(cmd)
		fmt.Fprintf(w, "%-10s %s\n", "MONTH", "OVERDUE")
		for _, r := range rows {
			fmt.Fprintf(w, "%-10s %-4d %s\n", r.Label, r.Overdue, strings.Repeat("#", r.Overdue))
		}
		return nil
	},
}

var analyticsActivityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the merged feed of logged and scheduled communications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		entries := Engine.Analytics.ActivityLog()
		if activityLimit > 0 && len(entries) > activityLimit {
			entries = entries[:activityLimit]
		}
		if outputJSON {
			return printJSON(out(cmd), entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(out(cmd), "No activity yet.")
			return nil
		}

		w := out(cmd)
		fmt.Fprintf(w, "%-16s %-24s %-16s %-10s %s\n", "WHEN", "COMPANY", "TYPE", "STATUS", "NOTES")
		fmt.Fprintf(w, "%-16s %-24s %-16s %-10s %s\n", "----", "-------", "----", "------", "-----")
		for _, e := range entries {
			fmt.Fprintf(w, "%-16s %-24s %-16s %-10s %s\n", localTime(e.Date), e.CompanyName, e.Type, e.Status, e.Notes)
		}
		return nil
	},
}

var analyticsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the analytics report as CSV or Markdown",
	Long: `Export communication frequency, effectiveness and the overdue trend.

--format csv writes the frequency and effectiveness tables; --format markdown
writes all three sections. Without --output the report goes to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := analyticsFilter()
		if err != nil {
			return err
		}

		var write func(io.Writer, report.Report) error
		switch strings.ToLower(exportFormat) {
		case "csv":
			write = report.WriteCSV
		case "markdown", "md":
			write = report.WriteMarkdown
		default:
			return fmt.Errorf("unsupported --format %q (use csv or markdown)", exportFormat)
		}

		r := report.Build(Engine.Analytics, filter, Engine.Now())
		if exportOutput == "" {
			return write(out(cmd), r)
		}

		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportOutput, err)
		}
		if err := write(f, r); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("closing %s: %w", exportOutput, err)
		}
		fmt.Fprintf(out(cmd), "Report written to %s\n", exportOutput)
		return nil
	},
}

func analyticsFilter() (core.Filter, error) {
	if err := requireEngine(); err != nil {
		return core.Filter{}, err
	}
	r, err := parseRangeFlags(analyticsFrom, analyticsTo)
	if err != nil {
		return core.Filter{}, err
	}
	if analyticsCompany != "" && analyticsCompany != core.AllCompanies {
		if _, ok := Engine.Registry.Lookup(analyticsCompany); !ok {
			return core.Filter{}, fmt.Errorf("company %q not found", analyticsCompany)
		}
	}
	return core.Filter{CompanyID: analyticsCompany, Range: r}, nil
}

func init() {
	for _, c := range []*cobra.Command{analyticsFrequencyCmd, analyticsEffectivenessCmd, analyticsTrendCmd, analyticsExportCmd} {
		c.Flags().StringVar(&analyticsCompany, "company", "", "Only include this company (default all)")
		c.Flags().StringVar(&analyticsFrom, "from", "", "First day to include (YYYY-MM-DD)")
		c.Flags().StringVar(&analyticsTo, "to", "", "Last day to include (YYYY-MM-DD)")
	}
	analyticsActivityCmd.Flags().IntVar(&activityLimit, "limit", 0, "Show at most this many entries (0 for all)")
	analyticsExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Report format: csv or markdown")
	analyticsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write the report to this file")

	analyticsCmd.AddCommand(analyticsFrequencyCmd, analyticsEffectivenessCmd, analyticsTrendCmd,
		analyticsActivityCmd, analyticsExportCmd)
	rootCmd.AddCommand(analyticsCmd)
}

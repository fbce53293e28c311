package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
)

var overviewNoHighlight bool

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show every company with its recent and next communication",
	Long: `Show one row per company with its five most recent communications and
the earliest pending one. The pending item is flagged as overdue or due today
unless --no-highlight is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		rows := Engine.Analytics.CompanyOverview(Engine.Now(), !overviewNoHighlight)
		if outputJSON {
			return printJSON(out(cmd), rows)
		}
		if len(rows) == 0 {
			fmt.Fprintln(out(cmd), "No companies registered.")
			return nil
		}

		w := out(cmd)
		for _, row := range rows {
			fmt.Fprintf(w, "%s (%s)\n", row.Company.Name, row.Company.Location)
			recent := make([]string, 0, len(row.Recent))
			for _, e := range row.Recent {
				recent = append(recent, fmt.Sprintf("%s %s", e.Type, e.Timestamp.In(Engine.Location).Format(displayDate)))
			}
			fmt.Fprintf(w, "  %-8s %s\n", "Recent:", orDash(strings.Join(recent, "; ")))

			next := "-"
			if row.Next != nil {
				next = fmt.Sprintf("%s %s", row.Next.Type, localTime(row.Next.ScheduledDate))
				switch row.Highlight {
				case core.StatusOverdue:
					next += "  [OVERDUE]"
				case core.StatusDueToday:
					next += "  [DUE TODAY]"
				}
			}
			fmt.Fprintf(w, "  %-8s %s\n", "Next:", next)
		}
		return nil
	},
}

var (
	calendarFrom string
	calendarTo   string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "List logged and scheduled communications in date order",
	Long: `List past and upcoming communications as calendar events, ordered by
start time. --from and --to limit the listing to a range of days.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		window, err := parseRangeFlags(calendarFrom, calendarTo)
		if err != nil {
			return err
		}

		events := Engine.Analytics.CalendarEvents(window)
		if outputJSON {
			return printJSON(out(cmd), events)
		}
		if len(events) == 0 {
			fmt.Fprintln(out(cmd), "No events in range.")
			return nil
		}

		w := out(cmd)
		day := ""
		for _, e := range events {
			start := e.Start.In(Engine.Location)
			if d := start.Format("Mon 2006-01-02"); d != day {
				if day != "" {
					fmt.Fprintln(w)
				}
				day = d
				fmt.Fprintln(w, d)
			}
			fmt.Fprintf(w, "  %s  %-10s %s\n", start.Format("15:04"), e.Status, e.Title)
		}
		return nil
	},
}

func init() {
	overviewCmd.Flags().BoolVar(&overviewNoHighlight, "no-highlight", false, "Do not flag overdue and due-today items")
	calendarCmd.Flags().StringVar(&calendarFrom, "from", "", "First day to include (YYYY-MM-DD)")
	calendarCmd.Flags().StringVar(&calendarTo, "to", "", "Last day to include (YYYY-MM-DD)")
	rootCmd.AddCommand(overviewCmd, calendarCmd)
}

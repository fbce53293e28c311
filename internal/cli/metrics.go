package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/observability"
)

var (
	metricsSince   string
	metricsCompany string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display activity metrics from the event log",
	Long: `Display aggregated metrics derived from the event log.

Metrics include companies added and deleted, communications logged,
scheduled, rescheduled and completed, the success rate of completed
outreach, and breakdowns by communication type and by company.

With --company the communication timeline of that company is shown instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sinceTime, err := parseSinceDuration(metricsSince, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}
		if metricsCompany != "" {
			return printCompanyTimeline(cmd, metricsCompany, sinceTime)
		}

		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized")
		}

		metrics, err := MetricsCalc.Calculate(sinceTime)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		if outputJSON {
			return printJSON(out(cmd), metrics)
		}

		w := out(cmd)
		fmt.Fprintf(w, "Metrics (since %s)\n\n", sinceTime.Format("2006-01-02"))
		fmt.Fprintf(w, "  %-26s %d\n", "Events recorded:", metrics.EventCount)
		fmt.Fprintf(w, "  %-26s %d\n", "Companies added:", metrics.CompaniesAdded)
		fmt.Fprintf(w, "  %-26s %d\n", "Companies deleted:", metrics.CompaniesDeleted)
		fmt.Fprintf(w, "  %-26s %d\n", "Communications logged:", metrics.CommunicationsLogged)
		fmt.Fprintf(w, "  %-26s %d\n", "Communications scheduled:", metrics.CommunicationsScheduled)
		fmt.Fprintf(w, "  %-26s %d\n", "Communications completed:", metrics.CommunicationsCompleted)
		fmt.Fprintf(w, "  %-26s %d\n", "Rescheduled:", metrics.Rescheduled)
		fmt.Fprintf(w, "  %-26s %d\n", "Cancelled:", metrics.Unscheduled)
		fmt.Fprintf(w, "  %-26s %d\n", "Method changes:", metrics.MethodChanges)
		fmt.Fprintf(w, "  %-26s %d\n", "Warnings:", metrics.Warnings)
		fmt.Fprintf(w, "  %-26s %.1f%%\n", "Success rate:", metrics.SuccessRate)

		if len(metrics.ByType) > 0 {
			fmt.Fprintln(w, "\n  By type:")
			types := make([]string, 0, len(metrics.ByType))
			for t := range metrics.ByType {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Fprintf(w, "    %-22s %d\n", t+":", metrics.ByType[t])
			}
		}

		if len(metrics.ByCompany) > 0 {
			fmt.Fprintln(w, "\n  Contacts by company:")
			ids := make([]string, 0, len(metrics.ByCompany))
			for id := range metrics.ByCompany {
				ids = append(ids, id)
			}
			sort.Slice(ids, func(i, j int) bool {
				if metrics.ByCompany[ids[i]] != metrics.ByCompany[ids[j]] {
					return metrics.ByCompany[ids[i]] > metrics.ByCompany[ids[j]]
				}
				return ids[i] < ids[j]
			})
			for _, id := range ids {
				fmt.Fprintf(w, "    %-22s %d\n", companyLabel(id)+":", metrics.ByCompany[id])
			}
		}

		if metrics.OldestEvent != nil {
			fmt.Fprintf(w, "\n  %-26s %s\n", "Oldest event:", metrics.OldestEvent.Format(time.RFC3339))
		}
		if metrics.NewestEvent != nil {
			fmt.Fprintf(w, "  %-26s %s\n", "Newest event:", metrics.NewestEvent.Format(time.RFC3339))
		}

		return nil
	},
}

// printCompanyTimeline lists the communication events recorded for one
// company since the given time, oldest first.
func printCompanyTimeline(cmd *cobra.Command, companyID string, since time.Time) error {
	if EventLog == nil {
		return fmt.Errorf("event log not initialized")
	}
	events, err := EventLog.Read(observability.EventFilter{
		Since:     &since,
		Category:  observability.CategoryCommunication,
		CompanyID: companyID,
	})
	if err != nil {
		return fmt.Errorf("reading events for %s: %w", companyID, err)
	}

	if outputJSON {
		if events == nil {
			events = []observability.Event{}
		}
		return printJSON(out(cmd), events)
	}

	w := out(cmd)
	if len(events) == 0 {
		fmt.Fprintf(w, "No communication events for %s since %s.\n", companyLabel(companyID), since.Format("2006-01-02"))
		return nil
	}
	loc := time.UTC
	if Engine != nil {
		loc = Engine.Location
	}
	fmt.Fprintf(w, "Timeline for %s (since %s)\n\n", companyLabel(companyID), since.Format("2006-01-02"))
	for _, e := range events {
		action := strings.TrimPrefix(e.Type, observability.CategoryCommunication+".")
		line := fmt.Sprintf("  %s  %-12s %s", e.Time.In(loc).Format("2006-01-02 "+displayClock), action, e.CommunicationType())
		if e.IsContact() {
			if e.Successful() {
				line += " (successful)"
			} else {
				line += " (no response)"
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line, " "))
	}
	return nil
}

// companyLabel names a company by its current name, falling back to the id
// for companies that were deleted since.
func companyLabel(id string) string {
	if Engine != nil {
		if c, ok := Engine.Registry.Lookup(id); ok {
			return c.Name
		}
	}
	return id
}

// parseSinceDuration parses a human-friendly duration string like "7d", "30d",
// or "24h" and returns the corresponding time before now.
func parseSinceDuration(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.AddDate(0, 0, -7), nil
	}

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days < 0 {
			return time.Time{}, fmt.Errorf("invalid day duration %q", s)
		}
		return now.AddDate(0, 0, -days), nil
	}

	if strings.HasSuffix(s, "h") {
		hours, err := strconv.Atoi(strings.TrimSuffix(s, "h"))
		if err != nil || hours < 0 {
			return time.Time{}, fmt.Errorf("invalid hour duration %q", s)
		}
		return now.Add(-time.Duration(hours) * time.Hour), nil
	}

	return time.Time{}, fmt.Errorf("unsupported duration format %q (use e.g. 7d, 30d, 24h)", s)
}

func init() {
	metricsCmd.Flags().StringVar(&metricsSince, "since", "7d", "Time window for metrics (e.g. 7d, 30d, 24h)")
	metricsCmd.Flags().StringVar(&metricsCompany, "company", "", "Show the communication timeline of this company id")
	rootCmd.AddCommand(metricsCmd)
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

var (
	commCompanies string
	commType      string
	commDate      string
	commTime      string
	commNotes     string
	commOutcome   string
)

var commCmd = &cobra.Command{
	Use:     "comm",
	Aliases: []string{"communication"},
	Short:   "Log, schedule and complete communications",
	Long: `Record outreach to companies.

Communication types: Email, LinkedIn Post, LinkedIn Message, Phone Call,
Meeting, Other. Dates are YYYY-MM-DD and times HH:MM in the configured
time zone.`,
}

var commLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a completed communication for one or more companies",
	Long: `Log a communication that already happened. --company accepts a
comma-separated list of company IDs; the same entry is added to each
company's history. Without --date the current time is used.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		ids, err := companyIDsFlag()
		if err != nil {
			return err
		}
		ts, err := parseDateFlags(commDate, commTime)
		if err != nil {
			return err
		}

		var entries []models.LoggedCommunication
		err = commit(func() error {
			var err error
			entries, err = Engine.Ledger.LogMany(ids, core.LogDraft{
				Type:      models.CommunicationType(commType),
				Timestamp: ts,
				Notes:     commNotes,
				Outcome:   commOutcome,
			})
			return err
		})
		if err != nil {
			return err
		}

		if outputJSON {
			return printJSON(out(cmd), entries)
		}
		for _, e := range entries {
			fmt.Fprintf(out(cmd), "Logged %s with %s at %s (%s)\n",
				e.Type, Engine.Registry.Get(e.CompanyID).Name, localTime(e.Timestamp), e.ID)
		}
		return nil
	},
}

var commScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Schedule a communication for one or more companies",
	Long: `Plan a communication. --company accepts a comma-separated list of
company IDs and --date is required. Dates in the past are accepted and
show up as overdue.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		ids, err := companyIDsFlag()
		if err != nil {
			return err
		}
		if strings.TrimSpace(commDate) == "" {
			return fmt.Errorf("--date is required when scheduling")
		}
		when, err := parseDateFlags(commDate, commTime)
		if err != nil {
			return err
		}

		var items []models.ScheduledCommunication
		err = commit(func() error {
			var err error
			items, err = Engine.Ledger.ScheduleMany(ids, core.ScheduleDraft{
				Type:          models.CommunicationType(commType),
				ScheduledDate: when,
				Notes:         commNotes,
			})
			return err
		})
		if err != nil {
			return err
		}

		if outputJSON {
			return printJSON(out(cmd), items)
		}
		now := Engine.Now()
		for _, item := range items {
			fmt.Fprintf(out(cmd), "Scheduled %s with %s for %s [%s] (%s)\n",
				item.Type, Engine.Registry.Get(item.CompanyID).Name, localTime(item.ScheduledDate),
				core.Classify(item.ScheduledDate, now, Engine.Location), item.ID)
		}
		return nil
	},
}

var commEditCmd = &cobra.Command{
	Use:   "edit <schedule-id>",
	Short: "Change the type, date or notes of a scheduled communication",
	Long: `Edit a pending communication. Only the flags given change. --time
without --date keeps the scheduled day and moves the time of day; --date
without --time keeps the time of day.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		var item models.ScheduledCommunication
		err := commit(func() error {
			var ok bool
			item, ok = findScheduled(args[0])
			if !ok {
				return fmt.Errorf("scheduled communication %q not found", args[0])
			}

			flags := cmd.Flags()
			if flags.Changed("type") {
				item.Type = models.CommunicationType(commType)
			}
			if flags.Changed("notes") {
				item.Notes = commNotes
			}
			if flags.Changed("date") || flags.Changed("time") {
				current := item.ScheduledDate.In(Engine.Location)
				date, clock := commDate, commTime
				if !flags.Changed("date") {
					date = current.Format(displayDate)
				}
				if !flags.Changed("time") {
					clock = current.Format(displayClock)
				}
				when, err := core.ParseDateTime(date, clock, Engine.Location)
				if err != nil {
					return err
				}
				item.ScheduledDate = when
			}
			return Engine.Ledger.UpdateScheduled(item)
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Updated %s: %s on %s\n", item.ID, item.Type, localTime(item.ScheduledDate))
		return nil
	},
}

var commCompleteCmd = &cobra.Command{
	Use:   "complete <schedule-id>",
	Short: "Mark a scheduled communication as done",
	Long: `Move a scheduled communication into its company's history. --type and
--notes default to the scheduled values; --date defaults to now.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		ts, err := parseDateFlags(commDate, commTime)
		if err != nil {
			return err
		}

		var entry models.LoggedCommunication
		err = commit(func() error {
			var err error
			entry, err = Engine.Ledger.MarkComplete(args[0], core.Completion{
				Type:      models.CommunicationType(commType),
				Timestamp: ts,
				Notes:     commNotes,
				Outcome:   commOutcome,
			})
			return err
		})
		if err != nil {
			return err
		}

		if outputJSON {
			return printJSON(out(cmd), entry)
		}
		fmt.Fprintf(out(cmd), "Completed %s with %s at %s (%s)\n",
			entry.Type, Engine.Registry.Get(entry.CompanyID).Name, localTime(entry.Timestamp), entry.ID)
		return nil
	},
}

var commDeleteCmd = &cobra.Command{
	Use:   "delete <schedule-id>",
	Short: "Cancel a scheduled communication",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}
		err := commit(func() error {
			if !Engine.Ledger.DeleteScheduled(args[0]) {
				return errUnchanged
			}
			return nil
		})
		if errors.Is(err, errUnchanged) {
			fmt.Fprintf(out(cmd), "Scheduled communication %s does not exist, nothing to delete.\n", args[0])
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Deleted scheduled communication %s\n", args[0])
		return nil
	},
}

var commHistoryCmd = &cobra.Command{
	Use:   "history <company-id>",
	Short: "Show a company's communication history, newest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		history := Engine.Ledger.HistoryFor(args[0])
		if outputJSON {
			return printJSON(out(cmd), history)
		}
		if len(history) == 0 {
			fmt.Fprintf(out(cmd), "No communications logged for %s.\n", Engine.Registry.Get(args[0]).Name)
			return nil
		}

		w := out(cmd)
		fmt.Fprintf(w, "%-16s %-16s %-30s %s\n", "WHEN", "TYPE", "OUTCOME", "NOTES")
		fmt.Fprintf(w, "%-16s %-16s %-30s %s\n", "----", "----", "-------", "-----")
		for _, e := range history {
			fmt.Fprintf(w, "%-16s %-16s %-30s %s\n", localTime(e.Timestamp), e.Type, orDash(e.Outcome), e.Notes)
		}
		return nil
	},
}

var commScheduledCmd = &cobra.Command{
	Use:   "scheduled",
	Short: "List pending communications with their status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		var items []models.ScheduledCommunication
		for _, item := range Engine.Ledger.ScheduledAll() {
			if commCompanies == "" || item.CompanyID == commCompanies {
				items = append(items, item)
			}
		}
		if outputJSON {
			if items == nil {
				items = []models.ScheduledCommunication{}
			}
			return printJSON(out(cmd), items)
		}
		if len(items) == 0 {
			fmt.Fprintln(out(cmd), "Nothing scheduled.")
			return nil
		}

		now := Engine.Now()
		w := out(cmd)
		fmt.Fprintf(w, "%-38s %-24s %-16s %-16s %-10s %s\n", "ID", "COMPANY", "TYPE", "WHEN", "STATUS", "NOTES")
		fmt.Fprintf(w, "%-38s %-24s %-16s %-16s %-10s %s\n", "--", "-------", "----", "----", "------", "-----")
		for _, item := range items {
			fmt.Fprintf(w, "%-38s %-24s %-16s %-16s %-10s %s\n",
				item.ID, Engine.Registry.Get(item.CompanyID).Name, item.Type, localTime(item.ScheduledDate),
				core.Classify(item.ScheduledDate, now, Engine.Location), item.Notes)
		}
		return nil
	},
}

// companyIDsFlag splits --company and checks every ID is registered.
func companyIDsFlag() ([]string, error) {
	ids := core.SplitList(commCompanies)
	if len(ids) == 0 {
		return nil, fmt.Errorf("--company is required")
	}
	var unknown []string
	for _, id := range ids {
		if _, ok := Engine.Registry.Lookup(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown company: %s", strings.Join(unknown, ", "))
	}
	return ids, nil
}

func findScheduled(id string) (models.ScheduledCommunication, bool) {
	for _, item := range Engine.Ledger.ScheduledAll() {
		if item.ID == id {
			return item, true
		}
	}
	return models.ScheduledCommunication{}, false
}

func init() {
	for _, c := range []*cobra.Command{commLogCmd, commScheduleCmd} {
		c.Flags().StringVar(&commCompanies, "company", "", "Comma-separated company IDs")
	}
	commScheduledCmd.Flags().StringVar(&commCompanies, "company", "", "Only show this company's items")

	for _, c := range []*cobra.Command{commLogCmd, commScheduleCmd, commEditCmd, commCompleteCmd} {
		c.Flags().StringVar(&commType, "type", "", "Communication type (e.g. Email, \"Phone Call\")")
		c.Flags().StringVar(&commDate, "date", "", "Date as YYYY-MM-DD")
		c.Flags().StringVar(&commTime, "time", "", "Time of day as HH:MM")
		c.Flags().StringVar(&commNotes, "notes", "", "Notes")
	}
	for _, c := range []*cobra.Command{commLogCmd, commCompleteCmd} {
		c.Flags().StringVar(&commOutcome, "outcome", "", "Outcome; containing \"success\" counts as successful")
	}
	_ = commLogCmd.MarkFlagRequired("type")
	_ = commScheduleCmd.MarkFlagRequired("type")

	commCmd.AddCommand(commLogCmd, commScheduleCmd, commEditCmd, commCompleteCmd,
		commDeleteCmd, commHistoryCmd, commScheduledCmd)
	rootCmd.AddCommand(commCmd)
}

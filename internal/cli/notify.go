package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
)

var notifyCmd = &cobra.Command{
	Use:     "notify",
	Aliases: []string{"notifications"},
	Short:   "Show overdue and due-today communications",
	Long: `List scheduled communications that need attention: overdue ones first,
then those due today. Calendar days are computed in the configured time zone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		n := Engine.Notifications.CollectNotifications(Engine.Now())
		if outputJSON {
			return printJSON(out(cmd), n)
		}
		if n.Total == 0 {
			fmt.Fprintln(out(cmd), "Nothing overdue or due today.")
			return nil
		}

		w := out(cmd)
		fmt.Fprintf(w, "%d communication(s) need attention\n", n.Total)
		printNotificationGroup(w, "OVERDUE", n.Overdue)
		printNotificationGroup(w, "DUE TODAY", n.DueToday)
		return nil
	},
}

func printNotificationGroup(w io.Writer, heading string, items []core.Notification) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n== %s (%d) ==\n", heading, len(items))
	for _, n := range items {
		late := ""
		if n.DaysOverdue > 0 {
			late = fmt.Sprintf(" (%dd late)", n.DaysOverdue)
		}
		fmt.Fprintf(w, "  %-24s %-16s %s%s  %s\n", n.CompanyName, n.Type, localTime(n.ScheduledDate), late, n.ID)
		if n.Notes != "" {
			fmt.Fprintf(w, "    %s\n", n.Notes)
		}
	}
}

func init() {
	rootCmd.AddCommand(notifyCmd)
}

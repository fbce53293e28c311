package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var alertsNotify bool

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show active alerts and warnings",
	Long: `Evaluate alert conditions against the current state and display any
triggered alerts, most severe first.

Alerts cover overdue communications, communications due today, and companies
whose contact cadence has lapsed with nothing scheduled. With --notify a
digest of the same follow-ups is also posted to the configured Slack webhook.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if AlertEngine == nil {
			return fmt.Errorf("alert engine not initialized")
		}
		if err := requireEngine(); err != nil {
			return err
		}

		now := Engine.Now()
		alerts := AlertEngine.Evaluate(now)

		sent := false
		if alertsNotify {
			if digest := AlertEngine.Digest(now); !digest.Empty() {
				if Notifier == nil {
					return fmt.Errorf("notifications are not configured (set notifications.enabled and notifications.slack.webhook_url)")
				}
				if err := Notifier.Notify(digest); err != nil {
					return fmt.Errorf("sending follow-up digest: %w", err)
				}
				sent = true
			}
		}

		if outputJSON {
			return printJSON(out(cmd), alerts)
		}

		w := out(cmd)
		if len(alerts) == 0 {
			fmt.Fprintln(w, "No active alerts.")
			return nil
		}

		fmt.Fprintf(w, "%d active alert(s):\n\n", len(alerts))
		for _, alert := range alerts {
			severity := strings.ToUpper(string(alert.Severity))
			fmt.Fprintf(w, "  [%s] %s\n", severity, alert.Message)
			fmt.Fprintf(w, "         triggered at %s\n\n", alert.TriggeredAt.UTC().Format("2006-01-02 15:04 UTC"))
		}
		if sent {
			fmt.Fprintln(w, "Digest sent to Slack.")
		}
		return nil
	},
}

func init() {
	alertsCmd.Flags().BoolVar(&alertsNotify, "notify", false, "Post a follow-up digest to Slack")
	rootCmd.AddCommand(alertsCmd)
}

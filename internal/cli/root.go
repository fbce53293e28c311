package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

// outputJSON switches tabular commands to JSON output.
var outputJSON bool

var rootCmd = &cobra.Command{
	Use:   "commtrack",
	Short: "Track outreach to companies and report on it",
	Long: `commtrack keeps a registry of companies, the communications logged with
each of them, and the communications scheduled for the future.

It classifies scheduled communications as overdue, due today or upcoming,
raises notifications and alerts for the ones that need attention, and
reports communication frequency, effectiveness and overdue trends.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "commtrack %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

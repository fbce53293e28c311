package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
	"github.com/valter-silva-au/commtrack/pkg/models"
)

// WorkspaceInit is the WorkspaceInitializer used by the init command.
// Set during application wiring.
var WorkspaceInit core.WorkspaceInitializer

var (
	initTimeZone    string
	initBackend     string
	initPeriodicity int
	initOverdueDays int
	initWebhook     string
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a commtrack workspace",
	Long: `Write .commtrack.yaml and a .gitignore for the local state files into
the given directory (default: the current directory).

Safe to run on existing workspaces: files that already exist are skipped and
not overwritten. Giving --slack-webhook turns Slack notifications on.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if WorkspaceInit == nil {
			return fmt.Errorf("workspace initializer not initialized")
		}

		basePath := "."
		if len(args) > 0 {
			basePath = args[0]
		}
		absPath, err := filepath.Abs(basePath)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}

		result, err := WorkspaceInit.Init(core.InitConfig{
			BasePath:        absPath,
			TimeZone:        initTimeZone,
			Backend:         models.StorageBackend(initBackend),
			PeriodicityDays: initPeriodicity,
			OverdueDays:     initOverdueDays,
			SlackWebhookURL: initWebhook,
		})
		if err != nil {
			return fmt.Errorf("initializing workspace: %w", err)
		}

		w := out(cmd)
		if len(result.Created) > 0 {
			fmt.Fprintln(w, "Created:")
			for _, p := range result.Created {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(w, "  %s\n", rel)
			}
		}
		if len(result.Skipped) > 0 {
			fmt.Fprintln(w, "Skipped (already exist):")
			for _, p := range result.Skipped {
				rel, _ := filepath.Rel(absPath, p)
				fmt.Fprintf(w, "  %s\n", rel)
			}
		}

		fmt.Fprintf(w, "\nWorkspace initialized at %s\n", absPath)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initTimeZone, "time-zone", "Local", "IANA time zone used for calendar days")
	initCmd.Flags().StringVar(&initBackend, "backend", string(models.BackendYAML), "Storage backend: yaml, sqlite or redis")
	initCmd.Flags().IntVar(&initPeriodicity, "periodicity", models.DefaultCommunicationPeriodicity, "Default days between expected contacts")
	initCmd.Flags().IntVar(&initOverdueDays, "overdue-days", 7, "Days overdue before an alert becomes high severity")
	initCmd.Flags().StringVar(&initWebhook, "slack-webhook", "", "Slack incoming webhook URL for alerts")
	rootCmd.AddCommand(initCmd)
}

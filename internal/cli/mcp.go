package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	ctmcp "github.com/valter-silva-au/commtrack/internal/mcp"
	"github.com/valter-silva-au/commtrack/internal/storage"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the commtrack MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the commtrack MCP server on stdio",
	Long: `Start the commtrack MCP server on stdio transport.

The server exposes commtrack as MCP tools that AI assistants can call:
list_companies, get_company, log_communication, schedule_communication,
complete_communication, get_notifications, get_analytics, get_activity_log,
get_metrics and get_alerts. Mutations are saved through the configured
storage backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		srv := ctmcp.NewServer(Engine, storage.NewSync(Store, Engine), MetricsCalc, AlertEngine, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

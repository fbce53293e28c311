package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valter-silva-au/commtrack/internal/core"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo data set",
	Long: `Replace the current state with three demo companies, their recent
communication history and one pending communication each.

Refuses to overwrite existing data unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireEngine(); err != nil {
			return err
		}

		seed := core.SeedSnapshot()
		err := commit(func() error {
			snap := Engine.Snapshot()
			hasData := len(snap.Companies) > 0 || len(snap.Scheduled) > 0
			for _, entries := range snap.History {
				hasData = hasData || len(entries) > 0
			}
			if hasData && !seedForce {
				return fmt.Errorf("state is not empty; use --force to replace it with demo data")
			}
			if err := Engine.Restore(seed); err != nil {
				return fmt.Errorf("loading demo data: %w", err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Loaded demo data: %d companies, %d scheduled communications\n",
			len(seed.Companies), len(seed.Scheduled))
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "Replace existing data")
	rootCmd.AddCommand(seedCmd)
}

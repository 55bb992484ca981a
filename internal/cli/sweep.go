package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/engine"
)

// sweepCmd drops expired branch memories.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Drop branch memories past their expiry",
	Long: `Drop the tabs of every branch whose expiry has passed. The daemon does this
once on startup; run it by hand to prune without starting the daemon.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		result, err := eng.Sweep(context.Background(), &engine.SweepRequest{CWD: cwd})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if len(result.Swept) == 0 {
			PrintInfo("Nothing expired.")
			return nil
		}
		PrintSuccess(fmt.Sprintf("Swept %s", PrintCount(len(result.Swept), "branch", "branches")))
		for _, branch := range result.Swept {
			PrintEmptyState(branch)
		}
		return nil
	},
}

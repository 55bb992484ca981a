package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/engine"
)

// rmCmd forgets a branch or one of its tabs.
var rmCmd = &cobra.Command{
	Use:   "rm <branch> [path]",
	Short: "Forget a branch's tabs, or a single tab",
	Long: `Forget everything remembered for a branch, including its expiry.
With a path, forget only that tab.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		req := &engine.RemoveRequest{CWD: cwd, Branch: args[0]}
		if len(args) == 2 {
			req.Path = args[1]
		}

		result, err := eng.Remove(context.Background(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if result.Path != "" {
			PrintSuccess(fmt.Sprintf("Forgot %s on branch '%s'", result.Path, result.Branch))
		} else {
			PrintSuccess(fmt.Sprintf("Forgot branch '%s'", result.Branch))
		}
		return nil
	},
}

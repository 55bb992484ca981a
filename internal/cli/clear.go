package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/engine"
)

var clearForce bool

// clearCmd forgets everything for the current repository.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget all remembered tabs for this repository",
	Long: `Forget every branch's tabs and expiry for the current repository and turn
auto-restore off. Asks for confirmation unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !clearForce && !jsonOutput {
			fmt.Fprint(cmd.OutOrStdout(), "Forget all remembered tabs for this repository? [y/N] ")
			answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				PrintInfo("Aborted.")
				return nil
			}
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		result, err := eng.Clear(context.Background(), &engine.ClearRequest{CWD: cwd})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSuccess(fmt.Sprintf("Forgot %s", PrintCount(result.Branches, "branch", "branches")))
		return nil
	},
}

func init() {
	clearCmd.Flags().BoolVarP(&clearForce, "force", "f", false, "Do not ask for confirmation")
}

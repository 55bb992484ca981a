package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/engine"
	"github.com/danieljhkim/branchtabs/internal/view"
)

// showCmd prints one branch's remembered tabs.
var showCmd = &cobra.Command{
	Use:   "show [branch]",
	Short: "Show the tabs remembered for a branch",
	Long: `Show the tabs that would be reopened for a branch, in order. Defaults to
the checked-out branch. Files that no longer exist are flagged; they are
skipped when the branch is restored.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		req := &engine.ShowRequest{CWD: cwd}
		if len(args) == 1 {
			req.Branch = args[0]
		}

		result, err := eng.Show(context.Background(), req)
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		PrintSection(fmt.Sprintf("Branch: %s", result.Branch))
		if result.ExpiresAt != nil {
			PrintLabelValue("Expiry", view.ExpiresIn(*result.ExpiresAt, time.Now()))
			fmt.Println()
		}

		if len(result.Tabs) == 0 {
			PrintEmptyState("No remembered tabs.")
			return nil
		}

		missing := make(map[string]bool, len(result.Missing))
		for _, p := range result.Missing {
			missing[p] = true
		}

		rows := make([][]string, 0, len(result.Tabs))
		for _, tab := range result.Tabs {
			status := "ok"
			if missing[tab.Path] {
				status = "missing"
			}
			rows = append(rows, []string{strconv.Itoa(tab.Position), status, tab.Path})
		}
		PrintTable([]string{"COLUMN", "STATUS", "PATH"}, rows)

		if len(result.Missing) > 0 {
			fmt.Println()
			PrintWarning(fmt.Sprintf("%s will be skipped on restore", PrintCount(len(result.Missing), "missing file", "missing files")))
		}
		return nil
	},
}

package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/engine"
	"github.com/danieljhkim/branchtabs/internal/view"
)

// lsCmd lists remembered branches and their tabs.
var lsCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List remembered branches and their tabs",
	Long: `List every branch of the current repository that has remembered tabs,
with each tab's editor column and when the branch's memory expires.`,
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

		result, err := eng.List(context.Background(), &engine.ListRequest{CWD: cwd})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		printList(result, time.Now())
		return nil
	},
}

func printList(result *engine.ListResult, now time.Time) {
	PrintSection(fmt.Sprintf("Branch tabs: %s", result.Root))

	PrintLabelValue("Auto-restore", onOff(result.AutoRestore))
	if result.ActiveBranch != "" {
		PrintLabelValue("Checked out", result.ActiveBranch)
	}
	fmt.Println()

	if len(result.Branches) == 0 {
		PrintEmptyState("No remembered tabs.")
		return
	}

	for _, tree := range result.Branches {
		marker := " "
		if tree.Branch == result.ActiveBranch {
			marker = "*"
		}
		_, _ = headerColor.Printf("%s %s", marker, tree.Branch)

		detail := PrintCount(len(tree.Tabs), "tab", "tabs")
		if tree.ExpiresAt != nil {
			detail += ", " + view.ExpiresIn(*tree.ExpiresAt, now)
		}
		_, _ = dimColor.Printf("  (%s)\n", detail)

		for _, tab := range tree.Tabs {
			_, _ = infoColor.Printf("    [%d] %s\n", tab.Position, tab.Path)
		}
	}
}

package cli

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
)

// workspacesCmd lists every repository with stored memory.
var workspacesCmd = &cobra.Command{
	Use:   "workspaces",
	Short: "List repositories with remembered tabs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}

		result, err := eng.ListWorkspaces(context.Background())
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if len(result.Workspaces) == 0 {
			PrintEmptyState("No workspaces found.")
			return nil
		}

		PrintSection("Workspaces")
		rows := make([][]string, 0, len(result.Workspaces))
		for _, ws := range result.Workspaces {
			rows = append(rows, []string{
				ws.Repo,
				strconv.Itoa(ws.Branches),
				onOff(ws.AutoRestore),
				ws.Backend,
				shortID(ws.WorkspaceID),
			})
		}
		PrintTable([]string{"REPOSITORY", "BRANCHES", "AUTO", "BACKEND", "ID"}, rows)
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

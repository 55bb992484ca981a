package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/tui"
)

// browseCmd opens the interactive branch/tab tree.
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse and prune remembered tabs interactively",
	Long: `Open an interactive tree of remembered branches and their tabs.
Expand a branch to see its tabs; press d on a branch or tab to forget it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			return fmt.Errorf("browse is interactive; use 'ls --json' instead")
		}

		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}

		ws, err := eng.OpenWorkspace(cwd)
		if err != nil {
			return err
		}
		defer func() { _ = ws.Close() }()

		active := ""
		if head, err := ws.Repo.Head(); err == nil && !head.Detached {
			active = head.Branch
		}

		model := tui.New(ws.Memory, clock.RealClock{}, ws.Repo.Root(), active)
		if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
			return fmt.Errorf("browse: %w", err)
		}
		return nil
	},
}

package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/engine"
)

// autoRestoreCmd shows or sets the auto-restore preference.
var autoRestoreCmd = &cobra.Command{
	Use:       "auto-restore [on|off]",
	Short:     "Show or set whether tabs are restored without asking",
	ValidArgs: []string{"on", "off"},
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := newEngine()
		if err != nil {
			return err
		}
		cwd, err := workingDir()
		if err != nil {
			return err
		}
		ctx := context.Background()

		if len(args) == 0 {
			list, err := eng.List(ctx, &engine.ListRequest{CWD: cwd})
			if err != nil {
				return err
			}
			if jsonOutput {
				return outputJSON(&engine.AutoRestoreResult{Enabled: list.AutoRestore})
			}
			PrintLabelValue("Auto-restore", onOff(list.AutoRestore))
			return nil
		}

		result, err := eng.SetAutoRestore(ctx, &engine.AutoRestoreRequest{CWD: cwd, Enabled: args[0] == "on"})
		if err != nil {
			return err
		}

		if jsonOutput {
			return outputJSON(result)
		}

		if !result.Changed {
			PrintInfo(fmt.Sprintf("Auto-restore is already %s", onOff(result.Enabled)))
			return nil
		}
		PrintSuccess(fmt.Sprintf("Auto-restore turned %s", onOff(result.Enabled)))
		return nil
	},
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/danieljhkim/branchtabs/internal/engine"
	"github.com/danieljhkim/branchtabs/internal/gitx"
)

var watchDebounce time.Duration

// watchCmd runs the daemon an editor plugin talks to.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the branch-tab daemon for an editor",
	Long: `Run the daemon for the repository enclosing the current directory.

The editor plugin spawns this command and exchanges newline-delimited JSON
over stdin and stdout: it reports tab opens, closes and moves, and the daemon
asks it to close, open and confirm. When HEAD moves to another branch the
current tabs are saved and the new branch's tabs are offered for restore.

Logs go to stderr. The daemon exits when stdin closes.`,
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

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return eng.Watch(ctx, &engine.WatchRequest{
			CWD:      cwd,
			In:       os.Stdin,
			Out:      os.Stdout,
			Debounce: watchDebounce,
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", gitx.DefaultDebounce, "Delay before acting on a HEAD change")
}

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/branchtabs/internal/gitx"
	"github.com/danieljhkim/branchtabs/internal/host"
)

// Watch runs the daemon for the repository enclosing req.CWD until the
// editor closes its end of the bridge or ctx is cancelled.
//
// Tab events, commands and HEAD changes are all funnelled through one Loop,
// so the Session never sees two handlers at once. Bridge replies bypass the
// loop, which lets a handler block on a prompt.
func (e *Engine) Watch(ctx context.Context, req *WatchRequest) error {
	ws, err := e.OpenWorkspace(req.CWD)
	if err != nil {
		return err
	}
	defer func() { _ = ws.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger := e.log.With().Str("repo", ws.Repo.Root()).Logger()
	bridge := host.NewBridge(req.In, req.Out, logger)
	loop := NewLoop(logger)

	session := NewSession(SessionConfig{
		Repo:    ws.Repo,
		Editor:  bridge,
		Memory:  ws.Memory,
		FS:      e.fs,
		Clock:   e.clock,
		Refresh: bridge.Refresh,
		Logger:  logger,
	})

	cmdSub := bridge.OnCommand(func(cmd host.Command) {
		if err := session.HandleCommand(ctx, cmd); err != nil {
			logger.Error().Err(err).Str("command", cmd.Name).Msg("command failed")
			bridge.Notify(ctx, fmt.Sprintf("branchtabs: %v", err))
		}
	})
	defer cmdSub.Dispose()

	heads := gitx.NewHeadWatcher(ws.Repo.GitDir(), req.Debounce, logger)
	if err := heads.Start(func() {
		loop.Post(func() { session.HandleBranchChange(ctx) })
	}); err != nil {
		return err
	}
	defer heads.Stop()

	// Bind before the bridge starts reading; the loop is not running yet.
	session.Start(ctx)

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	logger.Info().Str("gitDir", ws.Repo.GitDir()).Msg("watching")
	serveErr := bridge.Serve(ctx, loop.Post)

	cancel()
	if err := <-loopDone; err != nil && !errors.Is(err, context.Canceled) {
		logger.Warn().Err(err).Msg("event loop stopped")
	}
	session.Close()

	logger.Info().Msg("stopped")
	return serveErr
}

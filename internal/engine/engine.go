// Package engine provides the core business logic for branchtabs operations.
//
// The engine package acts as the orchestration layer between CLI commands and
// lower-level packages. It coordinates repository discovery, workspace state,
// branch memory, and the watch daemon that keeps an editor in step with the
// checked-out branch.
//
// Key components:
//   - Engine: Main orchestrator; opens a repository's workspace and serves
//     the list, show, remove, clear, sweep and auto-restore commands
//   - Watch: Runs the daemon, wiring the editor bridge, HEAD watcher and loop
//   - Loop: Single goroutine that runs every event handler in arrival order
//   - Session: Reconciles branch switches, restores tabs, sweeps expired
//     memories and handles editor commands
package engine

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/config"
	"github.com/danieljhkim/branchtabs/internal/fsops"
	"github.com/danieljhkim/branchtabs/internal/gitx"
	"github.com/danieljhkim/branchtabs/internal/memory"
	"github.com/danieljhkim/branchtabs/internal/state"
)

// keyRepo records the repository root inside each workspace store.
const keyRepo = "repo"

// RepoOpener locates the repository enclosing a directory.
type RepoOpener func(dir string) (gitx.Repository, error)

// OpenGoGit is the default RepoOpener.
func OpenGoGit(dir string) (gitx.Repository, error) {
	repo, err := gitx.Open(dir)
	if err != nil {
		return nil, err
	}
	return repo, nil
}

// Engine orchestrates branchtabs operations.
type Engine struct {
	paths    *config.Paths
	cfg      *config.Config
	fs       fsops.FS
	clock    clock.Clock
	openRepo RepoOpener
	log      zerolog.Logger
}

// New creates a new Engine with the given dependencies.
func New(
	paths *config.Paths,
	cfg *config.Config,
	fs fsops.FS,
	clk clock.Clock,
	openRepo RepoOpener,
	logger zerolog.Logger,
) *Engine {
	if openRepo == nil {
		openRepo = OpenGoGit
	}
	return &Engine{
		paths:    paths,
		cfg:      cfg,
		fs:       fs,
		clock:    clk,
		openRepo: openRepo,
		log:      logger,
	}
}

// Workspace is one repository's opened branch memory.
type Workspace struct {
	ID     string
	Repo   gitx.Repository
	Store  state.Store
	Memory *memory.Store
}

// Close releases the workspace store.
func (w *Workspace) Close() error {
	return w.Store.Close()
}

// OpenWorkspace finds the repository enclosing cwd and opens its memory.
func (e *Engine) OpenWorkspace(cwd string) (*Workspace, error) {
	repo, err := e.openRepo(cwd)
	if err != nil {
		if errors.Is(err, gitx.ErrNotInRepo) {
			return nil, fmt.Errorf("%w: %s", ErrNotInRepo, cwd)
		}
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	if err := e.paths.EnsureDirectories(); err != nil {
		return nil, err
	}

	id := state.ComputeWorkspaceID(repo.Root())
	kv, err := state.Open(e.paths, e.cfg.Backend, repo.Root(), e.fs, e.clock)
	if err != nil {
		return nil, fmt.Errorf("failed to open workspace state: %w", err)
	}

	var recorded string
	if err := kv.Get(keyRepo, &recorded); err != nil || recorded != repo.Root() {
		if err := kv.Put(keyRepo, repo.Root()); err != nil {
			_ = kv.Close()
			return nil, fmt.Errorf("failed to record repository root: %w", err)
		}
	}

	logger := e.log.With().Str("workspace", id[:12]).Logger()
	return &Workspace{
		ID:     id,
		Repo:   repo,
		Store:  kv,
		Memory: memory.New(kv, e.clock, e.cfg.Expiry, logger),
	}, nil
}

// withWorkspace opens the workspace for cwd, runs fn and closes it.
func (e *Engine) withWorkspace(cwd string, fn func(*Workspace) error) error {
	ws, err := e.OpenWorkspace(cwd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Close(); cerr != nil {
			e.log.Warn().Err(cerr).Msg("failed to close workspace store")
		}
	}()
	return fn(ws)
}

// currentBranch returns the checked-out branch, or "" when detached.
func currentBranch(repo gitx.Repository) string {
	head, err := repo.Head()
	if err != nil || head.Detached {
		return ""
	}
	return head.Branch
}

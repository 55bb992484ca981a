package state

import (
	"fmt"

	"github.com/danieljhkim/branchtabs/internal/clock"
	"github.com/danieljhkim/branchtabs/internal/config"
	"github.com/danieljhkim/branchtabs/internal/fsops"
)

// Open returns the workspace store for repoRoot using the configured backend.
func Open(paths *config.Paths, backend, repoRoot string, fs fsops.FS, clk clock.Clock) (Store, error) {
	id := ComputeWorkspaceID(repoRoot)

	switch backend {
	case config.BackendJSON, "":
		return NewFileStore(fs, clk, paths.WorkspaceFile(id, "json"), repoRoot), nil
	case config.BackendSQLite:
		return OpenSQLiteStore(paths.WorkspaceFile(id, "db"), clk)
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}

package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/danieljhkim/branchtabs/internal/config"
	"github.com/danieljhkim/branchtabs/internal/memory"
	"github.com/danieljhkim/branchtabs/internal/state"
)

// ListWorkspaces enumerates every workspace state file, of either backend,
// and returns summary information.
// Algorithm steps:
// 1. Read all state files from ~/.branchtabs/workspaces
// 2. Open each with the backend its extension names
// 3. Skip unreadable files
// 4. Return sorted by repository path
func (e *Engine) ListWorkspaces(ctx context.Context) (*ListWorkspacesResult, error) {
	// Step 1: Read all workspace files
	entries, err := os.ReadDir(e.paths.Workspaces)
	if err != nil {
		if os.IsNotExist(err) {
			return &ListWorkspacesResult{Workspaces: []WorkspaceInfo{}}, nil
		}
		return nil, fmt.Errorf("failed to read workspaces directory: %w", err)
	}

	workspaces := []WorkspaceInfo{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		id := strings.TrimSuffix(entry.Name(), ext)
		path := filepath.Join(e.paths.Workspaces, entry.Name())

		// Step 2: Open with the matching backend
		var (
			kv      state.Store
			backend string
		)
		switch ext {
		case ".json":
			kv, backend = state.NewFileStore(e.fs, e.clock, path, ""), config.BackendJSON
		case ".db":
			s, err := state.OpenSQLiteStore(path, e.clock)
			if err != nil {
				// Step 3: Skip unreadable files
				e.log.Debug().Err(err).Str("path", path).Msg("skipping workspace")
				continue
			}
			kv, backend = s, config.BackendSQLite
		default:
			continue
		}

		var repo string
		if err := kv.Get(keyRepo, &repo); err != nil {
			e.log.Debug().Err(err).Str("path", path).Msg("skipping workspace")
			_ = kv.Close()
			continue
		}

		mem := memory.New(kv, e.clock, e.cfg.Expiry, e.log)
		workspaces = append(workspaces, WorkspaceInfo{
			WorkspaceID: id,
			Repo:        repo,
			Backend:     backend,
			Branches:    len(mem.Branches()),
			AutoRestore: mem.AutoRestore(),
		})
		_ = kv.Close()
	}

	// Step 4: Sort by repository for consistency
	slices.SortFunc(workspaces, func(a, b WorkspaceInfo) int {
		return strings.Compare(a.Repo, b.Repo)
	})

	return &ListWorkspacesResult{Workspaces: workspaces}, nil
}

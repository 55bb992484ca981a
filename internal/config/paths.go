// Package config manages branchtabs configuration and filesystem paths.
//
// The default root is ~/.branchtabs/ containing workspaces/ (one state file
// per repository) and config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the filesystem paths used by branchtabs.
type Paths struct {
	// Root is the base directory for all branchtabs data (default: ~/.branchtabs)
	Root string

	// Workspaces is the directory containing per-repository state
	Workspaces string

	// Config is the path to the global config file
	Config string
}

// DefaultPaths returns the default paths for branchtabs.
// BRANCHTABS_ROOT overrides the root directory.
func DefaultPaths() (*Paths, error) {
	root := os.Getenv("BRANCHTABS_ROOT")
	if root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		root = filepath.Join(home, ".branchtabs")
	}

	return PathsAt(root), nil
}

// PathsAt lays out the branchtabs directories under root.
func PathsAt(root string) *Paths {
	return &Paths{
		Root:       root,
		Workspaces: filepath.Join(root, "workspaces"),
		Config:     filepath.Join(root, "config.yaml"),
	}
}

// EnsureDirectories creates all necessary directories if they don't exist.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.Root, p.Workspaces} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// WorkspaceFile returns the state file for a workspace ID with the given
// extension ("json" or "db").
func (p *Paths) WorkspaceFile(workspaceID, ext string) string {
	return filepath.Join(p.Workspaces, workspaceID+"."+ext)
}

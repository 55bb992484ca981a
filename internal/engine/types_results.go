package engine

import (
	"time"

	"github.com/danieljhkim/branchtabs/internal/memory"
	"github.com/danieljhkim/branchtabs/internal/view"
)

// ListResult represents a repository's branch memory.
type ListResult struct {
	// Root is the repository worktree root
	Root string `json:"root"`

	// WorkspaceID is the computed workspace ID
	WorkspaceID string `json:"workspaceId"`

	// ActiveBranch is the checked-out branch (empty when detached)
	ActiveBranch string `json:"activeBranch,omitempty"`

	AutoRestore bool `json:"autoRestore"`

	Branches []view.Tree `json:"branches"`
}

// ShowResult represents one branch's remembered tabs.
type ShowResult struct {
	Branch    string             `json:"branch"`
	Tabs      []memory.TabRecord `json:"tabs"`
	ExpiresAt *time.Time         `json:"expiresAt,omitempty"`

	// Missing lists remembered paths no longer on disk
	Missing []string `json:"missing,omitempty"`
}

// RemoveResult represents the result of forgetting a branch or tab.
type RemoveResult struct {
	Branch  string `json:"branch"`
	Path    string `json:"path,omitempty"`
	Removed bool   `json:"removed"`
}

// ClearResult represents the result of clearing a repository's memory.
type ClearResult struct {
	// Branches is how many branches were forgotten
	Branches int `json:"branches"`
}

// AutoRestoreResult represents the preference after a change.
type AutoRestoreResult struct {
	Enabled bool `json:"enabled"`
	Changed bool `json:"changed"`
}

// SweepResult represents the result of an expiry sweep.
type SweepResult struct {
	// Swept lists the branches whose memory expired
	Swept []string `json:"swept"`

	// Kept maps surviving branches to their expiry
	Kept map[string]time.Time `json:"kept"`
}

// WorkspaceInfo summarises one repository's stored memory.
type WorkspaceInfo struct {
	WorkspaceID string `json:"workspaceId"`
	Repo        string `json:"repo"`
	Backend     string `json:"backend"`
	Branches    int    `json:"branches"`
	AutoRestore bool   `json:"autoRestore"`
}

// ListWorkspacesResult represents every repository with stored memory.
type ListWorkspacesResult struct {
	Workspaces []WorkspaceInfo `json:"workspaces"`
}

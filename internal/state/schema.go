package state

import (
	"encoding/json"
	"time"
)

// SchemaVersion is the current on-disk workspace document version.
const SchemaVersion = 1

// WorkspaceDocument is the on-disk form of a FileStore workspace.
type WorkspaceDocument struct {
	// Version is the schema version of this document
	Version int `json:"version"`

	// Repo is the repository root the workspace belongs to
	Repo string `json:"repo,omitempty"`

	// UpdatedAt is when any value was last written
	UpdatedAt time.Time `json:"updatedAt"`

	// Values maps keys to their JSON encoded values
	Values map[string]json.RawMessage `json:"values"`
}

// NewWorkspaceDocument creates an empty document for repo.
func NewWorkspaceDocument(repo string) *WorkspaceDocument {
	return &WorkspaceDocument{
		Version: SchemaVersion,
		Repo:    repo,
		Values:  make(map[string]json.RawMessage),
	}
}

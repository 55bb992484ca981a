package state

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

// ComputeWorkspaceID computes a stable workspace ID from the repository root.
// The root is cleaned first so trailing separators do not split a workspace.
func ComputeWorkspaceID(repoRoot string) string {
	hash := sha256.Sum256([]byte(filepath.Clean(repoRoot)))
	return hex.EncodeToString(hash[:])
}

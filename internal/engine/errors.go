package engine

import "errors"

var (
	// ErrNotInRepo indicates the current directory is not in a git repository.
	ErrNotInRepo = errors.New("not in a git repository")

	// ErrNotFound indicates a branch or tab is not remembered.
	ErrNotFound = errors.New("not found")

	// ErrUnknownCommand indicates an editor command this daemon does not handle.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNotActive indicates a restore was requested for a branch that is not
	// checked out.
	ErrNotActive = errors.New("branch is not checked out")

	// ErrValidation indicates a malformed request.
	ErrValidation = errors.New("validation failed")
)

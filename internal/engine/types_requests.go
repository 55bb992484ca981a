package engine

import (
	"io"
	"time"
)

// ListRequest represents a request to list remembered branches.
type ListRequest struct {
	// CWD is the current working directory
	CWD string
}

// ShowRequest represents a request for one branch's remembered tabs.
type ShowRequest struct {
	CWD string

	// Branch defaults to the checked-out branch when empty
	Branch string
}

// RemoveRequest represents a request to forget a branch or one of its tabs.
type RemoveRequest struct {
	CWD    string
	Branch string

	// Path removes a single tab when set; otherwise the whole branch goes
	Path string
}

// ClearRequest represents a request to forget everything for a repository.
type ClearRequest struct {
	CWD string
}

// AutoRestoreRequest represents a request to change the auto-restore
// preference.
type AutoRestoreRequest struct {
	CWD     string
	Enabled bool
}

// SweepRequest represents a request to drop expired branch memories.
type SweepRequest struct {
	CWD string
}

// WatchRequest represents a request to run the daemon.
type WatchRequest struct {
	// CWD is any directory inside the repository
	CWD string

	// In carries editor events, commands and replies
	In io.Reader

	// Out carries requests and notifications to the editor
	Out io.Writer

	// Debounce is the quiet period after a HEAD write (0 = default)
	Debounce time.Duration
}

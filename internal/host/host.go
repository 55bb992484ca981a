// Package host defines the editor collaborator: the tab event source, the
// open/close actuator, and the prompt surface. The engine only ever talks to
// these interfaces; Bridge implements them over a JSON-lines stream.
package host

import "context"

// SchemeFile is the URI scheme of on-disk documents. Only these are tracked.
const SchemeFile = "file"

// EventKind identifies a tab event.
type EventKind string

const (
	TabOpened EventKind = "opened"
	TabClosed EventKind = "closed"
	TabMoved  EventKind = "moved"
)

// TabEvent is a change in the editor's open tabs.
type TabEvent struct {
	Kind   EventKind
	Scheme string
	Path   string

	// Position is the 1-based editor column; zero when the host did not say.
	Position int

	// Seq numbers events in the order they were received from the host,
	// starting at 1.
	Seq uint64
}

// IsFile reports whether the event concerns an on-disk document.
func (e TabEvent) IsFile() bool {
	return e.Scheme == SchemeFile && e.Path != ""
}

// Command is a user action issued from the editor's UI.
type Command struct {
	Name   string
	Branch string
	Path   string
}

// Command names accepted from the editor.
const (
	CmdClearAll           = "clearAll"
	CmdEnableAutoRestore  = "enableAutoRestore"
	CmdDisableAutoRestore = "disableAutoRestore"
	CmdDeleteTab          = "deleteTab"
	CmdDeleteBranch       = "deleteBranch"
	CmdRestore            = "restore"
)

// Subscription is a live event registration. Dispose is idempotent.
type Subscription interface {
	Dispose()
}

// TabEvents is the source of tab open/close/move events.
//
// Delivery may lag behind receipt: the bridge queues events on the event loop,
// so a handler can see an event the host sent before the handler's
// subscriber state last changed. Received lets a subscriber tell those apart.
type TabEvents interface {
	OnTabEvent(fn func(TabEvent)) Subscription

	// Received returns the Seq of the latest event taken from the host, or 0.
	Received() uint64
}

// Actuator changes what the editor shows.
type Actuator interface {
	// CloseAll closes every open editor.
	CloseAll(ctx context.Context) error

	// Open shows path as a non-preview tab in the given column.
	Open(ctx context.Context, path string, position int) error
}

// Prompter talks to the user.
type Prompter interface {
	// Confirm asks a question and blocks for the answer. It returns the chosen
	// option, or "" when the prompt was dismissed.
	Confirm(ctx context.Context, message string, options ...string) (string, error)

	// Notify shows a non-blocking informational message.
	Notify(ctx context.Context, message string)
}

// Editor is everything the engine needs from the editor host.
type Editor interface {
	TabEvents
	Actuator
	Prompter
}

// Package tabwatch mirrors live editor tab changes into branch memory for
// the branch that was checked out when the watcher was bound.
package tabwatch

import (
	"github.com/rs/zerolog"

	"github.com/danieljhkim/branchtabs/internal/host"
	"github.com/danieljhkim/branchtabs/internal/memory"
)

// Watcher holds at most one live tab subscription.
type Watcher struct {
	events  host.TabEvents
	mem     *memory.Store
	refresh func()
	log     zerolog.Logger

	sub    host.Subscription
	branch string
}

// New creates an unbound Watcher. refresh is called after every stored
// change; it may be nil.
func New(events host.TabEvents, mem *memory.Store, refresh func(), logger zerolog.Logger) *Watcher {
	if refresh == nil {
		refresh = func() {}
	}
	return &Watcher{
		events:  events,
		mem:     mem,
		refresh: refresh,
		log:     logger.With().Str("component", "tabwatch").Logger(),
	}
}

// Bind starts recording tab changes for branch, replacing any previous
// binding. Only events the host sends after Bind are recorded, so the
// close/open burst of a restore that ran while unbound is never attributed
// to the new branch.
func (w *Watcher) Bind(branch string) {
	w.Unbind()

	since := w.events.Received()
	w.branch = branch
	w.sub = w.events.OnTabEvent(func(ev host.TabEvent) {
		if ev.Seq <= since {
			w.log.Debug().Uint64("seq", ev.Seq).Str("path", ev.Path).Msg("dropping event from before bind")
			return
		}
		w.handle(branch, ev)
	})
	w.log.Debug().Str("branch", branch).Uint64("since", since).Msg("bound")
}

// Unbind stops recording. Safe to call when unbound.
func (w *Watcher) Unbind() {
	if w.sub == nil {
		return
	}
	w.sub.Dispose()
	w.sub = nil
	w.log.Debug().Str("branch", w.branch).Msg("unbound")
	w.branch = ""
}

// Bound returns the branch being recorded.
func (w *Watcher) Bound() (string, bool) {
	return w.branch, w.sub != nil
}

func (w *Watcher) handle(branch string, ev host.TabEvent) {
	if !ev.IsFile() {
		return
	}

	var (
		changed bool
		err     error
	)
	switch ev.Kind {
	case host.TabOpened:
		changed, err = w.mem.AddOrUpdateTab(branch, ev.Path, memory.DefaultPosition)
	case host.TabClosed:
		changed, err = w.mem.RemoveTab(branch, ev.Path)
	case host.TabMoved:
		pos := ev.Position
		if pos < 1 {
			pos = memory.DefaultPosition
		}
		changed, err = w.mem.UpdatePosition(branch, ev.Path, pos)
	default:
		return
	}

	if err != nil {
		w.log.Error().Err(err).
			Str("branch", branch).
			Str("path", ev.Path).
			Str("event", string(ev.Kind)).
			Msg("failed to record tab change")
		return
	}
	if changed {
		w.refresh()
	}
}

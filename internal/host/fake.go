package host

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Call is one actuator or prompt invocation recorded by FakeEditor.
type Call struct {
	Method   string // "closeAll", "open", "confirm", "notify"
	Path     string
	Position int
	Message  string
	Options  []string
}

// FakeEditor implements Editor for tests. Tab events are emitted
// synchronously with Emit; confirm answers are served from a queue.
type FakeEditor struct {
	mu       sync.Mutex
	seq      atomic.Uint64
	tabs     Emitter[TabEvent]
	calls    []Call
	answers  []string
	openErrs map[string]error
	closeErr error
	onClose  func()
	onOpen   func(path string, position int)
}

// NewFakeEditor creates an empty FakeEditor.
func NewFakeEditor() *FakeEditor {
	return &FakeEditor{openErrs: make(map[string]error)}
}

// OnTabEvent subscribes to emitted tab events.
func (f *FakeEditor) OnTabEvent(fn func(TabEvent)) Subscription {
	return f.tabs.Subscribe(fn)
}

// Emit stamps ev with the next sequence number and delivers it to
// subscribers immediately.
func (f *FakeEditor) Emit(ev TabEvent) {
	ev.Seq = f.seq.Add(1)
	f.tabs.Emit(ev)
}

// Received returns the Seq of the last emitted event.
func (f *FakeEditor) Received() uint64 {
	return f.seq.Load()
}

// Subscribers returns the number of live tab subscriptions.
func (f *FakeEditor) Subscribers() int {
	return f.tabs.Len()
}

// QueueAnswers appends answers returned by successive Confirm calls. When the
// queue is empty Confirm returns "" (dismissed).
func (f *FakeEditor) QueueAnswers(answers ...string) {
	f.mu.Lock()
	f.answers = append(f.answers, answers...)
	f.mu.Unlock()
}

// FailOpen makes Open(path) return err.
func (f *FakeEditor) FailOpen(path string, err error) {
	f.mu.Lock()
	f.openErrs[path] = err
	f.mu.Unlock()
}

// FailCloseAll makes CloseAll return err.
func (f *FakeEditor) FailCloseAll(err error) {
	f.mu.Lock()
	f.closeErr = err
	f.mu.Unlock()
}

// SimulateHost makes CloseAll and Open emit the tab events a real editor
// would produce for them.
func (f *FakeEditor) SimulateHost(open []string) {
	f.mu.Lock()
	current := append([]string(nil), open...)
	f.onClose = func() {
		for _, p := range current {
			f.Emit(TabEvent{Kind: TabClosed, Scheme: SchemeFile, Path: p})
		}
		current = nil
	}
	f.onOpen = func(path string, position int) {
		current = append(current, path)
		f.Emit(TabEvent{Kind: TabOpened, Scheme: SchemeFile, Path: path})
		f.Emit(TabEvent{Kind: TabMoved, Scheme: SchemeFile, Path: path, Position: position})
	}
	f.mu.Unlock()
}

// CloseAll records the call.
func (f *FakeEditor) CloseAll(context.Context) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: "closeAll"})
	err, hook := f.closeErr, f.onClose
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return nil
}

// Open records the call.
func (f *FakeEditor) Open(_ context.Context, path string, position int) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: "open", Path: path, Position: position})
	err, hook := f.openErrs[path], f.onOpen
	f.mu.Unlock()
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if hook != nil {
		hook(path, position)
	}
	return nil
}

// Confirm records the call and pops the next queued answer.
func (f *FakeEditor) Confirm(_ context.Context, message string, options ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Method: "confirm", Message: message, Options: options})
	if len(f.answers) == 0 {
		return "", nil
	}
	answer := f.answers[0]
	f.answers = f.answers[1:]
	return answer, nil
}

// Notify records the call.
func (f *FakeEditor) Notify(_ context.Context, message string) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Method: "notify", Message: message})
	f.mu.Unlock()
}

// Calls returns every recorded call in order.
func (f *FakeEditor) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallsTo returns recorded calls for one method.
func (f *FakeEditor) CallsTo(method string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded calls.
func (f *FakeEditor) Reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

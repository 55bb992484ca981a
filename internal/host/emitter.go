package host

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Emitter fans a value out to registered handlers. Handlers run on the
// goroutine that calls Emit, in registration order.
type Emitter[T any] struct {
	mu       sync.Mutex
	next     int
	handlers map[int]*handler[T]
}

type handler[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// Subscribe registers fn until the returned subscription is disposed.
func (e *Emitter[T]) Subscribe(fn func(T)) Subscription {
	h := &handler[T]{fn: fn}
	h.active.Store(true)

	e.mu.Lock()
	if e.handlers == nil {
		e.handlers = make(map[int]*handler[T])
	}
	id := e.next
	e.next++
	e.handlers[id] = h
	e.mu.Unlock()

	return &subscription{dispose: func() {
		h.active.Store(false)
		e.mu.Lock()
		delete(e.handlers, id)
		e.mu.Unlock()
	}}
}

// Emit delivers v to every live handler. A handler disposed while Emit is
// running is not called afterwards.
func (e *Emitter[T]) Emit(v T) {
	e.mu.Lock()
	ids := make([]int, 0, len(e.handlers))
	for id := range e.handlers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	hs := make([]*handler[T], 0, len(ids))
	for _, id := range ids {
		hs = append(hs, e.handlers[id])
	}
	e.mu.Unlock()

	for _, h := range hs {
		if h.active.Load() {
			h.fn(v)
		}
	}
}

// Len returns the number of live handlers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers)
}

type subscription struct {
	once    sync.Once
	dispose func()
}

func (s *subscription) Dispose() {
	s.once.Do(s.dispose)
}

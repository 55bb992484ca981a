package engine

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/rs/zerolog"
)

// Loop runs posted functions one at a time, in posting order, on the
// goroutine that calls Run. Post never blocks.
type Loop struct {
	log zerolog.Logger

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an idle loop.
func NewLoop(logger zerolog.Logger) *Loop {
	return &Loop{
		log:  logger.With().Str("component", "loop").Logger(),
		wake: make(chan struct{}, 1),
	}
}

// Post queues fn.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of queued functions.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run executes queued functions until ctx is done. Functions still queued
// at that point are dropped.
func (l *Loop) Run(ctx context.Context) error {
	for {
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn, ok := l.next()
			if !ok {
				break
			}
			l.run(fn)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Do posts fn and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

// run calls fn, containing any panic so later events still run.
func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error().
				Err(fmt.Errorf("panic: %v", r)).
				Bytes("stack", debug.Stack()).
				Msg("event handler panicked")
		}
	}()
	fn()
}

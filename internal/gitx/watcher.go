package gitx

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce coalesces the lock-file dance git performs on checkout.
const DefaultDebounce = 150 * time.Millisecond

// HeadWatcher reports writes to HEAD. The git directory is watched rather
// than HEAD itself because git replaces HEAD by renaming HEAD.lock over it.
type HeadWatcher struct {
	gitDir string
	delay  time.Duration
	log    zerolog.Logger

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	timer    *time.Timer
	onChange func()
	stopChan chan struct{}
	done     chan struct{}
	stopped  bool
}

// NewHeadWatcher creates a watcher for gitDir/HEAD. A non-positive delay uses
// DefaultDebounce.
func NewHeadWatcher(gitDir string, delay time.Duration, logger zerolog.Logger) *HeadWatcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &HeadWatcher{
		gitDir: gitDir,
		delay:  delay,
		log:    logger.With().Str("component", "headwatch").Logger(),
	}
}

// Start begins watching. onChange runs on a timer goroutine once HEAD has
// been quiet for the debounce delay.
func (w *HeadWatcher) Start(onChange func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(w.gitDir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.gitDir, err)
	}

	w.mu.Lock()
	w.fsw = fsw
	w.onChange = onChange
	w.stopChan = make(chan struct{})
	w.done = make(chan struct{})
	w.mu.Unlock()

	go w.eventLoop(fsw)

	w.log.Debug().Str("gitDir", w.gitDir).Msg("watching HEAD")
	return nil
}

// Stop ends watching and cancels any pending notification. Safe to call
// more than once.
func (w *HeadWatcher) Stop() {
	w.mu.Lock()
	if w.stopped || w.fsw == nil {
		w.stopped = true
		w.mu.Unlock()
		return
	}
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.stopChan)
	fsw, done := w.fsw, w.done
	w.mu.Unlock()

	_ = fsw.Close()
	<-done
}

func (w *HeadWatcher) eventLoop(fsw *fsnotify.Watcher) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if isHeadWrite(event) {
				w.queue()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("watcher error")

		case <-w.stopChan:
			return
		}
	}
}

func isHeadWrite(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != "HEAD" {
		return false
	}
	return event.Op&(fsnotify.Create|fsnotify.Write) != 0
}

// queue (re)arms the debounce timer.
func (w *HeadWatcher) queue() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return
	}
	if w.timer != nil && w.timer.Reset(w.delay) {
		return
	}
	w.timer = time.AfterFunc(w.delay, w.fire)
}

func (w *HeadWatcher) fire() {
	w.mu.Lock()
	stopped, fn := w.stopped, w.onChange
	w.mu.Unlock()

	if !stopped && fn != nil {
		fn()
	}
}

// Package clock abstracts wall-clock time so expiry logic can be tested
// deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FakeClock is a manually driven Clock for tests. It is safe for use from
// the event loop goroutine and the test goroutine at the same time.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewFakeClock returns a FakeClock frozen at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the frozen time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Set moves the clock to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d (or backward when d is negative).
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	c.mu.Unlock()
}

// ExpiresAt returns the instant a TTL started now on c will lapse.
func ExpiresAt(c Clock, ttl time.Duration) time.Time {
	return c.Now().Add(ttl)
}

// Expired reports whether expiry is at or before now.
func Expired(expiry, now time.Time) bool {
	return !expiry.After(now)
}

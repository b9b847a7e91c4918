// Package clock abstracts the wall clock so the tracker stays deterministic in tests.
package clock

import (
	"sync"
	"time"
)

// DateLayout is the calendar-day format used for session and usage dates.
const DateLayout = "2006-01-02"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the local wall clock.
type SystemClock struct{}

// Now returns the current local time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Date returns the calendar day of t in t's own location.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}

// Manual is a settable clock for tests and simulations. The zero value reads
// as the zero time; use NewManual to start at a fixed instant.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock set to start.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now returns the clock's current reading.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t. Moving backwards is allowed so callers can
// simulate clock regressions.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward (or backward for negative d).
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}

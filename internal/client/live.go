package client

import (
	"context"
	"sync"
	"time"

	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/store"
	"github.com/blackwell-systems/workclock/internal/tracker"
)

// StatusSource is what the live counter syncs from. *Client satisfies it.
type StatusSource interface {
	Status(ctx context.Context) (*tracker.Status, error)
}

// Reading is what the live display shows at one instant.
type Reading struct {
	ManualStatus     string
	ManualSeconds    int64
	AutomaticStatus  string
	AutomaticSeconds int64
	GoalSeconds      int64
	Offline          bool
	Synced           bool
}

// LiveCounter interpolates the server's counters between syncs. Each sync
// anchors the snapshot to the local instant the response was decoded, so
// request latency is never shown as lost time.
type LiveCounter struct {
	source StatusSource
	clock  clock.Clock

	mu        sync.Mutex
	manual    tracker.Snapshot
	manualSt  string
	auto      tracker.Snapshot
	goal      int64
	maxCredit time.Duration
	synced    bool
	offline   bool
}

// NewLiveCounter returns a counter with no snapshot yet.
func NewLiveCounter(src StatusSource, clk clock.Clock) *LiveCounter {
	return &LiveCounter{source: src, clock: clk, manualSt: tracker.StatusIdle}
}

// Sync fetches a fresh snapshot. On failure the previous snapshot is kept
// and the counter is flagged offline.
func (l *LiveCounter) Sync(ctx context.Context) error {
	st, err := l.source.Status(ctx)
	anchor := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.offline = true
		return err
	}

	l.maxCredit = time.Duration(st.MaxCreditSeconds) * time.Second
	l.manual = anchored(st.Manual, anchor)
	l.manualSt = st.Manual.Status
	l.auto = anchored(st.Automatic, anchor)
	l.goal = st.Goal.GoalSeconds
	l.synced = true
	l.offline = false
	return nil
}

// anchored rebases a server snapshot onto the local clock: the time the
// server had already projected is moved behind the local anchor.
func anchored(s tracker.SessionStatus, anchor time.Time) tracker.Snapshot {
	pending := s.DisplaySeconds - s.TotalSeconds
	return tracker.Snapshot{
		Status:       store.Status(s.Status),
		TotalSeconds: s.TotalSeconds,
		LastTick:     anchor.Add(-time.Duration(pending) * time.Second),
	}
}

// Offline reports whether the last sync failed.
func (l *LiveCounter) Offline() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offline
}

// Display projects the last snapshot to now with the server's clamp.
func (l *LiveCounter) Display(now time.Time) Reading {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Reading{
		ManualStatus:     l.manualSt,
		ManualSeconds:    tracker.Project(l.manual, now, l.maxCredit),
		AutomaticStatus:  string(l.auto.Status),
		AutomaticSeconds: tracker.Project(l.auto, now, l.maxCredit),
		GoalSeconds:      l.goal,
		Offline:          l.offline,
		Synced:           l.synced,
	}
}

// Run syncs every syncEvery and calls render every redrawEvery until ctx
// is cancelled. Sync failures are reported through the Offline flag.
func (l *LiveCounter) Run(ctx context.Context, syncEvery, redrawEvery time.Duration, render func(Reading)) error {
	_ = l.Sync(ctx)
	render(l.Display(l.clock.Now()))

	syncTicker := time.NewTicker(syncEvery)
	defer syncTicker.Stop()
	redraw := time.NewTicker(redrawEvery)
	defer redraw.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-syncTicker.C:
			_ = l.Sync(ctx)
		case <-redraw.C:
			render(l.Display(l.clock.Now()))
		}
	}
}

// Package tracker turns lock/unlock events, manual commands and periodic ticks
// into per-session worked seconds.
//
// Two session kinds run side by side: the manual session the user starts and
// stops, and one automatic session per calendar day that follows the screen
// lock. Every mutation is a single guarded store update keyed on the
// session's last_tick, so the reconciler and request handlers can run
// concurrently without double-crediting an interval.
package tracker

import (
	"context"
	"time"

	"github.com/blackwell-systems/workclock/internal/store"
)

// Store is the persistence the tracker needs. *store.DB satisfies it.
type Store interface {
	CreateSession(kind store.Kind, date string, now time.Time) (*store.Session, error)
	GetSession(id int64) (*store.Session, error)
	OpenSession(kind store.Kind) (*store.Session, error)
	AutomaticSession(date string, now time.Time) (*store.Session, error)
	Advance(u store.Update) (bool, error)
	Transition(u store.Update) (bool, error)
	AppendEvent(sessionID int64, eventType store.EventType, at time.Time) error
	ClaimGoalNotification(id int64) (bool, error)
	ClaimBreakReminder(id, prev, total int64) (bool, error)
	GetSetting(key, def string) (string, error)
}

// Notifier delivers goal and break messages. Delivery is best effort.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// NopNotifier drops every message.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, string, string) error { return nil }

// maxAttempts bounds how often a guarded transition is retried after losing
// its last_tick guard to a concurrent writer.
const maxAttempts = 5

// pending returns the credit owed to s at now and the tick the session
// should be re-anchored to. Paused sessions owe nothing. A clock that reads
// earlier than last_tick owes nothing and keeps the existing anchor.
func pending(s *store.Session, now time.Time, maxCredit time.Duration) (credit int64, tick time.Time, regressed bool) {
	now = now.Truncate(time.Second)
	if now.Before(s.LastTick) {
		return 0, s.LastTick, true
	}
	if s.Status != store.StatusActive {
		return 0, now, false
	}
	return clampSeconds(now.Sub(s.LastTick), maxCredit), now, false
}

// clampSeconds converts elapsed to whole seconds bounded to [0, maxCredit].
func clampSeconds(elapsed, maxCredit time.Duration) int64 {
	if elapsed <= 0 {
		return 0
	}
	if elapsed > maxCredit {
		elapsed = maxCredit
	}
	return int64(elapsed / time.Second)
}

package tracker

import (
	"time"

	"github.com/blackwell-systems/workclock/internal/store"
)

// Snapshot is the subset of a session the projector reads.
type Snapshot struct {
	Status       store.Status `json:"status"`
	TotalSeconds int64        `json:"total_seconds"`
	LastTick     time.Time    `json:"last_tick"`
}

// SnapshotOf extracts the projector's view of s.
func SnapshotOf(s *store.Session) Snapshot {
	return Snapshot{Status: s.Status, TotalSeconds: s.TotalSeconds, LastTick: s.LastTick}
}

// Project returns the seconds to display for snap at now. Active sessions add
// the time since their last tick, clamped to [0, maxCredit] so a reader never
// shows more than the reconciler would eventually persist.
func Project(snap Snapshot, now time.Time, maxCredit time.Duration) int64 {
	if snap.Status != store.StatusActive {
		return snap.TotalSeconds
	}
	return snap.TotalSeconds + clampSeconds(now.Sub(snap.LastTick), maxCredit)
}

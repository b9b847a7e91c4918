// Package store provides SQLite persistence for workclock sessions, lock/unlock
// events, per-application usage and user settings.
package store

import "time"

// Kind distinguishes user-controlled sessions from lock-driven ones.
type Kind string

const (
	KindManual    Kind = "manual"
	KindAutomatic Kind = "automatic"
)

// Kinds lists every session kind in reconciliation order.
var Kinds = []Kind{KindManual, KindAutomatic}

// Status is the lifecycle state of a session.
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Session is a contiguous (with pauses) period of tracked time.
type Session struct {
	ID              int64      `json:"id"`
	Kind            Kind       `json:"type"`
	Date            string     `json:"date"`
	Status          Status     `json:"status"`
	TotalSeconds    int64      `json:"total_seconds"`
	LastTick        time.Time  `json:"last_tick"`
	Notified        bool       `json:"notified"`
	LastBreakNotify int64      `json:"last_break_notify"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
}

// Update is a guarded mutation of a session. It applies only while the
// session is not completed and its stored last_tick still equals
// ExpectedTick, so concurrent writers cannot double-credit an interval.
type Update struct {
	ID           int64
	ExpectedTick time.Time
	Credit       int64
	Status       Status
	Tick         time.Time
	EndTime      *time.Time
}

// EventType is a lock/unlock transition.
type EventType string

const (
	EventLock   EventType = "lock"
	EventUnlock EventType = "unlock"
)

// LockEvent is an append-only record of a lock or unlock.
type LockEvent struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	EventType EventType `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AppUsage is the foreground time of one application on one day.
type AppUsage struct {
	Date         string `json:"date"`
	AppName      string `json:"app_name"`
	TotalSeconds int64  `json:"total_seconds"`
}

// PeriodTotal is one row of a daily, weekly or monthly report.
type PeriodTotal struct {
	Period      string `json:"period"`
	ManualTotal int64  `json:"manual_total"`
	AutoTotal   int64  `json:"auto_total"`
}

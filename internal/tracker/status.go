package tracker

import (
	"context"
	"time"

	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

// StatusIdle is reported for the manual kind when no session is open.
const StatusIdle = "idle"

// SessionStatus is one kind's current state. TotalSeconds is what the store
// holds; DisplaySeconds adds the projected time since the last tick.
type SessionStatus struct {
	ID             int64      `json:"id,omitempty"`
	Date           string     `json:"date,omitempty"`
	Status         string     `json:"status"`
	TotalSeconds   int64      `json:"total_seconds"`
	DisplaySeconds int64      `json:"display_seconds"`
	LastTick       *time.Time `json:"last_tick,omitempty"`
	StartTime      *time.Time `json:"start_time,omitempty"`
}

// GoalProgress relates the manual session to the configured goal.
type GoalProgress struct {
	GoalSeconds   int64   `json:"goal_seconds"`
	Percent       float64 `json:"percent"`
	Reached       bool    `json:"reached"`
	LinePercent   int     `json:"line_percent"`
	BreakInterval int     `json:"break_interval"`
}

// Status is the read model served to dashboards and the live display.
type Status struct {
	Now              time.Time     `json:"now"`
	MaxCreditSeconds int64         `json:"max_credit_seconds"`
	Manual           SessionStatus `json:"manual"`
	Automatic        SessionStatus `json:"automatic"`
	Goal             GoalProgress  `json:"goal"`
}

// Status reads both kinds and projects their totals to now. It never
// mutates a session, except that today's automatic session is created on
// first read.
func (svc *Service) Status(ctx context.Context) (*Status, error) {
	now := svc.clock.Now()

	manual, err := svc.store.OpenSession(store.KindManual)
	if err != nil {
		return nil, err
	}
	auto, err := svc.store.AutomaticSession(clock.Date(now), now)
	if err != nil {
		return nil, err
	}

	cfg, err := settings.Load(svc.store, svc.opts.Goals)
	if err != nil {
		svc.log.Warn("goal settings unreadable, using what could be loaded", "error", err)
	}

	st := &Status{
		Now:              now,
		MaxCreditSeconds: int64(svc.opts.MaxCredit / time.Second),
		Manual:           SessionStatus{Status: StatusIdle},
		Automatic:        svc.sessionStatus(auto, now),
	}
	if manual != nil {
		st.Manual = svc.sessionStatus(manual, now)
	}

	goal := cfg.GoalSeconds()
	st.Goal = GoalProgress{
		GoalSeconds:   goal,
		Reached:       goal > 0 && st.Manual.DisplaySeconds >= goal,
		LinePercent:   cfg.GoalLinePercent,
		BreakInterval: cfg.BreakInterval,
	}
	if goal > 0 {
		st.Goal.Percent = float64(st.Manual.DisplaySeconds) / float64(goal) * 100
	}
	return st, nil
}

func (svc *Service) sessionStatus(s *store.Session, now time.Time) SessionStatus {
	lastTick, start := s.LastTick, s.StartTime
	return SessionStatus{
		ID:             s.ID,
		Date:           s.Date,
		Status:         string(s.Status),
		TotalSeconds:   s.TotalSeconds,
		DisplaySeconds: Project(SnapshotOf(s), now, svc.opts.MaxCredit),
		LastTick:       &lastTick,
		StartTime:      &start,
	}
}

package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/logging"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

// ErrContended is returned when a guarded update kept losing to concurrent
// writers. It is wrapped as a storage failure.
var ErrContended = errors.New("session kept changing underneath the update")

// Options configures a Service and its Reconciler.
type Options struct {
	// MaxCredit caps the seconds credited for any single interval.
	MaxCredit time.Duration

	// ResumeManualOnUnlock makes an unlock resume a paused manual session.
	ResumeManualOnUnlock bool

	// Goals holds the fallback goal settings for keys the store lacks.
	Goals settings.Settings
}

// Service implements the session state machine.
type Service struct {
	store Store
	clock clock.Clock
	log   *logging.Logger
	opts  Options
}

// NewService returns a Service over st.
func NewService(st Store, clk clock.Clock, log *logging.Logger, opts Options) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{store: st, clock: clk, log: log, opts: opts}
}

// MaxCredit returns the clamp applied to every interval.
func (svc *Service) MaxCredit() time.Duration {
	return svc.opts.MaxCredit
}

// Start resumes the open manual session, or creates one when none exists.
func (svc *Service) Start(ctx context.Context) (*store.Session, error) {
	now := svc.clock.Now()

	open, err := svc.store.OpenSession(store.KindManual)
	if err != nil {
		return nil, err
	}
	if open != nil {
		s, err := svc.transition(open.ID, store.StatusActive, now, transitionOpts{})
		if !errors.Is(err, apperr.ErrNotFound) {
			if err == nil {
				svc.log.Info("manual session resumed", "session_id", s.ID, "total_seconds", s.TotalSeconds)
			}
			return s, err
		}
		// Stopped between the lookup and the update; start a fresh one.
	}

	s, err := svc.store.CreateSession(store.KindManual, clock.Date(now), now)
	if err != nil {
		return nil, err
	}
	svc.log.Info("manual session started", "session_id", s.ID)
	return s, nil
}

// Pause pauses the active manual session. It fails with ErrNotFound when no
// manual session is active.
func (svc *Service) Pause(ctx context.Context) (*store.Session, error) {
	open, err := svc.store.OpenSession(store.KindManual)
	if err != nil {
		return nil, err
	}
	if open == nil || open.Status != store.StatusActive {
		return nil, apperr.NotFound("no active manual session")
	}

	s, err := svc.transition(open.ID, store.StatusPaused, svc.clock.Now(), transitionOpts{requireActive: true})
	if err != nil {
		return nil, err
	}
	svc.log.Info("manual session paused", "session_id", s.ID, "total_seconds", s.TotalSeconds)
	return s, nil
}

// Stop completes the open manual session. It fails with ErrNotFound when no
// manual session is open.
func (svc *Service) Stop(ctx context.Context) (*store.Session, error) {
	open, err := svc.store.OpenSession(store.KindManual)
	if err != nil {
		return nil, err
	}
	if open == nil {
		return nil, apperr.NotFound("no open manual session")
	}

	s, err := svc.transition(open.ID, store.StatusCompleted, svc.clock.Now(), transitionOpts{end: true})
	if err != nil {
		return nil, err
	}
	svc.log.Info("manual session stopped", "session_id", s.ID, "total_seconds", s.TotalSeconds)
	return s, nil
}

// EventResult reports the sessions an external event touched. Manual is nil
// when no manual session was open.
type EventResult struct {
	Event     store.EventType `json:"event"`
	Automatic *store.Session  `json:"automatic"`
	Manual    *store.Session  `json:"manual,omitempty"`
}

// ParseEvent validates an external event name.
func ParseEvent(name string) (store.EventType, error) {
	switch store.EventType(name) {
	case store.EventLock, store.EventUnlock:
		return store.EventType(name), nil
	}
	return "", apperr.Invalid("unknown event %q, want lock or unlock", name)
}

// HandleEvent applies a lock or unlock. Today's automatic session always
// follows the event. The open manual session, if any, is paused on lock and
// resumed on unlock when ResumeManualOnUnlock is set. A failure on one half
// does not stop the other.
func (svc *Service) HandleEvent(ctx context.Context, name string) (*EventResult, error) {
	event, err := ParseEvent(name)
	if err != nil {
		return nil, err
	}

	now := svc.clock.Now()
	status := store.StatusActive
	if event == store.EventLock {
		status = store.StatusPaused
	}
	result := &EventResult{Event: event}

	autoErr := func() error {
		auto, err := svc.store.AutomaticSession(clock.Date(now), now)
		if err != nil {
			return err
		}
		s, err := svc.transition(auto.ID, status, now, transitionOpts{})
		if err != nil {
			return err
		}
		result.Automatic = s
		return svc.store.AppendEvent(s.ID, event, now)
	}()
	if autoErr != nil {
		autoErr = fmt.Errorf("automatic session: %w", autoErr)
	}

	manualErr := func() error {
		open, err := svc.store.OpenSession(store.KindManual)
		if err != nil || open == nil {
			return err
		}
		s := open
		if event == store.EventLock || svc.opts.ResumeManualOnUnlock {
			s, err = svc.transition(open.ID, status, now, transitionOpts{})
			if errors.Is(err, apperr.ErrNotFound) {
				// Stopped concurrently; nothing left to follow the event.
				return nil
			}
			if err != nil {
				return err
			}
		}
		result.Manual = s
		return svc.store.AppendEvent(s.ID, event, now)
	}()
	if manualErr != nil {
		manualErr = fmt.Errorf("manual session: %w", manualErr)
	}

	svc.log.Debug("external event handled", "event", event,
		"automatic_status", statusOf(result.Automatic), "manual_status", statusOf(result.Manual))
	if err := errors.Join(autoErr, manualErr); err != nil {
		return result, err
	}
	return result, nil
}

func statusOf(s *store.Session) string {
	if s == nil {
		return "none"
	}
	return string(s.Status)
}

type transitionOpts struct {
	requireActive bool
	end           bool
}

// transition moves session id to status, settling any credit it is owed at
// now in the same guarded update. It re-reads and retries when the guard is
// lost, and fails with ErrNotFound once the session is completed (or, with
// requireActive, no longer active).
func (svc *Service) transition(id int64, status store.Status, now time.Time, o transitionOpts) (*store.Session, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		s, err := svc.store.GetSession(id)
		if err != nil {
			return nil, err
		}
		if s == nil || s.Status == store.StatusCompleted {
			return nil, apperr.NotFound("session %d is not open", id)
		}
		if o.requireActive && s.Status != store.StatusActive {
			return nil, apperr.NotFound("session %d is not active", id)
		}

		credit, tick, regressed := pending(s, now, svc.opts.MaxCredit)
		if regressed {
			svc.log.Warn("clock reads earlier than last tick, crediting nothing",
				"session_id", id, "now", now, "last_tick", s.LastTick)
		}
		u := store.Update{ID: id, ExpectedTick: s.LastTick, Credit: credit, Status: status, Tick: tick}
		if o.end {
			end := now
			u.EndTime = &end
		}

		ok, err := svc.store.Transition(u)
		if err != nil {
			return nil, err
		}
		if ok {
			s.TotalSeconds += credit
			s.Status = status
			s.LastTick = tick.UTC()
			if u.EndTime != nil {
				end := u.EndTime.UTC().Truncate(time.Second)
				s.EndTime = &end
			}
			return s, nil
		}
		svc.log.Debug("guarded transition lost a race, retrying", "session_id", id, "attempt", attempt+1)
	}
	return nil, apperr.Storage("transition session", fmt.Errorf("session %d: %w", id, ErrContended))
}

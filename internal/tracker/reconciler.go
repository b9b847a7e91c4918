package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/logging"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

// Reconciler periodically credits active sessions with the time since their
// last tick, bounded by MaxCredit so suspended periods are not counted.
type Reconciler struct {
	store    Store
	clock    clock.Clock
	notifier Notifier
	log      *logging.Logger
	interval time.Duration
	opts     Options
}

// NewReconciler returns a Reconciler ticking every interval.
func NewReconciler(st Store, clk clock.Clock, notifier Notifier, log *logging.Logger, interval time.Duration, opts Options) *Reconciler {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Reconciler{
		store:    st,
		clock:    clk,
		notifier: notifier,
		log:      log,
		interval: interval,
		opts:     opts,
	}
}

// KindReport describes what one tick did to one session kind.
type KindReport struct {
	Kind      store.Kind
	SessionID int64
	Credited  int64
	// Skipped is set when there was no active session to credit.
	Skipped bool
	// Regressed is set when the clock read earlier than the session's last tick.
	Regressed bool
	// Contended is set when a concurrent writer moved last_tick first.
	Contended bool
	Reminders []ReminderKind
	Err       error
}

// TickReport is the outcome of one reconciliation pass.
type TickReport struct {
	At        time.Time
	Manual    KindReport
	Automatic KindReport
}

// Run ticks until ctx is cancelled. The next tick is scheduled only after the
// previous one returns, so passes never overlap. A tick in progress when ctx
// is cancelled runs to completion.
func (r *Reconciler) Run(ctx context.Context) error {
	r.log.Info("reconciler started", "interval", r.interval, "max_credit", r.opts.MaxCredit)

	timer := time.NewTimer(r.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("reconciler stopped")
			return nil
		case <-timer.C:
			report := r.Tick(ctx)
			r.logReport(report)
			timer.Reset(r.interval)
		}
	}
}

// Tick runs one reconciliation pass over both session kinds. The goal
// settings are read once per pass and handed to the manual evaluation.
func (r *Reconciler) Tick(ctx context.Context) TickReport {
	now := r.clock.Now()

	cfg, err := settings.Load(r.store, r.opts.Goals)
	if err != nil {
		r.log.Warn("goal settings unreadable, using what could be loaded", "error", err)
	}

	return TickReport{
		At:        now,
		Manual:    r.reconcile(ctx, store.KindManual, now, &cfg),
		Automatic: r.reconcile(ctx, store.KindAutomatic, now, nil),
	}
}

// reconcile credits one kind. goals is nil for kinds without reminders.
func (r *Reconciler) reconcile(ctx context.Context, kind store.Kind, now time.Time, goals *settings.Settings) (rep KindReport) {
	rep.Kind = kind
	defer func() {
		// A panic in one kind must not take down the loop or the other kind.
		if p := recover(); p != nil {
			r.log.Error("reconcile panicked", "kind", kind, "panic", p)
			rep.Err = fmt.Errorf("reconcile %s: panic: %v", kind, p)
		}
	}()

	var s *store.Session
	if kind == store.KindAutomatic {
		s, rep.Err = r.store.AutomaticSession(clock.Date(now), now)
	} else {
		s, rep.Err = r.store.OpenSession(kind)
	}
	if rep.Err != nil {
		return rep
	}
	if s == nil || s.Status != store.StatusActive {
		rep.Skipped = true
		return rep
	}
	rep.SessionID = s.ID

	credit, tick, regressed := pending(s, now, r.opts.MaxCredit)
	if regressed {
		rep.Regressed = true
		r.log.Warn("clock reads earlier than last tick, crediting nothing",
			"kind", kind, "session_id", s.ID, "now", now, "last_tick", s.LastTick)
		return rep
	}

	ok, err := r.store.Advance(store.Update{ID: s.ID, ExpectedTick: s.LastTick, Credit: credit, Tick: tick})
	if err != nil {
		rep.Err = err
		return rep
	}
	if !ok {
		// Someone settled this interval first; the next tick measures from
		// their anchor.
		rep.Contended = true
		return rep
	}
	rep.Credited = credit
	s.TotalSeconds += credit

	if goals != nil {
		rep.Reminders = r.remind(ctx, s, *goals)
	}
	return rep
}

func (r *Reconciler) logReport(report TickReport) {
	for _, k := range []KindReport{report.Manual, report.Automatic} {
		if k.Err != nil {
			r.log.Error("reconcile failed", "kind", k.Kind, "session_id", k.SessionID, "error", k.Err)
			continue
		}
		if k.Skipped {
			continue
		}
		r.log.Debug("reconciled", "kind", k.Kind, "session_id", k.SessionID,
			"credited", k.Credited, "contended", k.Contended)
	}
}

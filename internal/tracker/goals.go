package tracker

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

// Reminder is a notification the goal evaluation decided to send.
type Reminder struct {
	Kind    ReminderKind
	Title   string
	Message string
}

// ReminderKind distinguishes goal and break reminders.
type ReminderKind string

const (
	ReminderGoal  ReminderKind = "goal"
	ReminderBreak ReminderKind = "break"
)

// dueReminders decides which reminders s has earned under cfg. It does not
// claim them.
func dueReminders(s *store.Session, cfg settings.Settings) []Reminder {
	var due []Reminder

	goal := cfg.GoalSeconds()
	if goal > 0 && s.TotalSeconds >= goal && !s.Notified {
		due = append(due, Reminder{
			Kind:    ReminderGoal,
			Title:   "Goal Achieved!",
			Message: fmt.Sprintf("You've worked %dh %dm today. Great job!", cfg.GoalHours, cfg.GoalMinutes),
		})
	}

	interval := cfg.BreakSeconds()
	if interval > 0 && s.TotalSeconds-s.LastBreakNotify >= interval {
		due = append(due, Reminder{
			Kind:    ReminderBreak,
			Title:   "Time for a break",
			Message: fmt.Sprintf("You've been working for %d minutes. Stretch your legs!", cfg.BreakInterval),
		})
	}
	return due
}

// remind claims and sends every reminder s has earned. A claim that fails
// means another writer already sent it. Delivery failures are logged only.
func (r *Reconciler) remind(ctx context.Context, s *store.Session, cfg settings.Settings) []ReminderKind {
	var sent []ReminderKind
	for _, rem := range dueReminders(s, cfg) {
		var claimed bool
		var err error
		switch rem.Kind {
		case ReminderGoal:
			claimed, err = r.store.ClaimGoalNotification(s.ID)
		case ReminderBreak:
			claimed, err = r.store.ClaimBreakReminder(s.ID, s.LastBreakNotify, s.TotalSeconds)
		}
		if err != nil {
			r.log.Error("claiming reminder failed", "session_id", s.ID, "reminder", rem.Kind, "error", err)
			continue
		}
		if !claimed {
			continue
		}

		if err := r.notifier.Notify(ctx, rem.Title, rem.Message); err != nil {
			r.log.Warn("reminder not delivered", "session_id", s.ID, "reminder", rem.Kind,
				"error", apperr.Notification("notify", err))
		}
		r.log.Info("reminder sent", "session_id", s.ID, "reminder", rem.Kind, "total_seconds", s.TotalSeconds)
		sent = append(sent, rem.Kind)
	}
	return sent
}

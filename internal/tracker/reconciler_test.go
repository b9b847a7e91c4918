package tracker

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

func setGoals(t *testing.T, h *harness, hours, minutes, breakMinutes int) {
	t.Helper()
	require.NoError(t, h.db.SetSettings(map[string]string{
		settings.KeyGoalHours:     strconv.Itoa(hours),
		settings.KeyGoalMinutes:   strconv.Itoa(minutes),
		settings.KeyBreakInterval: strconv.Itoa(breakMinutes),
	}))
}

func TestTick_CreditsElapsedSeconds(t *testing.T) {
	h := newHarness(t, testOptions())
	s, err := h.svc.Start(context.Background())
	require.NoError(t, err)

	now := h.clock.Advance(5 * time.Second)
	rep := h.rec.Tick(context.Background())

	assert.Equal(t, int64(5), rep.Manual.Credited)
	got := h.session(t, s.ID)
	assert.Equal(t, int64(5), got.TotalSeconds)
	assert.True(t, got.LastTick.Equal(now))
}

func TestTick_SleepGapIsClamped(t *testing.T) {
	h := newHarness(t, testOptions())
	s, err := h.svc.Start(context.Background())
	require.NoError(t, err)

	now := h.clock.Advance(2 * time.Hour)
	rep := h.rec.Tick(context.Background())

	assert.Equal(t, int64(10), rep.Manual.Credited, "only CAP seconds of a 7200s gap are credited")
	got := h.session(t, s.ID)
	assert.Equal(t, int64(10), got.TotalSeconds)
	assert.True(t, got.LastTick.Equal(now), "last_tick re-anchors to now after a clamped tick")
}

func TestTick_ClockRegressionCreditsNothing(t *testing.T) {
	h := newHarness(t, testOptions())
	s, err := h.svc.Start(context.Background())
	require.NoError(t, err)

	h.clock.Advance(-30 * time.Second)
	rep := h.rec.Tick(context.Background())

	assert.True(t, rep.Manual.Regressed)
	assert.Equal(t, int64(0), rep.Manual.Credited)
	got := h.session(t, s.ID)
	assert.Equal(t, int64(0), got.TotalSeconds)
	assert.True(t, got.LastTick.Equal(t0), "last_tick never moves backward")

	// Once the clock catches up, crediting resumes from the original anchor.
	h.clock.Set(t0.Add(4 * time.Second))
	rep = h.rec.Tick(context.Background())
	assert.Equal(t, int64(4), rep.Manual.Credited)
}

func TestTick_SkipsPausedAndMissingSessions(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()

	rep := h.rec.Tick(ctx)
	assert.True(t, rep.Manual.Skipped, "no manual session")
	assert.False(t, rep.Automatic.Skipped, "today's automatic session is created and active")

	s, err := h.svc.Start(ctx)
	require.NoError(t, err)
	_, err = h.svc.HandleEvent(ctx, "lock")
	require.NoError(t, err)

	h.clock.Advance(5 * time.Second)
	rep = h.rec.Tick(ctx)
	assert.True(t, rep.Manual.Skipped)
	assert.True(t, rep.Automatic.Skipped)
	assert.Equal(t, int64(0), h.session(t, s.ID).TotalSeconds)
}

func TestTick_KindsAreIndependent(t *testing.T) {
	h := newHarness(t, testOptions())
	_, err := h.svc.Start(context.Background())
	require.NoError(t, err)

	rec := NewReconciler(failingStore{DB: h.db, failKind: store.KindManual}, h.clock, h.notifier, nil, time.Second, testOptions())
	rec.Tick(context.Background())
	h.clock.Advance(5 * time.Second)
	rep := rec.Tick(context.Background())

	assert.ErrorIs(t, rep.Manual.Err, errInjected)
	assert.NoError(t, rep.Automatic.Err)
	assert.Equal(t, int64(5), rep.Automatic.Credited)
}

func TestTick_LosesRaceToConcurrentPause(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	s, err := h.svc.Start(ctx)
	require.NoError(t, err)

	h.clock.Advance(5 * time.Second)
	stale := h.session(t, s.ID)
	_, err = h.svc.Pause(ctx)
	require.NoError(t, err)

	// A tick that read the session before the pause cannot credit it again.
	ok, err := h.db.Advance(store.Update{ID: stale.ID, ExpectedTick: stale.LastTick, Credit: 5, Tick: h.clock.Now()})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, int64(5), h.session(t, s.ID).TotalSeconds)
}

func TestGoal_FiresOncePerSession(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	setGoals(t, h, 0, 1, 0)

	_, err := h.svc.Start(ctx)
	require.NoError(t, err)

	for i := 0; i < 13; i++ {
		h.clock.Advance(5 * time.Second)
		h.rec.Tick(ctx)
	}
	assert.Equal(t, []string{"Goal Achieved!"}, h.notifier.titles())

	// Cross the threshold again via pause/resume.
	_, err = h.svc.Pause(ctx)
	require.NoError(t, err)
	h.clock.Advance(time.Minute)
	_, err = h.svc.Start(ctx)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		h.clock.Advance(5 * time.Second)
		h.rec.Tick(ctx)
	}
	assert.Len(t, h.notifier.titles(), 1, "goal notification fires at most once")
}

func TestGoal_ZeroGoalNeverFires(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	setGoals(t, h, 0, 0, 0)

	_, err := h.svc.Start(ctx)
	require.NoError(t, err)
	h.clock.Advance(5 * time.Second)
	h.rec.Tick(ctx)
	assert.Empty(t, h.notifier.titles())
}

func TestBreak_Cadence(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	setGoals(t, h, 0, 0, 60)

	s, err := h.svc.Start(ctx)
	require.NoError(t, err)

	h.addSeconds(t, s.ID, 3595)
	h.clock.Advance(5 * time.Second)
	rep := h.rec.Tick(ctx)
	assert.Equal(t, []ReminderKind{ReminderBreak}, rep.Manual.Reminders)
	assert.Equal(t, int64(3600), h.session(t, s.ID).LastBreakNotify)

	h.addSeconds(t, s.ID, 3594)
	h.clock.Advance(5 * time.Second)
	rep = h.rec.Tick(ctx)
	assert.Equal(t, int64(7199), h.session(t, s.ID).TotalSeconds)
	assert.Empty(t, rep.Manual.Reminders, "7199s is short of the next reminder")

	h.clock.Advance(time.Second)
	rep = h.rec.Tick(ctx)
	assert.Equal(t, []ReminderKind{ReminderBreak}, rep.Manual.Reminders)
	assert.Equal(t, int64(7200), h.session(t, s.ID).LastBreakNotify)
	assert.Equal(t, []string{"Time for a break", "Time for a break"}, h.notifier.titles())
}

func TestBreak_NotificationFailureIsSwallowed(t *testing.T) {
	h := newHarness(t, testOptions())
	ctx := context.Background()
	setGoals(t, h, 0, 0, 1)
	h.notifier.err = assert.AnError

	s, err := h.svc.Start(ctx)
	require.NoError(t, err)
	h.addSeconds(t, s.ID, 55)
	h.clock.Advance(5 * time.Second)

	rep := h.rec.Tick(ctx)
	assert.NoError(t, rep.Manual.Err)
	assert.Equal(t, []ReminderKind{ReminderBreak}, rep.Manual.Reminders)
	assert.Equal(t, int64(60), h.session(t, s.ID).LastBreakNotify, "claim stands even if delivery failed")
}

func TestDueReminders(t *testing.T) {
	cfg := settings.Settings{GoalHours: 1, BreakInterval: 30}

	tests := []struct {
		name string
		s    store.Session
		want []ReminderKind
	}{
		{"nothing yet", store.Session{TotalSeconds: 1799}, nil},
		{"first break", store.Session{TotalSeconds: 1800}, []ReminderKind{ReminderBreak}},
		{"goal and break", store.Session{TotalSeconds: 3600, LastBreakNotify: 1800}, []ReminderKind{ReminderGoal, ReminderBreak}},
		{"goal already sent", store.Session{TotalSeconds: 3700, Notified: true, LastBreakNotify: 3600}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var kinds []ReminderKind
			for _, r := range dueReminders(&tc.s, cfg) {
				kinds = append(kinds, r.Kind)
			}
			assert.Equal(t, tc.want, kinds)
		})
	}
}

func TestRun_TicksUntilCancelled(t *testing.T) {
	h := newHarness(t, testOptions())
	counting := &countingStore{DB: h.db}

	rec := NewReconciler(counting, h.clock, nil, nil, 5*time.Millisecond, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rec.Run(ctx) }()

	require.Eventually(t, func() bool { return counting.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

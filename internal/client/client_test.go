package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/config"
	"github.com/blackwell-systems/workclock/internal/logging"
	"github.com/blackwell-systems/workclock/internal/server"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
	"github.com/blackwell-systems/workclock/internal/tracker"
	"github.com/blackwell-systems/workclock/internal/usage"
)

var t0 = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*Client, *clock.Manual) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clk := clock.NewManual(t0)
	defaults := settings.Defaults(config.DefaultGoal)
	svc := tracker.NewService(db, clk, logging.Nop(), tracker.Options{
		MaxCredit:            10 * time.Second,
		ResumeManualOnUnlock: true,
		Goals:                defaults,
	})
	settingsH := server.NewSettingsHandler(db, defaults, logging.Nop())
	router := server.NewRouter(server.RouterConfig{
		Logger:          logging.Nop(),
		SessionHandler:  server.NewSessionHandler(svc),
		SettingsHandler: settingsH,
		UsageHandler:    server.NewUsageHandler(usage.NewTracker(db, clk), settingsH),
		ReportHandler:   server.NewReportHandler(db, clk),
		HealthHandler:   server.NewHealthHandler(),
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return New(ts.URL + "/"), clk
}

func TestClient_SessionLifecycle(t *testing.T) {
	c, clk := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, c.Healthy(ctx))

	s, err := c.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.StatusActive, s.Status)

	clk.Advance(4 * time.Second)
	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Manual.DisplaySeconds)
	assert.Equal(t, int64(10), st.MaxCreditSeconds)

	s, err = c.Pause(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.StatusPaused, s.Status)
	assert.Equal(t, int64(4), s.TotalSeconds)

	s, err = c.Stop(ctx)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, s.Status)

	reports, err := c.Reports(ctx)
	require.NoError(t, err)
	require.Len(t, reports.Daily, 1)
}

func TestClient_ErrorMapping(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	_, err := c.Pause(ctx)
	assert.True(t, errors.Is(err, apperr.ErrNotFound), "got %v", err)

	_, err = c.SendEvent(ctx, "reboot")
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument), "got %v", err)

	err = c.Heartbeat(ctx, usage.Heartbeat{AppName: "", Seconds: 5})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument), "got %v", err)
}

func TestClient_EventsAndSettings(t *testing.T) {
	c, _ := newTestServer(t)
	ctx := context.Background()

	res, err := c.SendEvent(ctx, "unlock")
	require.NoError(t, err)
	require.NotNil(t, res.Automatic)
	assert.Equal(t, store.StatusActive, res.Automatic.Status)

	hours := 6
	require.NoError(t, c.UpdateSettings(ctx, settings.Patch{GoalHours: &hours}))
	got, err := c.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6, got.GoalHours)
	assert.Equal(t, "{}", got.CustomAppCategories)

	require.NoError(t, c.Heartbeat(ctx, usage.Heartbeat{AppName: "Code", Seconds: 30}))
}

func TestClient_Unreachable(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.Status(context.Background())
	assert.Error(t, err)
	assert.Error(t, c.Healthy(context.Background()))
}

func TestClient_UsageAndEvents(t *testing.T) {
	c, clk := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, c.Heartbeat(ctx, usage.Heartbeat{AppName: "Slack", Seconds: 20}))
	require.NoError(t, c.Heartbeat(ctx, usage.Heartbeat{AppName: "Code", Seconds: 90}))

	rows, err := c.AppUsage(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Code", rows[0].AppName)

	cats, err := c.Categories(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cats)

	_, err = c.SendEvent(ctx, "unlock")
	require.NoError(t, err)
	clk.Advance(time.Minute)
	_, err = c.SendEvent(ctx, "lock")
	require.NoError(t, err)

	events, err := c.TodayEvents(ctx, store.KindAutomatic)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, store.EventUnlock, events[0].EventType)
}

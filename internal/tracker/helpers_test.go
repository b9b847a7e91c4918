package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/config"
	"github.com/blackwell-systems/workclock/internal/logging"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

var t0 = time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)

type sentMessage struct {
	Title   string
	Message string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{title, message})
	return n.err
}

func (n *recordingNotifier) titles() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []string
	for _, m := range n.sent {
		out = append(out, m.Title)
	}
	return out
}

type harness struct {
	db       *store.DB
	clock    *clock.Manual
	notifier *recordingNotifier
	svc      *Service
	rec      *Reconciler
}

func testOptions() Options {
	return Options{
		MaxCredit:            10 * time.Second,
		ResumeManualOnUnlock: true,
		Goals:                settings.Defaults(config.DefaultGoal),
	}
}

func newHarness(t testing.TB, opts Options) *harness {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	h := &harness{
		db:       db,
		clock:    clock.NewManual(t0),
		notifier: &recordingNotifier{},
	}
	h.svc = NewService(db, h.clock, logging.Nop(), opts)
	h.rec = NewReconciler(db, h.clock, h.notifier, logging.Nop(), 5*time.Second, opts)
	return h
}

func (h *harness) session(t testing.TB, id int64) *store.Session {
	t.Helper()
	s, err := h.db.GetSession(id)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// addSeconds forces a session's accumulated seconds without moving its tick.
func (h *harness) addSeconds(t testing.TB, id int64, seconds int64) {
	t.Helper()
	s := h.session(t, id)
	ok, err := h.db.Advance(store.Update{ID: id, ExpectedTick: s.LastTick, Credit: seconds, Tick: s.LastTick})
	require.NoError(t, err)
	require.True(t, ok)
}

// failingStore fails OpenSession for one kind and delegates everything else.
type failingStore struct {
	*store.DB
	failKind store.Kind
}

var errInjected = errors.New("injected failure")

func (f failingStore) OpenSession(kind store.Kind) (*store.Session, error) {
	if kind == f.failKind {
		return nil, errInjected
	}
	return f.DB.OpenSession(kind)
}

// countingStore counts reconciliation lookups.
type countingStore struct {
	*store.DB
	mu    sync.Mutex
	opens int
}

func (c *countingStore) OpenSession(kind store.Kind) (*store.Session, error) {
	c.mu.Lock()
	c.opens++
	c.mu.Unlock()
	return c.DB.OpenSession(kind)
}

func (c *countingStore) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens
}

package idle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu   sync.Mutex
	idle time.Duration
	err  error
}

func (f *fakeProvider) set(d time.Duration) {
	f.mu.Lock()
	f.idle = d
	f.mu.Unlock()
}

func (f *fakeProvider) IdleDuration(context.Context) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idle, f.err
}

type recorder struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (r *recorder) handle(_ context.Context, event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func TestCheck_EmitsLockThenUnlockOnce(t *testing.T) {
	p := &fakeProvider{}
	rec := &recorder{}
	m := NewMonitor(p, rec.handle, 5*time.Minute, time.Second, nil)
	ctx := context.Background()

	steps := []time.Duration{
		time.Minute,
		5 * time.Minute, // crosses threshold
		6 * time.Minute, // still idle, no repeat
		2 * time.Second, // input resumed
		3 * time.Second,
	}
	for _, d := range steps {
		p.set(d)
		require.NoError(t, m.Check(ctx))
	}

	assert.Equal(t, []string{"lock", "unlock"}, rec.snapshot())
	assert.False(t, m.Idle())
}

func TestCheck_HandlerFailureRetriesNextPoll(t *testing.T) {
	p := &fakeProvider{idle: 10 * time.Minute}
	rec := &recorder{err: errors.New("server down")}
	m := NewMonitor(p, rec.handle, 5*time.Minute, time.Second, nil)

	assert.Error(t, m.Check(context.Background()))
	assert.False(t, m.Idle(), "state only flips once the event is delivered")

	rec.err = nil
	require.NoError(t, m.Check(context.Background()))
	assert.True(t, m.Idle())
	assert.Equal(t, []string{"lock"}, rec.snapshot())
}

func TestRun_StopsWhenUnsupported(t *testing.T) {
	p := &fakeProvider{err: ErrUnsupported}
	m := NewMonitor(p, (&recorder{}).handle, time.Minute, time.Millisecond, nil)

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept polling an unsupported provider")
	}
}

func TestRun_EmitsAndStopsOnCancel(t *testing.T) {
	p := &fakeProvider{idle: time.Hour}
	rec := &recorder{}
	m := NewMonitor(p, rec.handle, time.Minute, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx) }()

	require.Eventually(t, func() bool { return len(rec.snapshot()) == 1 }, 2*time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}

func TestParseMillis(t *testing.T) {
	d, err := parseMillis("1500\n")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, d)

	d, err = parseMillis("-3")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), d)

	_, err = parseMillis("abc")
	assert.Error(t, err)
}

func TestParseHIDIdleTime(t *testing.T) {
	out := `+-o IOHIDSystem  <class IOHIDSystem>
    {
      "HIDIdleTime" = 2500000000
      "HIDParameters" = {}
    }`
	d, err := parseHIDIdleTime(out)
	require.NoError(t, err)
	assert.Equal(t, 2500*time.Millisecond, d)

	_, err = parseHIDIdleTime("nothing here")
	assert.Error(t, err)
}

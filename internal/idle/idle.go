// Package idle turns input inactivity into synthetic lock and unlock events.
package idle

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/blackwell-systems/workclock/internal/logging"
)

// ErrUnsupported indicates idle detection is not available on this system.
var ErrUnsupported = errors.New("idle detection unsupported")

// Provider reports how long the user has been away from keyboard and pointer.
type Provider interface {
	IdleDuration(ctx context.Context) (time.Duration, error)
}

// Handler receives the synthetic "lock" and "unlock" events.
type Handler func(ctx context.Context, event string) error

// Monitor polls a Provider and emits "lock" once the idle time crosses the
// threshold, then "unlock" when input resumes. It is not safe for
// concurrent use; Run owns it.
type Monitor struct {
	provider  Provider
	handler   Handler
	threshold time.Duration
	interval  time.Duration
	log       *logging.Logger

	idle bool
}

// NewMonitor returns a Monitor polling every interval.
func NewMonitor(p Provider, h Handler, threshold, interval time.Duration, log *logging.Logger) *Monitor {
	if log == nil {
		log = logging.Nop()
	}
	return &Monitor{provider: p, handler: h, threshold: threshold, interval: interval, log: log}
}

// Idle reports whether the monitor has emitted a lock not yet followed by an unlock.
func (m *Monitor) Idle() bool {
	return m.idle
}

// Run polls until ctx is cancelled. It returns nil without polling further
// when the provider reports ErrUnsupported.
func (m *Monitor) Run(ctx context.Context) error {
	m.log.Info("idle monitor started", "threshold", m.threshold, "interval", m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := m.Check(ctx)
			if errors.Is(err, ErrUnsupported) {
				m.log.Warn("idle detection unavailable, monitor disabled", "error", err)
				return nil
			}
			if err != nil {
				m.log.Warn("idle check failed", "error", err)
			}
		}
	}
}

// Check polls once and emits an event if the idle state changed.
func (m *Monitor) Check(ctx context.Context) error {
	d, err := m.provider.IdleDuration(ctx)
	if err != nil {
		return err
	}

	switch {
	case !m.idle && d >= m.threshold:
		if err := m.handler(ctx, "lock"); err != nil {
			return fmt.Errorf("emitting idle lock: %w", err)
		}
		m.idle = true
		m.log.Info("user idle, session paused", "idle_for", d)
	case m.idle && d < m.threshold:
		if err := m.handler(ctx, "unlock"); err != nil {
			return fmt.Errorf("emitting idle unlock: %w", err)
		}
		m.idle = false
		m.log.Info("user active again, session resumed", "idle_for", d)
	}
	return nil
}

// parseMillis parses xprintidle output: idle time in milliseconds.
func parseMillis(out string) (time.Duration, error) {
	value := strings.TrimSpace(out)
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds %q: %w", value, err)
	}
	if ms < 0 {
		ms = 0
	}
	return time.Duration(ms) * time.Millisecond, nil
}

var hidIdleTime = regexp.MustCompile(`"HIDIdleTime"\s*=\s*(\d+)`)

// parseHIDIdleTime extracts HIDIdleTime (nanoseconds) from `ioreg -c IOHIDSystem` output.
func parseHIDIdleTime(out string) (time.Duration, error) {
	m := hidIdleTime.FindStringSubmatch(out)
	if m == nil {
		return 0, errors.New("HIDIdleTime not found in ioreg output")
	}
	ns, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse HIDIdleTime: %w", err)
	}
	return time.Duration(ns), nil
}

package apperr

import (
	"errors"
	"testing"
)

func TestStorage_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := Storage("open session", cause)

	if !errors.Is(err, ErrStorage) {
		t.Error("expected error to match ErrStorage")
	}
	if !errors.Is(err, cause) {
		t.Error("expected error to match the underlying cause")
	}
	if got, want := err.Error(), "open session: disk I/O error"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestStorage_NilAndRewrap(t *testing.T) {
	if Storage("noop", nil) != nil {
		t.Error("expected nil for nil cause")
	}

	first := Storage("inner", errors.New("boom"))
	if again := Storage("outer", first); again != first {
		t.Error("expected an existing storage error to be returned unchanged")
	}
}

func TestNotFoundAndInvalid(t *testing.T) {
	nf := NotFound("no active %s session", "manual")
	if !errors.Is(nf, ErrNotFound) {
		t.Error("expected ErrNotFound")
	}
	if nf.Error() != "no active manual session: not found" {
		t.Errorf("unexpected message %q", nf.Error())
	}

	inv := Invalid("unknown event %q", "reboot")
	if !errors.Is(inv, ErrInvalidArgument) {
		t.Error("expected ErrInvalidArgument")
	}
	if errors.Is(inv, ErrNotFound) {
		t.Error("invalid argument must not match ErrNotFound")
	}
}

func TestNotification(t *testing.T) {
	err := Notification("notify goal", errors.New("osascript missing"))
	if !errors.Is(err, ErrNotification) {
		t.Error("expected ErrNotification")
	}
	if errors.Is(err, ErrStorage) {
		t.Error("notification error must not match ErrStorage")
	}
}

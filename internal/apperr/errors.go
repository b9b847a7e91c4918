// Package apperr defines the error taxonomy shared by workclock components.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the operation needs a session or state that does not exist,
	// such as pausing when nothing is active.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument means the caller supplied a malformed value.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrStorage wraps failures reported by the session store.
	ErrStorage = errors.New("storage failure")

	// ErrNotification wraps failures of best-effort notification delivery.
	ErrNotification = errors.New("notification failure")
)

// wrapped pairs a taxonomy sentinel with the underlying cause so errors.Is
// matches both.
type wrapped struct {
	kind  error
	op    string
	cause error
}

func (w *wrapped) Error() string {
	if w.cause == nil {
		return fmt.Sprintf("%s: %v", w.op, w.kind)
	}
	return fmt.Sprintf("%s: %v", w.op, w.cause)
}

func (w *wrapped) Unwrap() []error {
	if w.cause == nil {
		return []error{w.kind}
	}
	return []error{w.kind, w.cause}
}

// Storage marks err as a store failure during op. A nil err yields nil.
func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return &wrapped{kind: ErrStorage, op: op, cause: err}
}

// Notification marks err as a notification delivery failure. A nil err yields nil.
func Notification(op string, err error) error {
	if err == nil {
		return nil
	}
	return &wrapped{kind: ErrNotification, op: op, cause: err}
}

// NotFound returns an ErrNotFound with a description of what was missing.
func NotFound(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrNotFound)
}

// Invalid returns an ErrInvalidArgument with a description of the bad input.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidArgument)
}

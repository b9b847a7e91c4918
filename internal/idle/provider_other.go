//go:build !linux && !darwin

package idle

import (
	"context"
	"time"
)

type unsupported struct{}

// NewProvider returns a provider that always reports ErrUnsupported.
func NewProvider() Provider {
	return unsupported{}
}

func (unsupported) IdleDuration(context.Context) (time.Duration, error) {
	return 0, ErrUnsupported
}

package idle

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

type xprintidle struct {
	path string
}

type unsupported struct{}

// NewProvider returns the xprintidle-backed provider, or one that reports
// ErrUnsupported when xprintidle is not installed.
func NewProvider() Provider {
	path, err := exec.LookPath("xprintidle")
	if err != nil {
		return unsupported{}
	}
	return &xprintidle{path: path}
}

func (p *xprintidle) IdleDuration(ctx context.Context) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, p.path).Output()
	if err != nil {
		return 0, fmt.Errorf("xprintidle: %w", err)
	}
	return parseMillis(string(out))
}

func (unsupported) IdleDuration(context.Context) (time.Duration, error) {
	return 0, ErrUnsupported
}

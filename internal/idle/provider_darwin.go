package idle

import (
	"context"
	"fmt"
	"os/exec"
	"time"
)

type ioreg struct{}

// NewProvider returns a provider reading HIDIdleTime through ioreg.
func NewProvider() Provider {
	return ioreg{}
}

func (ioreg) IdleDuration(ctx context.Context) (time.Duration, error) {
	out, err := exec.CommandContext(ctx, "ioreg", "-c", "IOHIDSystem", "-d", "4").Output()
	if err != nil {
		return 0, fmt.Errorf("ioreg: %w", err)
	}
	return parseHIDIdleTime(string(out))
}

// Package notify delivers goal and break reminders as desktop notifications.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
)

// appName prefixes every notification.
const appName = "workclock"

// Desktop sends notifications through the platform's notification tool. On
// macOS it uses osascript, on Linux notify-send. When neither is usable it
// writes the message to Fallback (stderr by default).
type Desktop struct {
	// Fallback receives messages no desktop tool could deliver.
	Fallback io.Writer

	goos     string
	lookPath func(string) (string, error)
	run      func(ctx context.Context, name string, args ...string) error
}

// NewDesktop returns a notifier for the running platform.
func NewDesktop() *Desktop {
	return &Desktop{
		Fallback: os.Stderr,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Notify shows title and message. It only fails when even the fallback
// writer fails.
func (d *Desktop) Notify(ctx context.Context, title, message string) error {
	switch d.goos {
	case "darwin":
		return d.notifyMacOS(ctx, title, message)
	case "linux":
		return d.notifyLinux(ctx, title, message)
	default:
		return d.notifyFallback(title, message)
	}
}

// Tool names the external command Notify will use, or "" when messages go
// to the fallback writer.
func (d *Desktop) Tool() string {
	var tool string
	switch d.goos {
	case "darwin":
		tool = "osascript"
	case "linux":
		tool = "notify-send"
	default:
		return ""
	}
	if _, err := d.lookPath(tool); err != nil {
		return ""
	}
	return tool
}

func (d *Desktop) notifyMacOS(ctx context.Context, title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q subtitle %q`, message, appName, title)
	if err := d.run(ctx, "osascript", "-e", script); err != nil {
		return d.notifyFallback(title, message)
	}
	return nil
}

func (d *Desktop) notifyLinux(ctx context.Context, title, message string) error {
	if _, err := d.lookPath("notify-send"); err != nil {
		return d.notifyFallback(title, message)
	}
	if err := d.run(ctx, "notify-send", appName+": "+title, message); err != nil {
		return d.notifyFallback(title, message)
	}
	return nil
}

func (d *Desktop) notifyFallback(title, message string) error {
	w := d.Fallback
	if w == nil {
		w = os.Stderr
	}
	_, err := fmt.Fprintf(w, "[%s] %s: %s\n", appName, title, message)
	return err
}

//go:build windows

package app

import (
	"fmt"
	"io"
	"os"
)

var shutdownSignals = []os.Signal{os.Interrupt}

// stopDaemon kills the daemon named in the PID file; Windows has no SIGTERM.
func stopDaemon(w io.Writer) error {
	pid, err := readPID(pidFilePath())
	if err != nil {
		return fmt.Errorf("no daemon running (could not read PID file: %v)", err)
	}

	if !processExists(pid) {
		_ = os.Remove(pidFilePath())
		return fmt.Errorf("no daemon running (PID %d is not active, cleaned up stale PID file)", pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process (PID %d): %w", pid, err)
	}
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to stop daemon (PID %d): %w", pid, err)
	}

	_ = os.Remove(pidFilePath())
	_, _ = fmt.Fprintf(w, "Stopped daemon (PID %d)\n", pid)
	return nil
}

func processExists(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(os.Signal(nil)) == nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/client"
	"github.com/blackwell-systems/workclock/internal/config"
	"github.com/blackwell-systems/workclock/internal/idle"
	"github.com/blackwell-systems/workclock/internal/notify"
	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the workclock setup is healthy",
	Long: `Run a series of health checks against your workclock configuration,
database, server and desktop integration. Prints a pass/fail line for each
check and a summary of how many checks passed.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	c, cfg, err := newClient()
	if err != nil {
		// A broken config is itself the finding.
		return renderDoctor(cmd.OutOrStdout(), []doctorCheck{{
			Name:    "Configuration",
			Message: err.Error(),
		}})
	}

	checks := []doctorCheck{
		{Name: "Configuration", Passed: true, Message: fmt.Sprintf("server %s, tick %s, cap %s",
			cfg.Server.Addr(), cfg.Tracker.TickInterval, cfg.Tracker.MaxCredit)},
		checkDatabase(config.DBPath()),
		checkServer(ctx, c),
		checkDaemon(pidFilePath()),
		checkNotifier(cfg.Notify.Enabled, notify.NewDesktop()),
		checkIdle(ctx, cfg.Idle.Enabled, idle.NewProvider()),
	}
	return renderDoctor(cmd.OutOrStdout(), checks)
}

func renderDoctor(w io.Writer, checks []doctorCheck) error {
	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return writeJSON(w, doctorOutput{Checks: checks, PassedCount: passed, TotalCount: len(checks)})
	}

	_, _ = fmt.Fprintln(w, output.Section("Doctor"))
	_, _ = fmt.Fprintln(w)
	for _, c := range checks {
		indicator := output.StyleSuccess.Render("✓")
		if !c.Passed {
			indicator = output.StyleWarning.Render("✗")
		}
		_, _ = fmt.Fprintf(w, "  %s  %-24s %s\n", indicator, output.StyleBold.Render(c.Name), output.StyleMuted.Render(c.Message))
	}
	_, _ = fmt.Fprintln(w)

	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		_, _ = fmt.Fprintf(w, " %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		_, _ = fmt.Fprintf(w, " %s\n\n", output.StyleWarning.Render(summary))
	}
	return nil
}

// checkDatabase opens the database and reads the goal settings from it.
func checkDatabase(path string) doctorCheck {
	const name = "SQLite database"
	if _, err := os.Stat(path); err != nil {
		return doctorCheck{Name: name, Message: fmt.Sprintf("not found at %s (run 'workclock serve' to create)", path)}
	}
	db, err := store.Open(path)
	if err != nil {
		return doctorCheck{Name: name, Message: fmt.Sprintf("cannot open %s: %v", path, err)}
	}
	defer func() { _ = db.Close() }()

	if _, err := settings.Load(db, settings.Defaults(config.DefaultGoal)); err != nil {
		return doctorCheck{Name: name, Message: fmt.Sprintf("settings unreadable: %v", err)}
	}
	return doctorCheck{Name: name, Passed: true, Message: path}
}

type healthChecker interface {
	Healthy(ctx context.Context) error
	BaseURL() string
}

var _ healthChecker = (*client.Client)(nil)

func checkServer(ctx context.Context, c healthChecker) doctorCheck {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.Healthy(ctx); err != nil {
		return doctorCheck{Name: "Server", Message: fmt.Sprintf("unreachable at %s", c.BaseURL())}
	}
	return doctorCheck{Name: "Server", Passed: true, Message: c.BaseURL()}
}

// checkDaemon reports whether a background 'serve --daemon' is running.
func checkDaemon(pidPath string) doctorCheck {
	const name = "Serve daemon"
	data, err := os.ReadFile(pidPath)
	if err != nil {
		return doctorCheck{Name: name, Message: "not running (no PID file)"}
	}
	pidStr := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(pidStr)
	if err != nil {
		return doctorCheck{Name: name, Message: fmt.Sprintf("invalid PID in file: %q", pidStr)}
	}
	if !processExists(pid) {
		return doctorCheck{Name: name, Message: fmt.Sprintf("PID %d is not running (stale PID file)", pid)}
	}
	return doctorCheck{Name: name, Passed: true, Message: fmt.Sprintf("running (PID %d)", pid)}
}

type notifierTool interface {
	Tool() string
}

func checkNotifier(enabled bool, n notifierTool) doctorCheck {
	const name = "Notifications"
	if !enabled {
		return doctorCheck{Name: name, Passed: true, Message: "disabled in config"}
	}
	tool := n.Tool()
	if tool == "" {
		return doctorCheck{Name: name, Message: "no desktop notifier found; reminders go to stderr"}
	}
	return doctorCheck{Name: name, Passed: true, Message: "via " + tool}
}

func checkIdle(ctx context.Context, enabled bool, p idle.Provider) doctorCheck {
	const name = "Idle detection"
	if !enabled {
		return doctorCheck{Name: name, Passed: true, Message: "disabled in config"}
	}
	d, err := p.IdleDuration(ctx)
	switch {
	case errors.Is(err, idle.ErrUnsupported):
		return doctorCheck{Name: name, Message: err.Error()}
	case err != nil:
		return doctorCheck{Name: name, Message: fmt.Sprintf("probe failed: %v", err)}
	}
	return doctorCheck{Name: name, Passed: true, Message: fmt.Sprintf("idle for %s", d.Truncate(time.Second))}
}

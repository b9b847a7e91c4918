package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/client"
	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/tracker"
)

var watchSync time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show a live, self-updating session counter",
	Long: `Display the manual session counter, redrawn every second. The counter is
interpolated locally and re-synced with the server every --sync interval,
so it keeps running while the server is briefly unreachable (shown as
Offline) and never runs ahead of what the server will credit.

Examples:
  workclock watch               # redraw in place (ctrl-c to stop)
  workclock watch --sync 30s    # sync less often`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchSync, "sync", 0, "Server sync interval (default: client.sync_interval)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, cfg, err := newClient()
	if err != nil {
		return err
	}
	syncEvery := cfg.Client.SyncInterval
	if watchSync > 0 {
		syncEvery = watchSync
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer cancel()

	out := cmd.OutOrStdout()
	inPlace := false
	if f, ok := out.(*os.File); ok {
		inPlace = isatty.IsTerminal(f.Fd())
	}

	// Off a terminal, print one line per sync instead of redrawing.
	redraw := time.Second
	if !inPlace {
		redraw = syncEvery
	}

	lc := client.NewLiveCounter(c, clock.SystemClock{})
	err = lc.Run(ctx, syncEvery, redraw, func(r client.Reading) {
		line := liveLine(r)
		if inPlace {
			_, _ = fmt.Fprintf(out, "\r\033[K%s", line)
			return
		}
		_, _ = fmt.Fprintln(out, line)
	})
	if inPlace {
		_, _ = fmt.Fprintln(out)
	}
	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// liveLine renders a reading the way a menu bar item would.
func liveLine(r client.Reading) string {
	if !r.Synced {
		return output.StyleError.Render("Offline")
	}
	var line string
	switch r.ManualStatus {
	case tracker.StatusIdle:
		line = "Idle"
	case "paused":
		line = output.FormatHMS(r.ManualSeconds) + " " + output.StyleWarning.Render("(Paused)")
	default:
		line = output.StyleBold.Render(output.FormatHMS(r.ManualSeconds))
	}
	line += output.StyleMuted.Render("  auto " + output.FormatHMS(r.AutomaticSeconds))
	if r.Offline {
		line += " " + output.StyleError.Render("Offline")
	}
	return line
}

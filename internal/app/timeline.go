package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/store"
)

var timelineManual bool

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "List today's lock and unlock events",
	Args:  cobra.NoArgs,
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().BoolVar(&timelineManual, "manual", false, "Show events of the manual session instead of the automatic one")
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	kind := store.KindAutomatic
	if timelineManual {
		kind = store.KindManual
	}
	events, err := c.TodayEvents(cmd.Context(), kind)
	if err != nil {
		return err
	}
	if flagJSON {
		if events == nil {
			events = []store.LockEvent{}
		}
		return writeJSON(cmd.OutOrStdout(), events)
	}
	renderTimeline(cmd.OutOrStdout(), events)
	return nil
}

func renderTimeline(w io.Writer, events []store.LockEvent) {
	_, _ = fmt.Fprintln(w, output.Section("Timeline"))
	_, _ = fmt.Fprintln(w)
	if len(events) == 0 {
		_, _ = fmt.Fprintln(w, output.StyleMuted.Render(" No events today."))
		return
	}
	for _, e := range events {
		marker := output.StyleSuccess.Render("▲ unlock")
		if e.EventType == store.EventLock {
			marker = output.StyleWarning.Render("▼ lock")
		}
		_, _ = fmt.Fprintf(w, "  %s  %s\n", e.Timestamp.Local().Format("15:04:05"), marker)
	}
}

package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/tracker"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's sessions and goal progress",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	st, err := c.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("%w (is 'workclock serve' running?)", err)
	}
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), st)
	}
	renderStatus(cmd.OutOrStdout(), st)
	return nil
}

func renderStatus(w io.Writer, st *tracker.Status) {
	_, _ = fmt.Fprintln(w, output.Section("Today"))
	_, _ = fmt.Fprintln(w)
	renderSessionLine(w, "Manual", st.Manual)
	renderSessionLine(w, "Automatic", st.Automatic)
	_, _ = fmt.Fprintln(w)

	g := st.Goal
	_, _ = fmt.Fprintf(w, "  %s%s\n", output.StyleLabel.Render("Goal"),
		output.GoalBar(st.Manual.DisplaySeconds, g.GoalSeconds, g.LinePercent, 30))
	target := output.FormatDuration(g.GoalSeconds)
	if g.Reached {
		target += " " + output.StyleSuccess.Render("reached")
	}
	_, _ = fmt.Fprintf(w, "  %s%s\n", output.StyleLabel.Render("Target"), target)
	if g.BreakInterval > 0 {
		_, _ = fmt.Fprintf(w, "  %s%s\n", output.StyleLabel.Render("Break every"),
			output.FormatDuration(int64(g.BreakInterval)*60))
	}
	_, _ = fmt.Fprintln(w)
}

func renderSessionLine(w io.Writer, label string, s tracker.SessionStatus) {
	_, _ = fmt.Fprintf(w, "  %s%s  %s\n",
		output.StyleLabel.Render(label),
		output.StyleValue.Render(output.FormatHMS(s.DisplaySeconds)),
		output.StatusBadge(s.Status))
}

package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start or resume the manual session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessionAction(cmd, "Started", func(ctx context.Context, c sessionClient) (*store.Session, error) {
			return c.Start(ctx)
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause the active manual session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessionAction(cmd, "Paused", func(ctx context.Context, c sessionClient) (*store.Session, error) {
			return c.Pause(ctx)
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the manual session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessionAction(cmd, "Stopped", func(ctx context.Context, c sessionClient) (*store.Session, error) {
			return c.Stop(ctx)
		})
	},
}

var eventCmd = &cobra.Command{
	Use:   "event lock|unlock",
	Short: "Report a screen lock or unlock",
	Long: `Report a screen lock or unlock to the server. Wire this to your desktop's
lock hooks (for example a systemd-logind or Hammerspoon script) so the
automatic session follows the screen.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"lock", "unlock"},
	RunE:      runEvent,
}

func init() {
	rootCmd.AddCommand(startCmd, pauseCmd, stopCmd, eventCmd)
}

type sessionClient interface {
	Start(ctx context.Context) (*store.Session, error)
	Pause(ctx context.Context) (*store.Session, error)
	Stop(ctx context.Context) (*store.Session, error)
}

func runSessionAction(cmd *cobra.Command, verb string, call func(context.Context, sessionClient) (*store.Session, error)) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	s, err := call(cmd.Context(), c)
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), s)
	}
	renderSession(cmd.OutOrStdout(), verb, s)
	return nil
}

func renderSession(w io.Writer, verb string, s *store.Session) {
	_, _ = fmt.Fprintf(w, "%s %s session #%d  %s  %s\n",
		verb, s.Kind, s.ID,
		output.StatusBadge(string(s.Status)),
		output.StyleBold.Render(output.FormatHMS(s.TotalSeconds)))
}

func runEvent(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	res, err := c.SendEvent(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), res)
	}
	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Recorded %s\n", res.Event)
	if res.Automatic != nil {
		renderSession(w, "  ", res.Automatic)
	}
	if res.Manual != nil {
		renderSession(w, "  ", res.Manual)
	}
	return nil
}

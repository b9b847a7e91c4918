package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/store"
	"github.com/blackwell-systems/workclock/internal/usage"
)

var appsCategories bool

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Show today's foreground time per application",
	Long: `Show today's foreground time per application, or per category with
--categories. Categories combine the built-in defaults with the
customAppCategories setting; unknown apps count as Other.`,
	Args: cobra.NoArgs,
	RunE: runApps,
}

var appsRecordCmd = &cobra.Command{
	Use:   "record <app> <seconds>",
	Short: "Record foreground time for an application",
	Long: `Send an app-usage heartbeat. A foreground-app watcher calls this
periodically with the seconds since its previous report.`,
	Args: cobra.ExactArgs(2),
	RunE: runAppsRecord,
}

func init() {
	appsCmd.Flags().BoolVar(&appsCategories, "categories", false, "Group usage by category")
	appsCmd.AddCommand(appsRecordCmd)
	rootCmd.AddCommand(appsCmd)
}

func runApps(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	if appsCategories {
		cats, err := c.Categories(cmd.Context())
		if err != nil {
			return err
		}
		if flagJSON {
			return writeJSON(w, nonNil(cats))
		}
		renderCategories(w, cats)
		return nil
	}

	rows, err := c.AppUsage(cmd.Context())
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(w, nonNil(rows))
	}
	renderApps(w, rows)
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func renderApps(w io.Writer, rows []store.AppUsage) {
	_, _ = fmt.Fprintln(w, output.Section("Applications"))
	_, _ = fmt.Fprintln(w)
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, output.StyleMuted.Render(" No app usage recorded today."))
		return
	}
	tbl := output.NewTable("App", "Time").AlignRight(1)
	for _, r := range rows {
		tbl.AddRow(r.AppName, output.FormatDuration(r.TotalSeconds))
	}
	tbl.Fprint(w)
}

func renderCategories(w io.Writer, cats []usage.CategoryTotal) {
	_, _ = fmt.Fprintln(w, output.Section("Categories"))
	_, _ = fmt.Fprintln(w)
	if len(cats) == 0 {
		_, _ = fmt.Fprintln(w, output.StyleMuted.Render(" No app usage recorded today."))
		return
	}
	tbl := output.NewTable("Category", "Time").AlignRight(1)
	for _, c := range cats {
		tbl.AddRow(c.Name, output.FormatDuration(c.Seconds))
	}
	tbl.Fprint(w)
}

func runAppsRecord(cmd *cobra.Command, args []string) error {
	seconds, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("seconds must be an integer: %w", err)
	}
	hb := usage.Heartbeat{AppName: args[0], Seconds: seconds}
	if err := hb.Validate(); err != nil {
		return err
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	if err := c.Heartbeat(cmd.Context(), hb); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s for %s\n", output.FormatDuration(seconds), hb.AppName)
	return nil
}

package app

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/server"
	"github.com/blackwell-systems/workclock/internal/settings"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change goal settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change one or more goal settings",
	Long: `Change goal settings. Only the flags you pass are updated.

Examples:
  workclock settings set --goal-hours 7 --goal-minutes 30
  workclock settings set --break-interval 0          # disable break reminders
  workclock settings set --categories '{"Focus":["Code","Terminal"]}'`,
	Args: cobra.NoArgs,
	RunE: runSettingsSet,
}

var settingsExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the settings as YAML (stdout when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSettingsExport,
}

var settingsImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Apply settings from a YAML file ('-' reads stdin)",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsImport,
}

var (
	setGoalHours   int
	setGoalMinutes int
	setBreak       int
	setLinePercent int
	setCategories  string
)

func init() {
	f := settingsSetCmd.Flags()
	f.IntVar(&setGoalHours, "goal-hours", 0, "Daily goal hours (0-24)")
	f.IntVar(&setGoalMinutes, "goal-minutes", 0, "Daily goal minutes (0-59)")
	f.IntVar(&setBreak, "break-interval", 0, "Minutes between break reminders (0 disables, max 480)")
	f.IntVar(&setLinePercent, "goal-line-percent", 0, "Position of the goal line in percent (1-100)")
	f.StringVar(&setCategories, "categories", "", "Custom app categories as a JSON object of app name lists")

	settingsCmd.AddCommand(settingsSetCmd, settingsExportCmd, settingsImportCmd)
	rootCmd.AddCommand(settingsCmd)
}

// fromResponse converts the dashboard's view back into settings.
func fromResponse(r *server.SettingsResponse) (settings.Settings, error) {
	s := settings.Settings{
		GoalHours:       r.GoalHours,
		GoalMinutes:     r.GoalMinutes,
		BreakInterval:   r.BreakInterval,
		GoalLinePercent: r.GoalLinePercent,
	}
	if err := s.CustomAppCategories.UnmarshalJSON([]byte(r.CustomAppCategories)); err != nil {
		return s, err
	}
	return s, nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	resp, err := c.Settings(cmd.Context())
	if err != nil {
		return err
	}
	s, err := fromResponse(resp)
	if err != nil {
		return err
	}
	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), s)
	}
	renderSettings(cmd.OutOrStdout(), s)
	return nil
}

func renderSettings(w io.Writer, s settings.Settings) {
	_, _ = fmt.Fprintln(w, output.Section("Settings"))
	_, _ = fmt.Fprintln(w)
	row := func(label, value string) {
		_, _ = fmt.Fprintf(w, "  %s%s\n", output.StyleLabel.Render(label), value)
	}
	row("Daily goal", output.FormatDuration(s.GoalSeconds()))
	if s.BreakInterval > 0 {
		row("Break every", output.FormatDuration(s.BreakSeconds()))
	} else {
		row("Break every", output.StyleMuted.Render("off"))
	}
	row("Goal line", fmt.Sprintf("%d%%", s.GoalLinePercent))
	for _, name := range s.CategoryNames() {
		row("Category "+name, strings.Join(s.CustomAppCategories[name], ", "))
	}
	_, _ = fmt.Fprintln(w)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	var p settings.Patch
	f := cmd.Flags()
	if f.Changed("goal-hours") {
		p.GoalHours = &setGoalHours
	}
	if f.Changed("goal-minutes") {
		p.GoalMinutes = &setGoalMinutes
	}
	if f.Changed("break-interval") {
		p.BreakInterval = &setBreak
	}
	if f.Changed("goal-line-percent") {
		p.GoalLinePercent = &setLinePercent
	}
	if f.Changed("categories") {
		var cats settings.Categories
		if err := cats.UnmarshalJSON([]byte(setCategories)); err != nil {
			return err
		}
		p.CustomAppCategories = &cats
	}
	if p == (settings.Patch{}) {
		return fmt.Errorf("nothing to change; pass at least one flag (see --help)")
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	if err := c.UpdateSettings(cmd.Context(), p); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return nil
}

func runSettingsExport(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	resp, err := c.Settings(cmd.Context())
	if err != nil {
		return err
	}
	s, err := fromResponse(resp)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return settings.Export(cmd.OutOrStdout(), s)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := settings.Export(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func runSettingsImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	c, _, err := newClient()
	if err != nil {
		return err
	}
	resp, err := c.Settings(cmd.Context())
	if err != nil {
		return err
	}
	current, err := fromResponse(resp)
	if err != nil {
		return err
	}
	next, err := settings.Import(r, current)
	if err != nil {
		return err
	}
	if err := c.UpdateSettings(cmd.Context(), next.AsPatch()); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Settings imported.")
	return nil
}

package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/output"
	"github.com/blackwell-systems/workclock/internal/store"
)

var reportPeriod string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show tracked time per day, week or month",
	Long: `Show manual and automatic totals. Daily covers the last 30 days, weekly
the last 10 ISO weeks, monthly the last 12 months.

Examples:
  workclock report
  workclock report --period weekly
  workclock report --period monthly --json`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportPeriod, "period", "p", "daily", "Report period: daily, weekly or monthly")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	c, _, err := newClient()
	if err != nil {
		return err
	}
	reports, err := c.Reports(cmd.Context())
	if err != nil {
		return err
	}

	var rows []store.PeriodTotal
	switch reportPeriod {
	case "daily":
		rows = reports.Daily
	case "weekly":
		rows = reports.Weekly
	case "monthly":
		rows = reports.Monthly
	default:
		return fmt.Errorf("unknown period %q (want daily, weekly or monthly)", reportPeriod)
	}

	if flagJSON {
		if rows == nil {
			rows = []store.PeriodTotal{}
		}
		return writeJSON(cmd.OutOrStdout(), rows)
	}
	renderReport(cmd.OutOrStdout(), reportPeriod, rows)
	return nil
}

func renderReport(w io.Writer, period string, rows []store.PeriodTotal) {
	headers := map[string]string{"daily": "Date", "weekly": "Week", "monthly": "Month"}
	_, _ = fmt.Fprintln(w, output.Section("Report ("+period+")"))
	_, _ = fmt.Fprintln(w)
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, output.StyleMuted.Render(" No sessions recorded yet."))
		return
	}

	tbl := output.NewTable(headers[period], "Manual", "Automatic").AlignRight(1, 2)
	var manual, auto int64
	for _, r := range rows {
		tbl.AddRow(r.Period, output.FormatDuration(r.ManualTotal), output.FormatDuration(r.AutoTotal))
		manual += r.ManualTotal
		auto += r.AutoTotal
	}
	tbl.AddRow(output.StyleBold.Render("Total"), output.FormatDuration(manual), output.FormatDuration(auto))
	tbl.Fprint(w)
}

// Package app contains the Cobra command tree for workclock.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/workclock/internal/client"
	"github.com/blackwell-systems/workclock/internal/config"
	"github.com/blackwell-systems/workclock/internal/output"
)

var appVersion = "dev"

// SetVersion sets the application version (called from main with ldflags value).
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagNoColor bool
	flagJSON    bool
	flagConfig  string
	flagServer  string
)

var rootCmd = &cobra.Command{
	Use:   "workclock",
	Short: "Track working hours with manual and lock-driven sessions",
	Long: `workclock tracks working time two ways: a manual session you start,
pause and stop yourself, and an automatic per-day session driven by screen
lock/unlock and idle detection. A local server ('workclock serve') owns the
database and credits time on a fixed tick; every other command talks to it.

Run 'workclock' with no arguments to see today's status.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if flagNoColor || !output.ColorEnabled(os.Stdout) {
			output.SetNoColor(true)
		}
	},
	RunE: runStatus,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/workclock/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "Server URL (default: from config, http://127.0.0.1:3000)")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
}

// newClient loads the config and returns a client for the configured server,
// honoring --server.
func newClient() (*client.Client, *config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	url := cfg.Client.ServerURL
	if flagServer != "" {
		url = flagServer
	}
	return client.New(url), cfg, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package app

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/config"
	"github.com/blackwell-systems/workclock/internal/idle"
	"github.com/blackwell-systems/workclock/internal/logging"
	"github.com/blackwell-systems/workclock/internal/notify"
	"github.com/blackwell-systems/workclock/internal/server"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
	"github.com/blackwell-systems/workclock/internal/tracker"
	"github.com/blackwell-systems/workclock/internal/usage"
)

var (
	serveDaemon bool
	serveStop   bool
	serveDB     string
	servePort   int
	serveNoIdle bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the tracking server",
	Long: `Run the local HTTP server together with the tick reconciler and the idle
monitor. The server owns the database; all other commands talk to it.

Examples:
  workclock serve                 # run in foreground (ctrl-c to stop)
  workclock serve --daemon        # write PID file, log to ~/.config/workclock/serve.log
  workclock serve --port 3100     # listen on another port
  workclock serve --stop          # stop the background daemon`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveDaemon, "daemon", false, "Run in background mode (write PID file, log to file)")
	serveCmd.Flags().BoolVar(&serveStop, "stop", false, "Stop a running background daemon")
	serveCmd.Flags().StringVar(&serveDB, "db", "", "Database path (default: ~/.config/workclock/workclock.db)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default: server.port)")
	serveCmd.Flags().BoolVar(&serveNoIdle, "no-idle", false, "Disable idle detection")
	rootCmd.AddCommand(serveCmd)
}

func pidFilePath() string {
	return filepath.Join(config.ConfigDir(), "serve.pid")
}

func logFilePath() string {
	return filepath.Join(config.ConfigDir(), "serve.log")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveStop {
		return stopDaemon(cmd.OutOrStdout())
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveNoIdle {
		cfg.Idle.Enabled = false
	}

	if serveDaemon {
		release, err := acquirePIDFile(pidFilePath())
		if err != nil {
			return err
		}
		defer release()
		if cfg.Log.File == "" {
			cfg.Log.File = logFilePath()
		}
	}

	log, err := logging.New(cfg.Log.Mode, cfg.Log.File)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer log.Sync()

	dbPath := config.DBPath()
	if serveDB != "" {
		dbPath = serveDB
	}
	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", dbPath, err)
	}
	defer func() { _ = db.Close() }()

	var notifier tracker.Notifier = tracker.NopNotifier{}
	if cfg.Notify.Enabled {
		notifier = notify.NewDesktop()
	}
	var provider idle.Provider
	if cfg.Idle.Enabled {
		provider = idle.NewProvider()
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), shutdownSignals...)
	defer cancel()

	log.Info("workclock serving", "version", appVersion, "pid", os.Getpid(), "db", dbPath)
	d := newDaemon(cfg, db, clock.SystemClock{}, notifier, provider, log)
	return d.Run(ctx)
}

// daemon wires the HTTP surface, the reconciler and the idle monitor
// around one store.
type daemon struct {
	cfg        *config.Config
	svc        *tracker.Service
	reconciler *tracker.Reconciler
	monitor    *idle.Monitor
	handler    *gin.Engine
	log        *logging.Logger
}

// newDaemon builds the components. A nil provider disables idle detection.
func newDaemon(cfg *config.Config, db *store.DB, clk clock.Clock, notifier tracker.Notifier, provider idle.Provider, log *logging.Logger) *daemon {
	if cfg.Log.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	defaults := settings.Defaults(cfg.Goal)
	opts := tracker.Options{
		MaxCredit:            cfg.Tracker.MaxCredit,
		ResumeManualOnUnlock: cfg.Tracker.ResumeManualOnUnlock,
		Goals:                defaults,
	}
	svc := tracker.NewService(db, clk, log.With("component", "tracker"), opts)
	rec := tracker.NewReconciler(db, clk, notifier, log.With("component", "reconciler"), cfg.Tracker.TickInterval, opts)

	settingsH := server.NewSettingsHandler(db, defaults, log)
	handler := server.NewRouter(server.RouterConfig{
		Logger:          log.With("component", "http"),
		AllowOrigins:    server.DefaultAllowOrigins(cfg.Server.Port),
		SessionHandler:  server.NewSessionHandler(svc),
		SettingsHandler: settingsH,
		UsageHandler:    server.NewUsageHandler(usage.NewTracker(db, clk), settingsH),
		ReportHandler:   server.NewReportHandler(db, clk),
		HealthHandler:   server.NewHealthHandler(),
	})

	d := &daemon{cfg: cfg, svc: svc, reconciler: rec, handler: handler, log: log}
	if provider != nil {
		d.monitor = idle.NewMonitor(provider, d.handleIdle, cfg.Idle.Threshold, cfg.Idle.PollInterval, log.With("component", "idle"))
	}
	return d
}

// handleIdle feeds synthetic idle events through the same path as real
// lock and unlock events.
func (d *daemon) handleIdle(ctx context.Context, event string) error {
	_, err := d.svc.HandleEvent(ctx, event)
	return err
}

// Run listens on the configured address and runs until ctx is cancelled or
// any component fails.
func (d *daemon) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", d.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", d.cfg.Server.Addr(), err)
	}
	return d.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (d *daemon) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	srv := server.NewServer(ln.Addr().String(), d.handler, d.log.With("component", "http"))
	g.Go(func() error { return srv.Serve(ctx, ln) })
	g.Go(func() error { return d.reconciler.Run(ctx) })
	if d.monitor != nil {
		g.Go(func() error { return d.monitor.Run(ctx) })
	}
	return g.Wait()
}

// acquirePIDFile writes the current PID to path, refusing when another live
// process holds it. The returned func removes the file.
func acquirePIDFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating config dir: %w", err)
	}

	if pid, err := readPID(path); err == nil {
		if processExists(pid) {
			return nil, fmt.Errorf("daemon already running (PID %d). Use --stop to stop it", pid)
		}
		// Stale PID file.
		_ = os.Remove(path)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return nil, fmt.Errorf("writing PID file: %w", err)
	}
	return func() { _ = os.Remove(path) }, nil
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(string(data))
}

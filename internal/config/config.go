package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level workclock configuration.
type Config struct {
	Server  Server  `mapstructure:"server"`
	Tracker Tracker `mapstructure:"tracker"`
	Idle    Idle    `mapstructure:"idle"`
	Goal    Goal    `mapstructure:"goal"`
	Notify  Notify  `mapstructure:"notify"`
	Log     Log     `mapstructure:"log"`
	Client  Client  `mapstructure:"client"`
}

// Server defines the HTTP listener.
type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port for net.Listen.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// URL returns the base URL clients use to reach the server.
func (s Server) URL() string {
	return "http://" + s.Addr()
}

// Tracker defines reconciliation timing and event policy.
type Tracker struct {
	TickInterval         time.Duration `mapstructure:"tick_interval"`
	MaxCredit            time.Duration `mapstructure:"max_credit"`
	ResumeManualOnUnlock bool          `mapstructure:"resume_manual_on_unlock"`
}

// Idle defines the idle monitor thresholds.
type Idle struct {
	Enabled      bool          `mapstructure:"enabled"`
	Threshold    time.Duration `mapstructure:"threshold"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// Goal defines fallback goal settings. Values stored through the settings
// API take precedence.
type Goal struct {
	Hours         int `mapstructure:"hours"`
	Minutes       int `mapstructure:"minutes"`
	BreakInterval int `mapstructure:"break_interval"`
	LinePercent   int `mapstructure:"line_percent"`
}

// Notify defines notification preferences.
type Notify struct {
	Enabled bool `mapstructure:"enabled"`
}

// Log defines logging preferences.
type Log struct {
	Mode string `mapstructure:"mode"`
	File string `mapstructure:"file"`
}

// Client defines how the live display talks to the server.
type Client struct {
	ServerURL    string        `mapstructure:"server_url"`
	SyncInterval time.Duration `mapstructure:"sync_interval"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// applies WORKCLOCK_* environment overrides and returns a validated Config
// with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", DefaultServer.Host)
	v.SetDefault("server.port", DefaultServer.Port)
	v.SetDefault("tracker.tick_interval", DefaultTracker.TickInterval)
	v.SetDefault("tracker.max_credit", DefaultTracker.MaxCredit)
	v.SetDefault("tracker.resume_manual_on_unlock", DefaultTracker.ResumeManualOnUnlock)
	v.SetDefault("idle.enabled", DefaultIdle.Enabled)
	v.SetDefault("idle.threshold", DefaultIdle.Threshold)
	v.SetDefault("idle.poll_interval", DefaultIdle.PollInterval)
	v.SetDefault("goal.hours", DefaultGoal.Hours)
	v.SetDefault("goal.minutes", DefaultGoal.Minutes)
	v.SetDefault("goal.break_interval", DefaultGoal.BreakInterval)
	v.SetDefault("goal.line_percent", DefaultGoal.LinePercent)
	v.SetDefault("notify.enabled", DefaultNotify.Enabled)
	v.SetDefault("log.mode", DefaultLog.Mode)
	v.SetDefault("log.file", DefaultLog.File)
	v.SetDefault("client.server_url", "")
	v.SetDefault("client.sync_interval", DefaultClient.SyncInterval)

	v.SetEnvPrefix("workclock")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Client.ServerURL == "" {
		cfg.Client.ServerURL = cfg.Server.URL()
	}
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the tracker cannot run with.
func (c *Config) Validate() error {
	if c.Tracker.TickInterval < time.Second {
		return fmt.Errorf("tracker.tick_interval must be at least 1s, got %s", c.Tracker.TickInterval)
	}
	if c.Tracker.MaxCredit < c.Tracker.TickInterval {
		return fmt.Errorf("tracker.max_credit (%s) must not be shorter than tracker.tick_interval (%s)",
			c.Tracker.MaxCredit, c.Tracker.TickInterval)
	}
	if c.Idle.Enabled && c.Idle.Threshold < 30*time.Second {
		return fmt.Errorf("idle.threshold must be at least 30s, got %s", c.Idle.Threshold)
	}
	if c.Idle.Enabled && c.Idle.PollInterval <= 0 {
		return fmt.Errorf("idle.poll_interval must be positive, got %s", c.Idle.PollInterval)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Client.SyncInterval <= 0 {
		return fmt.Errorf("client.sync_interval must be positive, got %s", c.Client.SyncInterval)
	}
	return nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

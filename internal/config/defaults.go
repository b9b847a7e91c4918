// Package config provides configuration loading and defaults for workclock.
package config

import "time"

// DefaultConfigDir is the default location for workclock configuration and data.
const DefaultConfigDir = "~/.config/workclock"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "workclock.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultServer holds the default HTTP listener. The server binds to
// loopback only; the API carries no authentication.
var DefaultServer = Server{
	Host: "127.0.0.1",
	Port: 3000,
}

// DefaultTracker holds the default reconciliation timing. MaxCredit is twice
// the tick period so one late tick is still fully credited.
var DefaultTracker = Tracker{
	TickInterval:         5 * time.Second,
	MaxCredit:            10 * time.Second,
	ResumeManualOnUnlock: true,
}

// DefaultIdle holds the default idle-detection thresholds.
var DefaultIdle = Idle{
	Enabled:      true,
	Threshold:    5 * time.Minute,
	PollInterval: 15 * time.Second,
}

// DefaultGoal holds the goal settings used when the settings store has no value.
var DefaultGoal = Goal{
	Hours:         4,
	Minutes:       10,
	BreakInterval: 60,
	LinePercent:   44,
}

// DefaultNotify holds the default notification preferences.
var DefaultNotify = Notify{
	Enabled: true,
}

// DefaultLog holds the default logging preferences.
var DefaultLog = Log{
	Mode: "dev",
}

// DefaultClient holds the default polling cadence for the live display.
var DefaultClient = Client{
	SyncInterval: 10 * time.Second,
}

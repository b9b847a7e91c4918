// Package usage accumulates per-application foreground time and groups it
// into categories.
package usage

import (
	"sort"
	"strings"
	"time"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

// MaxHeartbeatSeconds bounds a single heartbeat. Clients report every few
// seconds; anything longer is a stale or replayed report.
const MaxHeartbeatSeconds = 3600

// Other is the category for applications no mapping claims.
const Other = "Other"

// Store is the persistence usage needs. *store.DB satisfies it.
type Store interface {
	AddAppUsage(date, appName string, seconds int64) error
	AppUsage(date string) ([]store.AppUsage, error)
	AppNames(date string) ([]string, error)
}

// Heartbeat reports that appName was in the foreground for Seconds.
type Heartbeat struct {
	AppName string `json:"app_name"`
	Seconds int64  `json:"seconds"`
}

// Validate trims the app name and checks the bounds.
func (h *Heartbeat) Validate() error {
	h.AppName = strings.TrimSpace(h.AppName)
	if h.AppName == "" {
		return apperr.Invalid("app_name is required")
	}
	if h.Seconds <= 0 || h.Seconds > MaxHeartbeatSeconds {
		return apperr.Invalid("seconds must be between 1 and %d, got %d", MaxHeartbeatSeconds, h.Seconds)
	}
	return nil
}

// Tracker records heartbeats against the current day.
type Tracker struct {
	store Store
	clock clock.Clock
}

// NewTracker returns a Tracker over st.
func NewTracker(st Store, clk clock.Clock) *Tracker {
	return &Tracker{store: st, clock: clk}
}

// Record validates h and adds it to today's accumulator for the app.
// Heartbeats are additive: two reports of 5 seconds total 10.
func (t *Tracker) Record(h Heartbeat) error {
	if err := h.Validate(); err != nil {
		return err
	}
	return t.store.AddAppUsage(clock.Date(t.clock.Now()), h.AppName, h.Seconds)
}

// Today returns today's per-app usage, largest first.
func (t *Tracker) Today() ([]store.AppUsage, error) {
	return t.store.AppUsage(clock.Date(t.clock.Now()))
}

// TodayApps returns the names of applications seen today.
func (t *Tracker) TodayApps() ([]string, error) {
	return t.store.AppNames(clock.Date(t.clock.Now()))
}

// TodayCategories returns today's usage grouped by category.
func (t *Tracker) TodayCategories(custom settings.Categories) ([]CategoryTotal, error) {
	rows, err := t.Today()
	if err != nil {
		return nil, err
	}
	return Categorize(rows, custom), nil
}

// CategoryTotal is the time spent in one category.
type CategoryTotal struct {
	Name    string `json:"name"`
	Seconds int64  `json:"seconds"`
}

// DefaultCategories assigns well-known applications to categories.
// Custom mappings take precedence.
var DefaultCategories = map[string][]string{
	"Development":   {"Code", "Visual Studio Code", "Xcode", "iTerm2", "Terminal", "GoLand", "IntelliJ IDEA", "Cursor", "Ghostty", "Alacritty", "kitty"},
	"Communication": {"Slack", "Mail", "Microsoft Teams", "Zoom", "Discord", "Messages", "Telegram"},
	"Browsing":      {"Safari", "Google Chrome", "Firefox", "Arc", "Microsoft Edge", "Brave Browser"},
	"Productivity":  {"Notes", "Notion", "Obsidian", "Calendar", "Microsoft Word", "Microsoft Excel", "Pages", "Numbers", "Keynote"},
	"Design":        {"Figma", "Sketch", "Adobe Photoshop", "Adobe Illustrator", "Preview"},
	"Entertainment": {"Spotify", "Music", "YouTube", "TV", "VLC"},
}

// Categorize groups rows by category, largest first. An app listed in a
// custom category overrides its default; unlisted apps fall into Other.
// Matching ignores case.
func Categorize(rows []store.AppUsage, custom settings.Categories) []CategoryTotal {
	lookup := make(map[string]string)
	for category, apps := range DefaultCategories {
		for _, app := range apps {
			lookup[strings.ToLower(app)] = category
		}
	}
	for category, apps := range custom {
		for _, app := range apps {
			lookup[strings.ToLower(strings.TrimSpace(app))] = category
		}
	}

	totals := make(map[string]int64)
	for _, row := range rows {
		category, ok := lookup[strings.ToLower(row.AppName)]
		if !ok {
			category = Other
		}
		totals[category] += row.TotalSeconds
	}

	out := make([]CategoryTotal, 0, len(totals))
	for name, seconds := range totals {
		out = append(out, CategoryTotal{Name: name, Seconds: seconds})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seconds != out[j].Seconds {
			return out[i].Seconds > out[j].Seconds
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Sum returns the total seconds across rows.
func Sum(rows []store.AppUsage) time.Duration {
	var total int64
	for _, r := range rows {
		total += r.TotalSeconds
	}
	return time.Duration(total) * time.Second
}

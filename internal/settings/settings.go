// Package settings holds the user-editable goal settings, their validation and
// their YAML export format.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/config"
)

// Keys under which settings are persisted. They match the dashboard's field names.
const (
	KeyGoalHours           = "goalHours"
	KeyGoalMinutes         = "goalMinutes"
	KeyBreakInterval       = "breakInterval"
	KeyGoalLinePercent     = "goalLinePercent"
	KeyCustomAppCategories = "customAppCategories"
)

// Reader is the part of the store settings are loaded from.
type Reader interface {
	GetSetting(key, def string) (string, error)
}

// Writer is the part of the store settings are saved to.
type Writer interface {
	SetSettings(values map[string]string) error
}

// Settings is the value object the reconciler and the dashboard work with.
type Settings struct {
	GoalHours           int        `json:"goalHours" yaml:"goal_hours"`
	GoalMinutes         int        `json:"goalMinutes" yaml:"goal_minutes"`
	BreakInterval       int        `json:"breakInterval" yaml:"break_interval"`
	GoalLinePercent     int        `json:"goalLinePercent" yaml:"goal_line_percent"`
	CustomAppCategories Categories `json:"customAppCategories" yaml:"custom_app_categories,omitempty"`
}

// Categories maps a category name to the applications assigned to it.
type Categories map[string][]string

// UnmarshalJSON accepts either a JSON object or a string holding one, which
// is how the dashboard posts it.
func (c *Categories) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var encoded string
	if err := json.Unmarshal(data, &encoded); err == nil {
		if strings.TrimSpace(encoded) == "" {
			*c = Categories{}
			return nil
		}
		data = []byte(encoded)
	}
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil {
		return apperr.Invalid("%s must be an object of app name lists", KeyCustomAppCategories)
	}
	if m == nil {
		m = map[string][]string{}
	}
	*c = m
	return nil
}

// String encodes the categories as stored and served to the dashboard.
func (c Categories) String() string {
	if len(c) == 0 {
		return "{}"
	}
	data, err := json.Marshal(map[string][]string(c))
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Defaults builds the settings used when the store has no value for a key.
func Defaults(g config.Goal) Settings {
	return Settings{
		GoalHours:           g.Hours,
		GoalMinutes:         g.Minutes,
		BreakInterval:       g.BreakInterval,
		GoalLinePercent:     g.LinePercent,
		CustomAppCategories: Categories{},
	}
}

// GoalSeconds is the daily goal in seconds.
func (s Settings) GoalSeconds() int64 {
	return int64(s.GoalHours)*3600 + int64(s.GoalMinutes)*60
}

// BreakSeconds is the break reminder cadence in seconds of accumulated work.
// Zero disables reminders.
func (s Settings) BreakSeconds() int64 {
	return int64(s.BreakInterval) * 60
}

// Validate reports the first out-of-range field as an ErrInvalidArgument.
func (s Settings) Validate() error {
	switch {
	case s.GoalHours < 0 || s.GoalHours > 24:
		return apperr.Invalid("%s must be between 0 and 24, got %d", KeyGoalHours, s.GoalHours)
	case s.GoalMinutes < 0 || s.GoalMinutes > 59:
		return apperr.Invalid("%s must be between 0 and 59, got %d", KeyGoalMinutes, s.GoalMinutes)
	case s.BreakInterval < 0 || s.BreakInterval > 480:
		return apperr.Invalid("%s must be between 0 and 480, got %d", KeyBreakInterval, s.BreakInterval)
	case s.GoalLinePercent < 1 || s.GoalLinePercent > 100:
		return apperr.Invalid("%s must be between 1 and 100, got %d", KeyGoalLinePercent, s.GoalLinePercent)
	}
	for category, apps := range s.CustomAppCategories {
		if strings.TrimSpace(category) == "" {
			return apperr.Invalid("%s has an empty category name", KeyCustomAppCategories)
		}
		for _, app := range apps {
			if strings.TrimSpace(app) == "" {
				return apperr.Invalid("%s: category %q lists an empty app name", KeyCustomAppCategories, category)
			}
		}
	}
	return nil
}

// Values flattens the settings into the persisted key/value form.
func (s Settings) Values() map[string]string {
	return map[string]string{
		KeyGoalHours:           strconv.Itoa(s.GoalHours),
		KeyGoalMinutes:         strconv.Itoa(s.GoalMinutes),
		KeyBreakInterval:       strconv.Itoa(s.BreakInterval),
		KeyGoalLinePercent:     strconv.Itoa(s.GoalLinePercent),
		KeyCustomAppCategories: s.CustomAppCategories.String(),
	}
}

// Load reads every setting, falling back to defaults for absent keys.
// Unparseable stored values keep their default and are reported in the
// returned error alongside the usable settings.
func Load(r Reader, defaults Settings) (Settings, error) {
	s := defaults
	var errs []error

	ints := []struct {
		key string
		dst *int
	}{
		{KeyGoalHours, &s.GoalHours},
		{KeyGoalMinutes, &s.GoalMinutes},
		{KeyBreakInterval, &s.BreakInterval},
		{KeyGoalLinePercent, &s.GoalLinePercent},
	}
	for _, f := range ints {
		raw, err := r.GetSetting(f.key, strconv.Itoa(*f.dst))
		if err != nil {
			return defaults, err
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			errs = append(errs, apperr.Invalid("stored %s %q is not a number", f.key, raw))
			continue
		}
		*f.dst = n
	}

	raw, err := r.GetSetting(KeyCustomAppCategories, "{}")
	if err != nil {
		return defaults, err
	}
	cats := Categories{}
	if strings.TrimSpace(raw) == "" {
		raw = "{}"
	}
	if err := cats.UnmarshalJSON([]byte(raw)); err != nil {
		errs = append(errs, fmt.Errorf("stored %s: %w", KeyCustomAppCategories, err))
	} else {
		s.CustomAppCategories = cats
	}

	return s, errors.Join(errs...)
}

// Save validates s and persists every key in one write.
func Save(w Writer, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return w.SetSettings(s.Values())
}

// Patch is a partial update. Absent fields keep their current value.
type Patch struct {
	GoalHours           *int        `json:"goalHours" yaml:"goal_hours"`
	GoalMinutes         *int        `json:"goalMinutes" yaml:"goal_minutes"`
	BreakInterval       *int        `json:"breakInterval" yaml:"break_interval"`
	GoalLinePercent     *int        `json:"goalLinePercent" yaml:"goal_line_percent"`
	CustomAppCategories *Categories `json:"customAppCategories" yaml:"custom_app_categories"`
}

// Apply returns s with the fields present in p replaced, validated.
func (s Settings) Apply(p Patch) (Settings, error) {
	if p.GoalHours != nil {
		s.GoalHours = *p.GoalHours
	}
	if p.GoalMinutes != nil {
		s.GoalMinutes = *p.GoalMinutes
	}
	if p.BreakInterval != nil {
		s.BreakInterval = *p.BreakInterval
	}
	if p.GoalLinePercent != nil {
		s.GoalLinePercent = *p.GoalLinePercent
	}
	if p.CustomAppCategories != nil {
		s.CustomAppCategories = *p.CustomAppCategories
	}
	return s, s.Validate()
}

// CategoryNames returns the custom category names, sorted.
func (s Settings) CategoryNames() []string {
	names := make([]string, 0, len(s.CustomAppCategories))
	for name := range s.CustomAppCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AsPatch returns a patch that sets every field to s's value.
func (s Settings) AsPatch() Patch {
	cats := s.CustomAppCategories
	return Patch{
		GoalHours:           &s.GoalHours,
		GoalMinutes:         &s.GoalMinutes,
		BreakInterval:       &s.BreakInterval,
		GoalLinePercent:     &s.GoalLinePercent,
		CustomAppCategories: &cats,
	}
}

package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/config"
)

type mapStore map[string]string

func (m mapStore) GetSetting(key, def string) (string, error) {
	if v, ok := m[key]; ok {
		return v, nil
	}
	return def, nil
}

func (m mapStore) SetSettings(values map[string]string) error {
	for k, v := range values {
		m[k] = v
	}
	return nil
}

func TestLoad_DefaultsWhenEmpty(t *testing.T) {
	s, err := Load(mapStore{}, Defaults(config.DefaultGoal))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.GoalHours != 4 || s.GoalMinutes != 10 || s.BreakInterval != 60 || s.GoalLinePercent != 44 {
		t.Errorf("unexpected defaults: %+v", s)
	}
	if s.GoalSeconds() != 4*3600+10*60 {
		t.Errorf("GoalSeconds = %d", s.GoalSeconds())
	}
	if s.BreakSeconds() != 3600 {
		t.Errorf("BreakSeconds = %d", s.BreakSeconds())
	}
}

func TestLoad_BadStoredValueKeepsDefault(t *testing.T) {
	st := mapStore{KeyGoalHours: "six", KeyGoalMinutes: "30"}

	s, err := Load(st, Defaults(config.DefaultGoal))
	if !errors.Is(err, apperr.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if s.GoalHours != 4 {
		t.Errorf("GoalHours = %d, want default 4", s.GoalHours)
	}
	if s.GoalMinutes != 30 {
		t.Errorf("GoalMinutes = %d, want 30", s.GoalMinutes)
	}
}

func TestSaveAndLoad(t *testing.T) {
	st := mapStore{}
	want := Settings{
		GoalHours:           7,
		GoalMinutes:         30,
		BreakInterval:       0,
		GoalLinePercent:     50,
		CustomAppCategories: Categories{"Development": {"Code", "iTerm2"}},
	}
	if err := Save(st, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if st[KeyCustomAppCategories] != `{"Development":["Code","iTerm2"]}` {
		t.Errorf("stored categories = %s", st[KeyCustomAppCategories])
	}

	got, err := Load(st, Defaults(config.DefaultGoal))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.GoalHours != 7 || got.GoalMinutes != 30 || got.BreakInterval != 0 || got.GoalLinePercent != 50 {
		t.Errorf("Load = %+v", got)
	}
	if len(got.CustomAppCategories["Development"]) != 2 {
		t.Errorf("categories = %v", got.CustomAppCategories)
	}
}

func TestValidate(t *testing.T) {
	base := Defaults(config.DefaultGoal)
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults", func(*Settings) {}, false},
		{"hours too high", func(s *Settings) { s.GoalHours = 25 }, true},
		{"hours negative", func(s *Settings) { s.GoalHours = -1 }, true},
		{"minutes 60", func(s *Settings) { s.GoalMinutes = 60 }, true},
		{"break disabled", func(s *Settings) { s.BreakInterval = 0 }, false},
		{"break too long", func(s *Settings) { s.BreakInterval = 481 }, true},
		{"percent zero", func(s *Settings) { s.GoalLinePercent = 0 }, true},
		{"percent 100", func(s *Settings) { s.GoalLinePercent = 100 }, false},
		{"empty category", func(s *Settings) { s.CustomAppCategories = Categories{"": {"Code"}} }, true},
		{"empty app", func(s *Settings) { s.CustomAppCategories = Categories{"Dev": {" "}} }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := base
			tc.mutate(&s)
			err := s.Validate()
			if tc.wantErr && !errors.Is(err, apperr.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestPatch_DashboardPayload(t *testing.T) {
	body := `{"goalHours":6,"goalMinutes":0,"breakInterval":45,"goalLinePercent":44,
		"customAppCategories":"{\"Communication\":[\"Slack\"]}"}`

	var p Patch
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	s, err := Defaults(config.DefaultGoal).Apply(p)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if s.GoalHours != 6 || s.GoalMinutes != 0 || s.BreakInterval != 45 {
		t.Errorf("Apply = %+v", s)
	}
	if got := s.CustomAppCategories["Communication"]; len(got) != 1 || got[0] != "Slack" {
		t.Errorf("categories = %v", s.CustomAppCategories)
	}
}

func TestPatch_PartialKeepsOtherFields(t *testing.T) {
	var p Patch
	if err := json.Unmarshal([]byte(`{"goalMinutes":15}`), &p); err != nil {
		t.Fatal(err)
	}
	s, err := Defaults(config.DefaultGoal).Apply(p)
	if err != nil {
		t.Fatal(err)
	}
	if s.GoalHours != 4 || s.GoalMinutes != 15 {
		t.Errorf("Apply = %+v", s)
	}
}

func TestPatch_RejectsMalformedCategories(t *testing.T) {
	var p Patch
	err := json.Unmarshal([]byte(`{"customAppCategories":"[1,2]"}`), &p)
	if err == nil {
		t.Fatal("expected error for non-object categories")
	}
}

func TestExportImport(t *testing.T) {
	original := Settings{
		GoalHours:           8,
		GoalMinutes:         0,
		BreakInterval:       90,
		GoalLinePercent:     60,
		CustomAppCategories: Categories{"Design": {"Figma"}},
	}

	var buf bytes.Buffer
	if err := Export(&buf, original); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if !strings.Contains(buf.String(), "goal_hours: 8") {
		t.Errorf("unexpected YAML:\n%s", buf.String())
	}

	got, err := Import(&buf, Defaults(config.DefaultGoal))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got.GoalHours != 8 || got.BreakInterval != 90 || got.GoalLinePercent != 60 {
		t.Errorf("Import = %+v", got)
	}
	if got.CustomAppCategories["Design"][0] != "Figma" {
		t.Errorf("categories = %v", got.CustomAppCategories)
	}
}

func TestImport_Errors(t *testing.T) {
	current := Defaults(config.DefaultGoal)
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unknown key", "goal_hourz: 3\n"},
		{"out of range", "goal_minutes: 75\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Import(strings.NewReader(tc.doc), current)
			if !errors.Is(err, apperr.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

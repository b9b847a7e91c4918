package usage

import (
	"errors"
	"testing"
	"time"

	"pgregory.net/rapid"

	"github.com/blackwell-systems/workclock/internal/apperr"
	"github.com/blackwell-systems/workclock/internal/clock"
	"github.com/blackwell-systems/workclock/internal/settings"
	"github.com/blackwell-systems/workclock/internal/store"
)

var day = time.Date(2026, 3, 9, 14, 0, 0, 0, time.UTC)

func newTracker(t *testing.T) (*Tracker, *store.DB) {
	t.Helper()
	db, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewTracker(db, clock.NewManual(day)), db
}

func TestHeartbeatValidate(t *testing.T) {
	tests := []struct {
		name    string
		hb      Heartbeat
		wantErr bool
	}{
		{"ok", Heartbeat{AppName: "Code", Seconds: 5}, false},
		{"trimmed", Heartbeat{AppName: "  Slack ", Seconds: 5}, false},
		{"empty name", Heartbeat{AppName: "   ", Seconds: 5}, true},
		{"zero seconds", Heartbeat{AppName: "Code", Seconds: 0}, true},
		{"negative seconds", Heartbeat{AppName: "Code", Seconds: -5}, true},
		{"too long", Heartbeat{AppName: "Code", Seconds: MaxHeartbeatSeconds + 1}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.hb.Validate()
			if tc.wantErr && !errors.Is(err, apperr.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRecord_TwoHeartbeatsAccumulate(t *testing.T) {
	tr, _ := newTracker(t)

	for i := 0; i < 2; i++ {
		if err := tr.Record(Heartbeat{AppName: "Code", Seconds: 5}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	rows, err := tr.Today()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].TotalSeconds != 10 || rows[0].Date != "2026-03-09" {
		t.Errorf("Today() = %+v, want Code/10 on 2026-03-09", rows)
	}
	if Sum(rows) != 10*time.Second {
		t.Errorf("Sum = %v", Sum(rows))
	}
}

func TestRecord_Additive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db, err := store.OpenInMemory()
		if err != nil {
			t.Fatalf("OpenInMemory: %v", err)
		}
		defer func() { _ = db.Close() }()
		tr := NewTracker(db, clock.NewManual(day))

		beats := rapid.SliceOfN(rapid.Int64Range(1, MaxHeartbeatSeconds), 1, 20).Draw(t, "beats")
		var want int64
		for _, s := range beats {
			if err := tr.Record(Heartbeat{AppName: "Code", Seconds: s}); err != nil {
				t.Fatalf("Record: %v", err)
			}
			want += s
		}

		rows, err := tr.Today()
		if err != nil {
			t.Fatalf("Today: %v", err)
		}
		if len(rows) != 1 || rows[0].TotalSeconds != want {
			t.Fatalf("total = %+v, want %d", rows, want)
		}
	})
}

func TestTodayApps(t *testing.T) {
	tr, _ := newTracker(t)
	_ = tr.Record(Heartbeat{AppName: "Slack", Seconds: 5})
	_ = tr.Record(Heartbeat{AppName: "Code", Seconds: 5})

	apps, err := tr.TodayApps()
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 2 || apps[0] != "Code" || apps[1] != "Slack" {
		t.Errorf("TodayApps = %v", apps)
	}
}

func TestCategorize(t *testing.T) {
	rows := []store.AppUsage{
		{AppName: "Code", TotalSeconds: 300},
		{AppName: "iterm2", TotalSeconds: 100},
		{AppName: "Slack", TotalSeconds: 200},
		{AppName: "Linear", TotalSeconds: 50},
		{AppName: "Weird Tool", TotalSeconds: 30},
	}

	got := Categorize(rows, nil)
	want := []CategoryTotal{
		{"Development", 400},
		{"Communication", 200},
		{Other, 80},
	}
	if len(got) != len(want) {
		t.Fatalf("Categorize = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCategorize_CustomOverridesDefault(t *testing.T) {
	rows := []store.AppUsage{
		{AppName: "Slack", TotalSeconds: 200},
		{AppName: "Linear", TotalSeconds: 50},
	}
	custom := settings.Categories{"Planning": {"Linear", "Slack"}}

	got := Categorize(rows, custom)
	if len(got) != 1 || got[0] != (CategoryTotal{"Planning", 250}) {
		t.Errorf("Categorize = %+v", got)
	}
}

func TestTodayCategories(t *testing.T) {
	tr, _ := newTracker(t)
	_ = tr.Record(Heartbeat{AppName: "Figma", Seconds: 60})

	got, err := tr.TodayCategories(settings.Categories{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Design" {
		t.Errorf("TodayCategories = %+v", got)
	}
}

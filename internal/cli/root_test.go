package cli

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/julianstephens/nightshift/internal/config"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/prefs"
)

func setupTestContext(t *testing.T) *Context {
	t.Helper()
	dir := t.TempDir()
	backend := prefs.NewJSONBackend(afero.NewOsFs(), filepath.Join(dir, "prefs.json"))
	if err := backend.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	cfg := config.Default(dir)
	cfg.Backend = constants.BackendJSON
	cfg.Store = backend.Path()

	ctx := NewContext(cfg, backend)
	t.Cleanup(func() {
		if err := ctx.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx
}

func TestParseClock(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	now := time.Date(2024, 3, 10, 15, 30, 0, 0, loc)

	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{"06:15", time.Date(2024, 3, 10, 6, 15, 0, 0, loc), false},
		{" 21:00 ", time.Date(2024, 3, 10, 21, 0, 0, 0, loc), false},
		{"00:00", time.Date(2024, 3, 10, 0, 0, 0, 0, loc), false},
		{"24:00", time.Time{}, true},
		{"7pm", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseClock(tt.in, now)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseClock(%q) succeeded, want error", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseClock(%q) failed: %v", tt.in, err)
			}
			if got != tt.want.Unix() {
				t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want.Unix())
			}
		})
	}
}

func TestSetSunTimes(t *testing.T) {
	ctx := setupTestContext(t)
	store, err := ctx.Store()
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()

	if err := SetSunTimes(store, "06:00", "20:30", now); err != nil {
		t.Fatalf("SetSunTimes() failed: %v", err)
	}
	if got := FormatClock(store.GetInt(constants.PrefSunset, 0)); got != "20:30" {
		t.Errorf("sunset = %s, want 20:30", got)
	}

	// A bad value leaves both untouched
	before := store.GetInt(constants.PrefSunrise, 0)
	if err := SetSunTimes(store, "05:00", "late", now); err == nil {
		t.Fatal("SetSunTimes() accepted an invalid sunset")
	}
	if store.GetInt(constants.PrefSunrise, 0) != before {
		t.Error("sunrise changed although sunset was invalid")
	}
}

func TestStoreNotInitialized(t *testing.T) {
	dir := t.TempDir()
	backend := prefs.NewJSONBackend(afero.NewOsFs(), filepath.Join(dir, "prefs.json"))
	ctx := NewContext(config.Default(dir), backend)

	_, err := ctx.Store()
	if err == nil || !strings.Contains(err.Error(), "init") {
		t.Errorf("Store() error = %v, want hint to run init", err)
	}
	if err := ctx.Close(); err != nil {
		t.Errorf("Close() on unopened context failed: %v", err)
	}
}

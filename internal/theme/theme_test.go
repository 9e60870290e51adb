package theme

import (
	"testing"
	"time"

	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/scheduler"
)

type memStore struct {
	values map[string]string
	writes int
}

func (m *memStore) GetString(key, def string) string {
	if v, ok := m.values[key]; ok {
		return v
	}
	return def
}

func (m *memStore) SetString(key, v string) {
	m.values[key] = v
	m.writes++
}

func TestApply(t *testing.T) {
	tests := []struct {
		name       string
		stored     string
		decision   scheduler.Decision
		wantTheme  string
		wantWrites int
	}{
		{"night from default", "", scheduler.Night, constants.ThemeDark, 1},
		{"day from default", "", scheduler.Day, constants.ThemeLight, 0},
		{"night already dark", constants.ThemeDark, scheduler.Night, constants.ThemeDark, 0},
		{"day after night", constants.ThemeDark, scheduler.Day, constants.ThemeLight, 1},
		{"unknown leaves theme", constants.ThemeDark, scheduler.Unknown, constants.ThemeDark, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{values: map[string]string{}}
			if tt.stored != "" {
				store.values[constants.PrefWindowTheme] = tt.stored
			}

			NewApplier(store).Apply(scheduler.Event{Decision: tt.decision, At: time.Now()})

			if got := store.GetString(constants.PrefWindowTheme, constants.DefaultWindowTheme); got != tt.wantTheme {
				t.Errorf("theme = %q, want %q", got, tt.wantTheme)
			}
			if store.writes != tt.wantWrites {
				t.Errorf("writes = %d, want %d", store.writes, tt.wantWrites)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"dark":  "Dark",
		"light": "Light",
		"":      "None",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

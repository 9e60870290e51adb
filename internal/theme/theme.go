// Package theme maps scheduler decisions onto the windowTheme preference.
package theme

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/logger"
	"github.com/julianstephens/nightshift/internal/scheduler"
)

// Store is the part of the preference store the applier touches
type Store interface {
	GetString(key string, def string) string
	SetString(key string, v string)
}

// Applier writes the dark theme at night and the light theme by day. It
// writes only when the stored theme differs.
type Applier struct {
	store Store
}

func NewApplier(store Store) *Applier {
	return &Applier{store: store}
}

// ForDecision maps a decision to a theme name. Unknown has no theme.
func ForDecision(d scheduler.Decision) (string, bool) {
	switch d {
	case scheduler.Night:
		return constants.ThemeDark, true
	case scheduler.Day:
		return constants.ThemeLight, true
	default:
		return "", false
	}
}

// Apply is a scheduler.Listener
func (a *Applier) Apply(ev scheduler.Event) {
	want, ok := ForDecision(ev.Decision)
	if !ok {
		return
	}
	current := a.store.GetString(constants.PrefWindowTheme, constants.DefaultWindowTheme)
	if current == want {
		return
	}
	a.store.SetString(constants.PrefWindowTheme, want)
	logger.Info("Window theme changed", "from", current, "to", want)
}

var titleCaser = cases.Title(language.English)

// DisplayName renders a theme name for people, e.g. "dark" as "Dark"
func DisplayName(name string) string {
	if name == "" {
		return "None"
	}
	return titleCaser.String(name)
}

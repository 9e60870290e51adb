package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/nightshift/internal/config"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/logger"
	"github.com/julianstephens/nightshift/internal/prefs"
)

// Context is shared by every command. The store is opened on first use so
// that init and doctor can run against a missing or broken store.
type Context struct {
	Config  config.Config
	Backend prefs.Backend

	store *prefs.Store
}

func NewContext(cfg config.Config, backend prefs.Backend) *Context {
	return &Context{Config: cfg, Backend: backend}
}

// Store opens the preference store, once
func (c *Context) Store() (*prefs.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	store, err := prefs.Open(c.Backend)
	if err != nil {
		if errors.Is(err, prefs.ErrNotInitialized) {
			return nil, fmt.Errorf("preferences not initialized at %s, run '%s init' first", c.Backend.Path(), constants.AppName)
		}
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}
	c.store = store
	return store, nil
}

// Close releases the store if it was opened
func (c *Context) Close() error {
	if c.store == nil {
		return c.Backend.Close()
	}
	err := c.store.Close()
	c.store = nil
	return err
}

// ParseClock turns an HH:MM wall-clock time into the Unix time of that clock
// time on the day of now, in now's location
func ParseClock(s string, now time.Time) (int64, error) {
	t, err := time.Parse(constants.TimeFormat, strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	y, m, d := now.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()).Unix(), nil
}

// FormatClock renders a stored timestamp as local HH:MM
func FormatClock(ts int64) string {
	return time.Unix(ts, 0).Local().Format(constants.TimeFormat)
}

// SetSunTimes stores sunrise and sunset given as HH:MM. Empty values are left
// untouched. Nothing is written unless both values parse.
func SetSunTimes(store *prefs.Store, sunrise, sunset string, now time.Time) error {
	updates := make(map[string]int64, 2)
	for key, value := range map[string]string{constants.PrefSunrise: sunrise, constants.PrefSunset: sunset} {
		if value == "" {
			continue
		}
		ts, err := ParseClock(value, now)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		updates[key] = ts
	}
	for key, ts := range updates {
		store.SetInt(key, ts)
		logger.Debug("Sun time updated", "key", key, "timestamp", ts)
	}
	return nil
}

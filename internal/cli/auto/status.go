package auto

import (
	"fmt"
	"math"
	"time"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/prefs"
	"github.com/julianstephens/nightshift/internal/scheduler"
	"github.com/julianstephens/nightshift/internal/theme"
)

type StatusCmd struct{}

func clockOrUnset(store *prefs.Store, key string) string {
	ts := store.GetInt(key, math.MinInt64)
	if ts == math.MinInt64 {
		return mutedStyle.Render("not set")
	}
	return cli.FormatClock(ts)
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	enabled := store.GetBool(constants.PrefAutomaticTheme, constants.DefaultAutomaticTheme)
	current := store.GetString(constants.PrefWindowTheme, constants.DefaultWindowTheme)

	fmt.Println("Automatic Theme:")
	fmt.Printf("  Enabled:   %v\n", enabled)
	fmt.Printf("  Sunset:    %s\n", clockOrUnset(store, constants.PrefSunset))
	fmt.Printf("  Sunrise:   %s\n", clockOrUnset(store, constants.PrefSunrise))
	fmt.Printf("  Theme:     %s\n", theme.DisplayName(current))

	if d, ok := scheduler.Decide(store, time.Now(), time.Local); ok {
		fmt.Printf("  Right now: %s\n", renderDecision(d))
	} else {
		fmt.Printf("  Right now: %s\n", renderDecision(scheduler.Unknown))
	}

	if owner, ok := daemonOwner(ctx); ok {
		fmt.Printf("  Daemon:    running (pid %d since %s)\n", owner.PID, owner.StartedAt.Local().Format(time.DateTime))
	} else {
		fmt.Printf("  Daemon:    %s\n", mutedStyle.Render("not running"))
	}
	fmt.Printf("  Store:     %s\n", store.Path())
	return nil
}

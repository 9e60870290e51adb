package auto

import (
	"fmt"
	"time"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/scheduler"
	"github.com/julianstephens/nightshift/internal/theme"
)

type EnableCmd struct {
	Sunrise string `help:"Sunrise as HH:MM local time."`
	Sunset  string `help:"Sunset as HH:MM local time."`
}

func (c *EnableCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	if err := cli.SetSunTimes(store, c.Sunrise, c.Sunset, time.Now()); err != nil {
		return err
	}
	store.SetBool(constants.PrefAutomaticTheme, true)
	if !store.GetBool(constants.PrefAutomaticTheme, false) {
		return fmt.Errorf("failed to save %s, see the log for details", constants.PrefAutomaticTheme)
	}
	fmt.Println("✓ Automatic theme enabled")

	if owner, ok := daemonOwner(ctx); ok {
		fmt.Printf("  Daemon (pid %d) will pick up the change.\n", owner.PID)
		return nil
	}

	d, err := applyOnce(store)
	if err != nil {
		return err
	}
	if d == scheduler.Unknown {
		fmt.Println("  Sunrise and sunset are not set yet. Use --sunrise and --sunset, or 'nightshift auto setup'.")
		return nil
	}
	current := store.GetString(constants.PrefWindowTheme, constants.DefaultWindowTheme)
	fmt.Printf("  Now: %s, theme %s\n", renderDecision(d), theme.DisplayName(current))
	fmt.Println("  Run 'nightshift auto run' to keep the theme in sync.")
	return nil
}

type DisableCmd struct{}

func (c *DisableCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	store.SetBool(constants.PrefAutomaticTheme, false)
	if store.GetBool(constants.PrefAutomaticTheme, true) {
		return fmt.Errorf("failed to save %s, see the log for details", constants.PrefAutomaticTheme)
	}
	fmt.Println("✓ Automatic theme disabled")
	return nil
}

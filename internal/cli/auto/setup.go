package auto

import (
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/prefs"
)

// SetupCmd walks through the automatic theme preferences interactively
type SetupCmd struct{}

type setupForm struct {
	Enabled bool
	Sunset  string
	Sunrise string
}

func validateClock(s string) error {
	_, err := cli.ParseClock(s, time.Now())
	return err
}

func currentForm(store *prefs.Store) *setupForm {
	fm := &setupForm{
		Enabled: store.GetBool(constants.PrefAutomaticTheme, constants.DefaultAutomaticTheme),
		Sunset:  "20:00",
		Sunrise: "07:00",
	}
	if ts := store.GetInt(constants.PrefSunset, math.MinInt64); ts != math.MinInt64 {
		fm.Sunset = cli.FormatClock(ts)
	}
	if ts := store.GetInt(constants.PrefSunrise, math.MinInt64); ts != math.MinInt64 {
		fm.Sunrise = cli.FormatClock(ts)
	}
	return fm
}

func newSetupForm(fm *setupForm) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Switch theme automatically?").
				Value(&fm.Enabled),
			huh.NewInput().
				Title("Sunset (HH:MM)").
				Description("Dark theme starts here").
				Value(&fm.Sunset).
				Validate(validateClock),
			huh.NewInput().
				Title("Sunrise (HH:MM)").
				Description("Light theme starts here").
				Value(&fm.Sunrise).
				Validate(validateClock),
		),
	).WithTheme(huh.ThemeDracula())
}

func (fm *setupForm) apply(store *prefs.Store, now time.Time) error {
	if err := cli.SetSunTimes(store, fm.Sunrise, fm.Sunset, now); err != nil {
		return err
	}
	store.SetBool(constants.PrefAutomaticTheme, fm.Enabled)
	return nil
}

func (c *SetupCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	fm := currentForm(store)
	if err := newSetupForm(fm).Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}
	if err := fm.apply(store, time.Now()); err != nil {
		return err
	}

	fmt.Println("✓ Preferences saved")
	return (&StatusCmd{}).Run(ctx)
}

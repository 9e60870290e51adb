package system

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"time"

	"github.com/spf13/afero"

	"github.com/julianstephens/nightshift/internal/backup"
	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/locator"
	"github.com/julianstephens/nightshift/internal/lock"
	"github.com/julianstephens/nightshift/internal/prefs"
)

type DoctorCmd struct{}

type checkStatus int

const (
	statusOK checkStatus = iota
	statusWarn
	statusFail
	statusSkip
)

func report(name string, status checkStatus, detail string) {
	switch status {
	case statusOK:
		fmt.Printf("✓ %s: OK\n", name)
	case statusWarn:
		fmt.Printf("⚠ %s: WARNING\n", name)
	case statusFail:
		fmt.Printf("❌ %s: FAIL\n", name)
	case statusSkip:
		fmt.Printf("⊘ %s: SKIPPED\n", name)
	}
	if detail != "" {
		fmt.Printf("   %s\n", detail)
	}
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	fail := func(name string, err error) {
		report(name, statusFail, "Error: "+err.Error())
		hasError = true
	}

	// Check 1: store reachable
	store, err := ctx.Store()
	if err != nil {
		fail("Preference store reachable", err)
	} else if _, err := ctx.Backend.Keys(); err != nil {
		fail("Preference store reachable", err)
		store = nil
	} else {
		report("Preference store reachable", statusOK, "")
	}

	// Check 2, 3: schema (sqlite only)
	sqliteBackend, isSQLite := ctx.Backend.(*prefs.SQLiteBackend)
	switch {
	case store == nil:
		report("Schema version", statusSkip, "store not reachable")
		report("Migrations complete", statusSkip, "store not reachable")
	case !isSQLite:
		report("Schema version", statusSkip, ctx.Config.Backend+" backend has no schema")
		report("Migrations complete", statusSkip, ctx.Config.Backend+" backend has no schema")
	default:
		if err := checkSchemaVersion(sqliteBackend); err != nil {
			fail("Schema version", err)
		} else {
			report("Schema version", statusOK, "")
		}
		if err := checkMigrationsComplete(sqliteBackend); err != nil {
			fail("Migrations complete", err)
		} else {
			report("Migrations complete", statusOK, "")
		}
	}

	// Check 4: sun times (warning only)
	if store == nil {
		report("Sunrise/sunset set", statusSkip, "store not reachable")
	} else if missing := missingSunTimes(store); missing != "" {
		report("Sunrise/sunset set", statusWarn, missing+" not set - automatic theme cannot decide yet")
	} else {
		report("Sunrise/sunset set", statusOK, "")
	}

	// Check 5: daemon (informational)
	owner, err := lock.Inspect(ctx.Config.LockPath())
	switch {
	case errors.Is(err, fs.ErrNotExist):
		report("Daemon", statusWarn, "not running - start it with 'nightshift auto run'")
	case err != nil:
		report("Daemon", statusWarn, "unreadable lockfile: "+err.Error())
	case !owner.Alive:
		report("Daemon", statusWarn, fmt.Sprintf("stale lockfile from pid %d", owner.PID))
	default:
		report("Daemon", statusOK, fmt.Sprintf("pid %d", owner.PID))
	}

	// Check 6: dictionaries (warning only)
	if dir, names := locator.New(afero.NewOsFs(), nil).Dictionaries(locator.ExecutableDir()); dir == "" {
		report("Dictionaries", statusWarn, "no dictionaries directory found")
	} else {
		report("Dictionaries", statusOK, fmt.Sprintf("%d in %s", len(names), dir))
	}

	// Check 7: backups (warning only)
	if mgr, err := backup.NewManager(ctx.Backend.Path()); err != nil {
		report("Backups present", statusSkip, err.Error())
	} else if backups, err := mgr.List(); err != nil {
		report("Backups present", statusWarn, err.Error())
	} else if len(backups) == 0 {
		report("Backups present", statusWarn, "no backups found - consider creating one with 'nightshift backup create'")
	} else {
		report("Backups present", statusOK, fmt.Sprintf("%d, newest %s", len(backups), backups[0].Timestamp.Format(time.DateTime)))
	}

	// Check 8: clock/timezone sanity
	if err := checkClockTimezone(time.Now()); err != nil {
		fail("Clock/timezone", err)
	} else {
		report("Clock/timezone", statusOK, "")
	}

	fmt.Println()
	if hasError {
		fmt.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	fmt.Println("All diagnostics passed!")
	return nil
}

func checkSchemaVersion(b *prefs.SQLiteBackend) error {
	runner, err := b.Runner()
	if err != nil {
		return err
	}
	return runner.Validate()
}

func checkMigrationsComplete(b *prefs.SQLiteBackend) error {
	runner, err := b.Runner()
	if err != nil {
		return err
	}
	pending, err := runner.Pending()
	if err != nil {
		return fmt.Errorf("failed to count pending migrations: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%d migration(s) pending - run 'nightshift migrate'", pending)
	}
	return nil
}

func missingSunTimes(store *prefs.Store) string {
	sunrise := store.GetInt(constants.PrefSunrise, math.MinInt64) != math.MinInt64
	sunset := store.GetInt(constants.PrefSunset, math.MinInt64) != math.MinInt64
	switch {
	case !sunrise && !sunset:
		return "sunrise and sunset"
	case !sunrise:
		return "sunrise"
	case !sunset:
		return "sunset"
	default:
		return ""
	}
}

func checkClockTimezone(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

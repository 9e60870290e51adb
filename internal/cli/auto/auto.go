// Package auto holds the automatic theme commands.
package auto

import (
	"errors"
	"io/fs"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/lock"
	"github.com/julianstephens/nightshift/internal/logger"
	"github.com/julianstephens/nightshift/internal/prefs"
	"github.com/julianstephens/nightshift/internal/scheduler"
	"github.com/julianstephens/nightshift/internal/theme"
)

var (
	nightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	dayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderDecision(d scheduler.Decision) string {
	switch d {
	case scheduler.Night:
		return nightStyle.Render("Night")
	case scheduler.Day:
		return dayStyle.Render("Day")
	default:
		return mutedStyle.Render("Unknown")
	}
}

// daemonOwner reports the live daemon holding the store lock, if any
func daemonOwner(ctx *cli.Context) (lock.Owner, bool) {
	owner, err := lock.Inspect(ctx.Config.LockPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Debug("Ignoring unreadable lockfile", "error", err)
		}
		return lock.Owner{}, false
	}
	return owner, owner.Alive
}

// applyOnce runs a single evaluation with the theme applier attached and
// returns the resulting decision
func applyOnce(store *prefs.Store) (scheduler.Decision, error) {
	sched, err := scheduler.New(store)
	if err != nil {
		return scheduler.Unknown, err
	}
	defer sched.Close()

	sched.Subscribe(theme.NewApplier(store).Apply)
	if err := sched.Enable(); err != nil {
		return scheduler.Unknown, err
	}
	return sched.Decision(), nil
}

package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/scheduler"
	"github.com/julianstephens/nightshift/internal/theme"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	ui := lipgloss.JoinVertical(
		lipgloss.Left,
		titleStyle.Render(constants.AppName+" "+constants.Version),
		"",
		m.viewStatus(),
		"",
		m.viewHistory(),
		m.viewError(),
		m.help.View(m),
	)
	return docStyle.Render(ui)
}

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

func (m Model) clockPref(key string) string {
	v := m.store.GetInt(key, math.MinInt64)
	if v == math.MinInt64 {
		return mutedStyle.Render("not set")
	}
	return time.Unix(v, 0).Local().Format(constants.TimeFormat)
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

func (m Model) viewStatus() string {
	state := mutedStyle.Render("stopped")
	if m.sched.Running() {
		state = fmt.Sprintf("running, every %s", m.sched.Period())
	}
	current := m.store.GetString(constants.PrefWindowTheme, constants.DefaultWindowTheme)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		row("Scheduler", state),
		row("Decision", renderDecision(m.sched.Decision())),
		row("Theme", theme.DisplayName(current)),
		row("Sunset", m.clockPref(constants.PrefSunset)),
		row("Sunrise", m.clockPref(constants.PrefSunrise)),
		row("Clock", m.now.Format("15:04:05")),
	)
}

func (m Model) viewHistory() string {
	if len(m.history) == 0 {
		return mutedStyle.Render("Waiting for the first evaluation...")
	}
	lines := make([]string, 0, len(m.history)+1)
	lines = append(lines, mutedStyle.Render("Recent evaluations"))
	for _, ev := range m.history {
		lines = append(lines, fmt.Sprintf("  %s  %s", ev.At.Local().Format("15:04:05"), renderDecision(ev.Decision)))
	}
	return strings.Join(lines, "\n") + "\n"
}

func (m Model) viewError() string {
	if m.err == nil {
		return ""
	}
	return dangerStyle.Render("Error: "+m.err.Error()) + "\n"
}

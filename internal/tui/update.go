package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/scheduler"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case eventMsg:
		m.record(scheduler.Event(msg))
		return m, waitForEvent(m.events)

	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Toggle):
			enabled := m.store.GetBool(constants.PrefAutomaticTheme, constants.DefaultAutomaticTheme)
			m.store.SetBool(constants.PrefAutomaticTheme, !enabled)
			m.err = m.sched.SyncWithStore()
		case key.Matches(msg, m.keys.Reeval):
			if m.sched.Running() {
				// Enable evaluates synchronously on its way up
				if m.err = m.sched.Disable(); m.err == nil {
					m.err = m.sched.Enable()
				}
			}
		}
	}

	return m, nil
}

// Package tui is the live view behind "nightshift auto watch".
package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nightshift/internal/scheduler"
)

const historySize = 8

// Controller is the scheduler surface the view drives
type Controller interface {
	Decision() scheduler.Decision
	Running() bool
	Enable() error
	Disable() error
	SyncWithStore() error
	Period() time.Duration
}

// Store is the preference surface the view reads and toggles
type Store interface {
	GetBool(key string, def bool) bool
	SetBool(key string, v bool)
	GetInt(key string, def int64) int64
	GetString(key string, def string) string
}

type eventMsg scheduler.Event

type tickMsg time.Time

type Model struct {
	sched   Controller
	store   Store
	events  <-chan scheduler.Event
	keys    KeyMap
	help    help.Model
	history []scheduler.Event
	now     time.Time
	err     error
	width   int

	quitting bool
}

// NewModel builds the view. events is normally obtained from
// Scheduler.Events and is only read, never closed.
func NewModel(sched Controller, store Store, events <-chan scheduler.Event) Model {
	return Model{
		sched:  sched,
		store:  store,
		events: events,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		now:    time.Now(),
	}
}

func (m Model) ShortHelp() []key.Binding {
	return m.keys.ShortHelp()
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), tick())
}

func waitForEvent(events <-chan scheduler.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg(<-events)
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// History returns the most recent events, newest first
func (m Model) History() []scheduler.Event {
	return m.history
}

func (m *Model) record(ev scheduler.Event) {
	m.history = append([]scheduler.Event{ev}, m.history...)
	if len(m.history) > historySize {
		m.history = m.history[:historySize]
	}
}

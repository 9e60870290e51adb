package auto

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/scheduler"
	"github.com/julianstephens/nightshift/internal/tui"
)

// WatchCmd shows live decisions. It does not change the window theme.
type WatchCmd struct{}

func (c *WatchCmd) Run(ctx *cli.Context) error {
	store, err := ctx.Store()
	if err != nil {
		return err
	}

	sched, err := scheduler.New(store)
	if err != nil {
		return err
	}
	defer sched.Close()

	events, cancel := sched.Events(16)
	defer cancel()

	if err := sched.SyncWithStore(); err != nil {
		return err
	}

	p := tea.NewProgram(tui.NewModel(sched, store, events), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run watch view: %w", err)
	}
	return nil
}

package auto

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/lock"
	"github.com/julianstephens/nightshift/internal/logger"
	"github.com/julianstephens/nightshift/internal/metrics"
	"github.com/julianstephens/nightshift/internal/scheduler"
	"github.com/julianstephens/nightshift/internal/theme"
	"github.com/julianstephens/nightshift/internal/watcher"
)

// RunCmd keeps the window theme in sync until interrupted. SIGHUP, or any
// change to the store file, re-reads automaticTheme.
type RunCmd struct {
	Period  time.Duration `help:"Evaluation period." default:"60s"`
	NoWatch bool          `help:"Do not watch the store file for changes made by other processes."`
}

func (c *RunCmd) Run(ctx *cli.Context) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	return c.serve(sigCtx, ctx, reload)
}

func (c *RunCmd) serve(runCtx context.Context, ctx *cli.Context, reload <-chan os.Signal) error {
	l, err := lock.Acquire(ctx.Config.LockPath())
	if err != nil {
		return err
	}
	defer func() {
		if err := l.Release(); err != nil {
			logger.Warn("Failed to release lockfile", "error", err)
		}
	}()

	store, err := ctx.Store()
	if err != nil {
		return err
	}

	recorder := metrics.NewRecorder(nil, ctx.Config.MetricsFile)
	sched, err := scheduler.New(store,
		scheduler.WithPeriod(c.Period),
		scheduler.WithObserver(recorder),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := sched.Close(); err != nil {
			logger.Warn("Failed to stop scheduler", "error", err)
		}
	}()
	sched.Subscribe(theme.NewApplier(store).Apply)

	if err := sched.SyncWithStore(); err != nil {
		return err
	}

	var changes <-chan struct{}
	if !c.NoWatch && ctx.Config.Backend != constants.BackendKeyring {
		w, err := watcher.New(store.Path(), constants.WatchDebounce, nil)
		if err != nil {
			return err
		}
		if err := w.Start(runCtx); err != nil {
			return err
		}
		defer w.Stop()
		changes = w.Changed()
	} else {
		logger.Info("Store watching disabled, send SIGHUP to re-sync")
	}

	logger.Info("Daemon started", "pid", os.Getpid(), "store", store.Path(), "period", c.Period)
	fmt.Printf("nightshift running (pid %d), press Ctrl+C to stop\n", os.Getpid())

	for {
		select {
		case <-runCtx.Done():
			logger.Info("Daemon stopping")
			return nil
		case <-reload:
			logger.Info("SIGHUP received, re-syncing with store")
			c.resync(sched)
		case <-changes:
			logger.Debug("Store changed, re-syncing")
			c.resync(sched)
		}
	}
}

func (c *RunCmd) resync(sched *scheduler.Scheduler) {
	if err := sched.SyncWithStore(); err != nil {
		logger.Error("Failed to re-sync scheduler", "error", err)
	}
}

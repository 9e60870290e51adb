package system

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/nightshift/internal/backup"
	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/config"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/prefs"
)

type InitCmd struct {
	Force bool `help:"Delete existing preferences before initialization."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize preferences: %w", err)
	}
	fmt.Printf("Initialized nightshift preferences at: %s\n", ctx.Backend.Path())

	written, err := config.WriteDefault(ctx.Config)
	if err != nil {
		return err
	}
	if written {
		fmt.Printf("Wrote default config to: %s\n", ctx.Config.Dir)
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if ctx.Config.Backend == constants.BackendKeyring {
		// Secrets cannot be dropped as a file; remove them one by one
		if err := ctx.Backend.Load(); err != nil {
			if errors.Is(err, prefs.ErrNotInitialized) {
				return nil
			}
			return err
		}
		keys, err := ctx.Backend.Keys()
		if err != nil {
			return fmt.Errorf("failed to list keyring preferences: %w", err)
		}
		for _, key := range keys {
			if err := ctx.Backend.Delete(key); err != nil {
				return err
			}
		}
		fmt.Printf("Deleted %d keyring preference(s)\n", len(keys))
		return nil
	}

	path := ctx.Backend.Path()
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to access existing preferences: %w", err)
	}
	if mgr, err := backup.NewManager(path); err == nil {
		snapshot, err := mgr.Create()
		if err != nil {
			return fmt.Errorf("failed to back up existing preferences: %w", err)
		}
		fmt.Printf("Backed up existing preferences to: %s\n", snapshot)
	}
	// Close first to release the file handle
	if err := ctx.Close(); err != nil {
		return fmt.Errorf("failed to close existing preferences: %w", err)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete existing preferences: %w", err)
	}
	fmt.Printf("Deleted existing preferences at: %s\n", path)
	return nil
}

package system

import (
	"fmt"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/prefs"
)

type MigrateCmd struct{}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	sqliteBackend, ok := ctx.Backend.(*prefs.SQLiteBackend)
	if !ok {
		return fmt.Errorf("migrate command only supports the sqlite backend")
	}

	if err := sqliteBackend.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	runner, err := sqliteBackend.Runner()
	if err != nil {
		return err
	}

	count, err := runner.Apply()
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		fmt.Println("No migrations to apply. Database is up to date.")
	} else {
		fmt.Printf("Successfully applied %d migration(s).\n", count)
	}
	return nil
}

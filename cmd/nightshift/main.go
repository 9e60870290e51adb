package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/nightshift/internal/cli"
	"github.com/julianstephens/nightshift/internal/cli/auto"
	"github.com/julianstephens/nightshift/internal/cli/backups"
	"github.com/julianstephens/nightshift/internal/cli/dict"
	"github.com/julianstephens/nightshift/internal/cli/preferences"
	"github.com/julianstephens/nightshift/internal/cli/system"
	"github.com/julianstephens/nightshift/internal/config"
	"github.com/julianstephens/nightshift/internal/constants"
	"github.com/julianstephens/nightshift/internal/errors"
	"github.com/julianstephens/nightshift/internal/logger"
	"github.com/julianstephens/nightshift/internal/prefs"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding config.yaml, the store and logs." type:"path" default:"${config_dir}" env:"NIGHTSHIFT_CONFIG_DIR"`
	Debug     bool   `help:"Log debug output to stderr."`

	Init    system.InitCmd    `cmd:"" help:"Initialize nightshift preferences."`
	Migrate system.MigrateCmd `cmd:"" help:"Run database migrations."`
	Doctor  system.DoctorCmd  `cmd:"" help:"Run health checks and diagnostics."`
	Prefs   struct {
		Get   preferences.GetCmd   `cmd:"" help:"Print a preference value."`
		Set   preferences.SetCmd   `cmd:"" help:"Set a preference value."`
		Unset preferences.UnsetCmd `cmd:"" help:"Remove a preference."`
		List  preferences.ListCmd  `cmd:"" help:"List all preferences." default:"1"`
	} `cmd:"" help:"Manage stored preferences."`
	Auto struct {
		Enable  auto.EnableCmd  `cmd:"" help:"Enable the automatic theme."`
		Disable auto.DisableCmd `cmd:"" help:"Disable the automatic theme."`
		Status  auto.StatusCmd  `cmd:"" help:"Show automatic theme status." default:"1"`
		Setup   auto.SetupCmd   `cmd:"" help:"Configure the automatic theme interactively."`
		Run     auto.RunCmd     `cmd:"" help:"Keep the window theme in sync until interrupted."`
		Watch   auto.WatchCmd   `cmd:"" help:"Show live scheduler decisions."`
	} `cmd:"" help:"Switch between light and dark theme at sunset and sunrise."`
	Backup struct {
		Create  backups.CreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.ListCmd    `cmd:"" help:"List available backups."`
		Restore backups.RestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage preference store backups."`
	Dict struct {
		List dict.ListCmd `cmd:"" help:"List available spell-check dictionaries." default:"1"`
	} `cmd:"" help:"Spell-check dictionaries."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Adaptive preference engine with automatic day/night theme switching"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    constants.Version,
			"config_dir": constants.DefaultConfigDir,
		},
	)

	cfg, err := config.Load(CLI.ConfigDir)
	if err != nil {
		errors.Fatal(err)
	}
	if CLI.Debug {
		cfg.Debug = true
	}

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: cfg.Dir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	backend, err := prefs.NewBackend(cfg.Backend, cfg.Store)
	if err != nil {
		errors.Fatal(err)
	}

	appCtx := cli.NewContext(cfg, backend)
	err = ctx.Run(appCtx)
	if cerr := appCtx.Close(); cerr != nil {
		logger.Warn("Failed to close preferences", "error", cerr)
	}
	if err != nil {
		errors.Fatal(err)
	}
}

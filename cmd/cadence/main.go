package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kmaguire/cadence/internal/auth"
	"github.com/kmaguire/cadence/internal/cli"
	"github.com/kmaguire/cadence/internal/constants"
	"github.com/kmaguire/cadence/internal/logger"
	"github.com/kmaguire/cadence/internal/notifier"
	"github.com/kmaguire/cadence/internal/storage"
	"github.com/kmaguire/cadence/internal/tracker"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage path or PostgreSQL connection string. For PostgreSQL, credentials must NOT be embedded in the connection string. Use environment variables or .pgpass instead." type:"string" default:"~/.config/cadence/cadence.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init     cli.InitCmd     `cmd:"" help:"Initialize cadence storage."`
	Register cli.RegisterCmd `cmd:"" help:"Create an account and sign in."`
	Login    cli.LoginCmd    `cmd:"" help:"Sign in to an existing account."`
	Logout   cli.LogoutCmd   `cmd:"" help:"Sign out."`
	Whoami   cli.WhoamiCmd   `cmd:"" help:"Show the signed-in account."`
	Habit    cli.HabitCmd    `cmd:"" help:"Manage habits."`
	Today    cli.TodayCmd    `cmd:"" help:"Show today's checklist."`
	Log      cli.LogCmd      `cmd:"" help:"Show completion history."`
	Tui      cli.TuiCmd      `cmd:"" help:"Launch the interactive TUI." default:"1"`
}

func main() {
	// Optional .env for DB connection and tray settings
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Local-first habit tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	config := CLI.Config
	if conn := os.Getenv("CADENCE_DB_CONNECTION"); conn != "" {
		config = conn
	}

	var store storage.Provider
	switch {
	case strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://"):
		if storage.HasEmbeddedCredentials(config) {
			fmt.Fprintf(os.Stderr, "Error: PostgreSQL connection strings with embedded credentials are not allowed.\n")
			fmt.Fprintf(os.Stderr, "       Use environment variables (CADENCE_DB_CONNECTION) or a .pgpass file instead.\n")
			os.Exit(1)
		}
		store = storage.NewPostgresStore(config)
	case strings.HasSuffix(config, ".json"):
		store = storage.NewJSONStore(config)
	default:
		store = storage.NewSQLiteStore(config)
	}

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(store.GetConfigPath()),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tr := tracker.New(store, tracker.WithReminders(notifier.New()))
	appCtx := &cli.Context{
		Store:   store,
		Auth:    auth.NewService(store),
		Tracker: tr,
	}

	// Init handles its own storage lifecycle
	if ctx.Selected() != nil && ctx.Selected().Name != "init" {
		if err := appCtx.Bootstrap(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	err := ctx.Run(appCtx)

	// Drain in-flight saves before the process exits
	if cerr := tr.Close(); err == nil {
		err = cerr
	}
	if cerr := store.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ut4master/internal/auth/app"
)

// Flags shared by every subcommand. Unset flags leave the environment
// configuration alone.
var (
	databaseDriver string
	databaseFile   string
	databaseURL    string
)

// NewRootCmd creates the root command for the account service CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "UT4 master server account service",
		Long: `The account service issues and verifies the OAuth2 sessions
Unreal Tournament 4 builds and the web front end log in with.

Configuration is read from the environment (see AUTH_* variables);
flags override it.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&databaseDriver, "driver", "", "database driver (sqlite, postgres)")
	cmd.PersistentFlags().StringVar(&databaseFile, "database-file", "", "sqlite database file")
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "postgres connection URL")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewClientCmd())
	cmd.AddCommand(NewAccountCmd())

	return cmd
}

// loadConfig reads the environment and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (app.Config, *slog.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.DatabaseDriver = databaseDriver
	}
	if flags.Changed("database-file") {
		cfg.DatabaseFile = databaseFile
	}
	if flags.Changed("database-url") {
		cfg.DatabaseURL = databaseURL
	}
	if err := cfg.Validate(); err != nil {
		return app.Config{}, nil, err
	}

	return cfg, app.NewLogger(cfg), nil
}

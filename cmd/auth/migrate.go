package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ut4master/internal/auth/app"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending migrations to the configured store and exit.`,
		RunE:  runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	cmd.Println("Connecting to database...")
	st, err := app.OpenStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	cmd.Println("Running migrations...")
	if err := app.Migrate(st, logger); err != nil {
		return err
	}

	cmd.Println("Migrations completed successfully")
	return nil
}

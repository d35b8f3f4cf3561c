package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ut4master/internal/auth/app"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the account HTTP API",
		Long: `Connect to the store, apply pending migrations, make sure the
seed clients exist and serve the account API until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(cmd)
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			application, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return oops.Code("STARTUP_FAILED").Wrap(err)
			}
			return application.Run()
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "HTTP listen port")
	return cmd
}

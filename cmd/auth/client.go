package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ut4master/internal/auth/app"
	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
	"github.com/aussiebroadwan/ut4master/pkg/cryptox"
	"github.com/aussiebroadwan/ut4master/pkg/idx"
	"github.com/aussiebroadwan/ut4master/pkg/slogx"
)

// NewClientCmd creates the client command group.
func NewClientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Manage OAuth2 clients",
	}
	cmd.AddCommand(newClientCreateCmd())
	cmd.AddCommand(newClientListCmd())
	cmd.AddCommand(newClientDeleteCmd())
	return cmd
}

func newClientCreateCmd() *cobra.Command {
	var (
		id            string
		name          string
		secret        string
		public        bool
		singleSession bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a client",
		Long: `Register a client and print its id and secret. The secret is
generated when --secret is empty and cannot be recovered later.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req := service.NewClient{
				Name:          name,
				Secret:        secret,
				Confidential:  !public,
				SingleSession: singleSession,
			}
			if public && secret != "" {
				return oops.Code("FLAGS_INVALID").Errorf("--public and --secret are mutually exclusive")
			}
			if id != "" {
				parsed, err := idx.Parse(id)
				if err != nil {
					return oops.Code("FLAGS_INVALID").With("id", id).Wrap(err)
				}
				req.ID = parsed
			}

			return withStore(cmd, func(st store.Store) error {
				clients := &service.ClientService{Store: st}
				c, plain, err := clients.CreateClient(cmd.Context(), req)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "client_id:     %s\n", c.ID)
				if plain != "" {
					fmt.Fprintf(out, "client_secret: %s\n", plain)
				} else {
					fmt.Fprintln(out, "client_secret: (public client)")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "client id (32 hex characters, generated when empty)")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&secret, "secret", "", "client secret (generated when empty)")
	cmd.Flags().BoolVar(&public, "public", false, "register a public client without a secret")
	cmd.Flags().BoolVar(&singleSession, "single-session", false, "keep at most one session per account on this client")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newClientListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered clients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(st store.Store) error {
				clients, err := (&service.ClientService{Store: st}).ListClients(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCONFIDENTIAL\tSINGLE SESSION")
				for _, c := range clients {
					fmt.Fprintf(w, "%s\t%s\t%t\t%t\n", c.ID, c.Name, c.IsConfidential(), c.SingleSession)
				}
				return w.Flush()
			})
		},
	}
}

func newClientDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <client-id>",
		Short: "Delete a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idx.Parse(args[0])
			if err != nil {
				return oops.Code("ARGS_INVALID").With("id", args[0]).Wrap(err)
			}
			return withStore(cmd, func(st store.Store) error {
				if err := (&service.ClientService{Store: st}).DeleteClient(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted client %s\n", id)
				return nil
			})
		},
	}
}

// withStore opens and migrates the configured store, runs fn with a logger
// in the command context and closes the store afterwards.
func withStore(cmd *cobra.Command, fn func(st store.Store) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	cryptox.SetPepperPath(cfg.PepperFile)

	st, err := app.OpenStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := app.Migrate(st, logger); err != nil {
		return err
	}

	cmd.SetContext(slogx.WithContext(cmd.Context(), logger))
	return fn(st)
}

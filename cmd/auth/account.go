package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aussiebroadwan/ut4master/internal/auth/service"
	"github.com/aussiebroadwan/ut4master/internal/auth/store"
)

// NewAccountCmd creates the account command group.
func NewAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage player accounts",
	}
	cmd.AddCommand(newAccountCreateCmd())
	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	var username, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(cmd, func(st store.Store) error {
				accounts := &service.AccountService{Store: st}
				a, err := accounts.CreateAccount(cmd.Context(), username, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "account_id: %s\n", a.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "login and display name")
	cmd.Flags().StringVar(&email, "email", "", "optional email address, also accepted as login")
	cmd.Flags().StringVar(&password, "password", "", "password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

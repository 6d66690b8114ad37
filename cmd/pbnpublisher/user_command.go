package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"PBNPublisher/internal/app"
)

func newUserCommand(ctx *commandContext) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage dashboard accounts",
	}

	var email, password, name string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(application *app.Application) error {
				user, err := application.Accounts.Register(cmd.Context(), email, password, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", user.ID, user.Email)
				return nil
			})
		},
	}
	addCmd.Flags().StringVar(&email, "email", "", "Login email")
	addCmd.Flags().StringVar(&password, "password", "", "Login password")
	addCmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = addCmd.MarkFlagRequired("email")
	_ = addCmd.MarkFlagRequired("password")

	userCmd.AddCommand(addCmd)
	return userCmd
}

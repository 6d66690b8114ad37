package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"PBNPublisher/internal/app"
	"PBNPublisher/internal/usecase"
)

func newWebsiteCommand(ctx *commandContext) *cobra.Command {
	websiteCmd := &cobra.Command{
		Use:   "website",
		Short: "Manage WordPress publish targets",
	}
	websiteCmd.AddCommand(newWebsiteAddCommand(ctx))
	websiteCmd.AddCommand(newWebsiteListCommand(ctx))
	websiteCmd.AddCommand(newWebsiteTestCommand(ctx))
	return websiteCmd
}

func newWebsiteAddCommand(ctx *commandContext) *cobra.Command {
	var in usecase.WebsiteInput
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a WordPress site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(application *app.Application) error {
				userID, err := ctx.operator(cmd, application)
				if err != nil {
					return err
				}
				site, err := application.Websites.Create(cmd.Context(), userID, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added website %d (%s)\n", site.ID, site.URL)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "Site name as it appears in spreadsheets")
	cmd.Flags().StringVar(&in.URL, "url", "", "Site origin, e.g. https://blog.example.com")
	cmd.Flags().StringVar(&in.Username, "username", "", "WordPress username")
	cmd.Flags().StringVar(&in.AppPassword, "password", "", "WordPress application password")
	return cmd
}

func newWebsiteListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(cmd, func(application *app.Application) error {
				userID, err := ctx.operator(cmd, application)
				if err != nil {
					return err
				}
				sites, err := application.Websites.List(cmd.Context(), userID)
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(sites))
				for _, site := range sites {
					rows = append(rows, []string{
						strconv.FormatInt(site.ID, 10),
						site.Name,
						site.URL,
						site.Username,
						string(site.Status),
					})
				}
				writeListing(cmd.OutOrStdout(),
					[]string{"ID", "Name", "URL", "User", "Status"}, rows,
					[]columnAlignment{alignRight})
				return nil
			})
		},
	}
}

func newWebsiteTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test <id>",
		Short: "Check a site's stored credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "website")
			if err != nil {
				return err
			}
			return ctx.withApp(cmd, func(application *app.Application) error {
				userID, err := ctx.operator(cmd, application)
				if err != nil {
					return err
				}
				name, err := application.Websites.TestConnection(cmd.Context(), userID, usecase.ConnectionTest{WebsiteID: id})
				if err != nil {
					return fmt.Errorf("connection failed: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Connected as %s\n", name)
				return nil
			})
		},
	}
}

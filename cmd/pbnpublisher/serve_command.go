package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"PBNPublisher/internal/app"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.SetContext(runCtx)

			return ctx.withApp(cmd, func(application *app.Application) error {
				return application.Run(runCtx)
			})
		},
	}
}

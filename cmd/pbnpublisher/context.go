package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"PBNPublisher/internal/app"
	"PBNPublisher/internal/config"
	"PBNPublisher/internal/logging"
)

type commandContext struct {
	configFlag *string
	userFlag   *string
}

func newCommandContext(configFlag, userFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag, userFlag: userFlag}
}

func (c *commandContext) loadConfig() (config.Config, error) {
	var path string
	if c.configFlag != nil {
		path = strings.TrimSpace(*c.configFlag)
	}
	return config.LoadFrom(path)
}

// withApp opens the application for the duration of fn. Logs go to stderr so
// command output stays clean for pipes.
func (c *commandContext) withApp(cmd *cobra.Command, fn func(*app.Application) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	logger := logging.NewWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()
	return fn(application)
}

// operator resolves --user to an account id.
func (c *commandContext) operator(cmd *cobra.Command, application *app.Application) (int64, error) {
	email := ""
	if c.userFlag != nil {
		email = strings.TrimSpace(*c.userFlag)
	}
	if email == "" {
		return 0, errors.New("--user is required for this command")
	}
	user, err := application.Accounts.Lookup(cmd.Context(), email)
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func parseID(raw, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, raw)
	}
	return id, nil
}

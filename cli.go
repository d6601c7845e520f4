package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"writer-studio/internal/config"
	"writer-studio/internal/logger"
)

// newCLIApp creates the CLI application. Running with no command serves.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "writer-studio",
		Usage:   "AI email and prompt writer with per-user history",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides PORT)"},
			&cli.StringFlag{Name: "log-level", Usage: "debug|info|warn|error (overrides LOG_LEVEL)"},
		},
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
		Action: func(c *cli.Context) error {
			return runServe(c)
		},
	}
	return app
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP server",
		Action: runServe,
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the PostgreSQL tables and exit",
		Action: func(c *cli.Context) error {
			cfg, appLogger, err := setup(c)
			if err != nil {
				return err
			}
			return migrate(cfg, appLogger)
		},
	}
}

func runServe(c *cli.Context) error {
	cfg, appLogger, err := setup(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return serve(cfg, appLogger)
}

// setup loads configuration, applies flag overrides and builds the logger.
func setup(c *cli.Context) (*config.Config, *logger.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	appLogger := logger.New()
	appLogger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	return cfg, appLogger, nil
}

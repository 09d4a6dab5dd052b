// Command leadsearch serves the lead search admin page and carries the
// maintenance commands that go with it.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"leadsearch/internal/config"
	"leadsearch/internal/observability"
)

func main() {
	app := &cli.Command{
		Name:  "leadsearch",
		Usage: "Lead search admin server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML configuration file path",
				Sources: cli.EnvVars("LEADSEARCH_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			sessionCommand(),
			seedCommand(),
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "leadsearch:", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration named by the global --config flag and
// builds the logger it describes.
func loadConfig(c *cli.Command) (*config.Config, observability.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, observability.NewLogger(cfg.Log), nil
}

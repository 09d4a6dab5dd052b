package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or inspect database migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply pending migrations",
				Action: func(ctx context.Context, c *cli.Command) error {
					cfg, logger, err := loadConfig(c)
					if err != nil {
						return err
					}
					// Opening a store applies its migrations.
					be, err := openBackend(cfg, logger)
					if err != nil {
						return err
					}
					if err := be.Close(); err != nil {
						return err
					}
					return printStatus(c)
				},
			},
			{
				Name:  "status",
				Usage: "Show migration status",
				Action: func(ctx context.Context, c *cli.Command) error {
					return printStatus(c)
				},
			},
		},
	}
}

func printStatus(c *cli.Command) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	status, err := migrationStatus(cfg)
	if err != nil {
		return fmt.Errorf("migration status: %w", err)
	}
	fmt.Fprintln(c.Root().Writer, status)
	return nil
}

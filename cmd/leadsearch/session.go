package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"leadsearch/internal/auth"
)

// sessionCommand mints sessions for development. Issuing sessions through a
// login page lives outside this binary.
func sessionCommand() *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Manage search sessions",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a session for an owner and agent and print its ID",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "owner", Usage: "owner (tenant) ID", Required: true},
					&cli.Int64Flag{Name: "agent", Usage: "acting agent ID"},
					&cli.DurationFlag{Name: "ttl", Usage: "session lifetime", Value: auth.DefaultSessionDuration},
				},
				Action: createSession,
			},
		},
	}
}

func createSession(ctx context.Context, c *cli.Command) error {
	if c.Int64("owner") <= 0 {
		return errors.New("--owner must be positive")
	}
	cfg, logger, err := loadConfig(c)
	if err != nil {
		return err
	}
	be, err := openBackend(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = be.Close() }()
	if !be.durable {
		logger.Warn("sessions are kept in memory in this build; the new session ends with this process")
	}

	session, err := auth.NewSession(c.Int64("owner"), c.Int64("agent"), c.Duration("ttl"))
	if err != nil {
		return err
	}
	if err := be.sessions.Create(ctx, session); err != nil {
		return fmt.Errorf("storing session: %w", err)
	}
	fmt.Fprintln(c.Root().Writer, session.ID)
	return nil
}

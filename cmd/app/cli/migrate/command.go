package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "properly.homes/backend/cmd/app/cli"
	"properly.homes/backend/internal/migrations"
)

type CommandDeps struct {
	fx.In

	DB *bun.DB
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "manage the database schema",
		Subcommands: []*cli.Command{
			{
				Name:  "up",
				Usage: "apply pending migrations",
				Action: func(c *cli.Context) error {
					return cliapp.Run(c.Context, func(ctx context.Context, deps CommandDeps) error {
						return migrations.Up(ctx, deps.DB)
					})
				},
			},
			{
				Name:  "down",
				Usage: "roll back the last migration group",
				Action: func(c *cli.Context) error {
					return cliapp.Run(c.Context, func(ctx context.Context, deps CommandDeps) error {
						return migrations.Down(ctx, deps.DB)
					})
				},
			},
			{
				Name:  "status",
				Usage: "print applied and pending migrations",
				Action: func(c *cli.Context) error {
					return cliapp.Run(c.Context, func(ctx context.Context, deps CommandDeps) error {
						status, err := migrations.CurrentStatus(ctx, deps.DB)
						if err != nil {
							return err
						}
						fmt.Fprintf(c.App.Writer, "applied:    %s\n", strings.Join(status.Applied, ", "))
						fmt.Fprintf(c.App.Writer, "pending:    %s\n", strings.Join(status.Unapplied, ", "))
						fmt.Fprintf(c.App.Writer, "last group: %s\n", status.LastGroup)
						return nil
					})
				},
			},
		},
	}
}

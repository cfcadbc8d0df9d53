package seed

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	cliapp "properly.homes/backend/cmd/app/cli"
	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/seed"
)

type CommandDeps struct {
	fx.In

	Config *appconfig.Config
	DB     *bun.DB
}

func Command() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "seed subscription plans and the base location set",
		Action: func(c *cli.Context) error {
			return cliapp.Run(c.Context, func(ctx context.Context, deps CommandDeps) error {
				res, err := seed.Run(ctx, deps.DB, deps.Config.BillingCurrency)
				if err != nil {
					return err
				}
				log.Info().
					Int("plans", res.Plans).
					Int("countries", res.Countries).
					Int("regions", res.Regions).
					Int("cities", res.Cities).
					Msg("seed completed")
				return nil
			})
		},
	}
}

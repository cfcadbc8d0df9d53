package server

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"go.uber.org/fx"

	"properly.homes/backend/internal/app"
	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/app/appcontext"
)

func Command() *cli.Command {
	return &cli.Command{
		Name:    "start",
		Aliases: []string{"serve"},
		Usage:   "serve the marketplace API and run the background workers",
		Action: func(c *cli.Context) error {
			app.New(appcontext.Declare(appcontext.EnvServer), fx.Invoke(run)).Run()
			return nil
		},
	}
}

func run(serve *fiber.App, conf *appconfig.Config, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", conf.ServiceAddress)
			if err != nil {
				return err
			}
			log.Info().Str("address", conf.ServiceAddress).Msg("server listening")

			go func() {
				if err := serve.Listener(ln); err != nil {
					log.Error().Err(err).Msg("server terminated unexpectedly")
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			return serve.ShutdownWithTimeout(conf.HTTPServerShutdownTimeout)
		},
	})
}

package app

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"properly.homes/backend/cmd/app/cli/migrate"
	"properly.homes/backend/cmd/app/cli/seed"
	"properly.homes/backend/cmd/app/server"
	"properly.homes/backend/internal/pkg/bininfo"
)

func Run() {
	app := &cli.App{
		Name:        "properly",
		Description: "The Properly luxury real-estate marketplace backend. Built with Go, fiber, bun and go.uber.org/fx. Uses NATS JetStream for mail delivery and Redis for caching and locks.",
		Version:     bininfo.Version,
		Commands: []*cli.Command{
			server.Command(),
			migrate.Command(),
			seed.Command(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("failed to run app")
	}
}

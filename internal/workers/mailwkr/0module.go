package mailwkr

import (
	"go.uber.org/fx"

	"properly.homes/backend/internal/pkg/mailer"
)

func Module() fx.Option {
	return fx.Module("workers.mail",
		fx.Provide(mailer.New, mailer.NewRenderer),
		fx.Invoke(Start),
	)
}

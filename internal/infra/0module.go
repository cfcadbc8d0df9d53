package infra

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("infra",
		fx.Provide(
			NATS,
			Redis,
			RedSync,
			Locker,
			Postgres,
			GeoIPDatabase,
			Stripe,
			S3,
		),
		fx.Invoke(SentryInit),
		fx.Invoke(Tracing),
	)
}

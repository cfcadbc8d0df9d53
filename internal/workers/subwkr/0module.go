package subwkr

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("workers.subscription", fx.Invoke(Start))
}

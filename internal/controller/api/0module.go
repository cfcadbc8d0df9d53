package api

import (
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module("controllers.api", fx.Invoke(
		RegisterAuth,
		RegisterAgent,
		RegisterBilling,
		RegisterProperty,
		RegisterLocation,
		RegisterBlog,
		RegisterMessage,
		RegisterLocale,
	))
}

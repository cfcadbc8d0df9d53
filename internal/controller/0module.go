package controller

import (
	"go.uber.org/fx"

	controlleradmin "properly.homes/backend/internal/controller/admin"
	controllerapi "properly.homes/backend/internal/controller/api"
	controllermeta "properly.homes/backend/internal/controller/meta"
)

func Module() fx.Option {
	return fx.Module("controller",
		// Controllers (public & session)
		controllerapi.Module(),

		// Controllers (back office)
		controlleradmin.Module(),

		// Controllers (meta)
		controllermeta.Module(),
	)
}

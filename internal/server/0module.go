package server

import (
	"go.uber.org/fx"

	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/server/httpserver"
	"properly.homes/backend/internal/server/svr"
)

func Module() fx.Option {
	return fx.Module("server",
		fx.Provide(authn.New),
		fx.Provide(middlewares.NewAuth),
		fx.Provide(httpserver.Create),
		fx.Provide(svr.CreateEndpointGroups))
}

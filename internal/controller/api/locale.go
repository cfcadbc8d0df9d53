package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"properly.homes/backend/internal/pkg/cachectrl"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
)

type Locale struct {
	fx.In

	GeoIPService *service.GeoIP
}

func RegisterLocale(api *svr.API, c Locale) {
	api.Get("/locale", c.Locale)
}

func (c *Locale) Locale(ctx *fiber.Ctx) error {
	cachectrl.OptOut(ctx)
	return ctx.JSON(c.GeoIPService.Locale(ctx.IP(), ctx.Get(fiber.HeaderAcceptLanguage)))
}

package meta

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"properly.homes/backend/internal/pkg/bininfo"
	"properly.homes/backend/internal/pkg/cachectrl"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
)

type Meta struct {
	fx.In

	HealthService *service.Health
}

func RegisterMeta(meta *svr.Meta, c Meta) {
	meta.Get("/bininfo", c.BinInfo)

	// cached for a second so that probes cannot hammer the backing stores
	meta.Get("/health", cache.New(cache.Config{
		Expiration: time.Second,
	}), c.Health)
}

func (c *Meta) BinInfo(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{
		"name":    bininfo.Name,
		"version": bininfo.Version,
		"build":   bininfo.BuildTime,
	})
}

func (c *Meta) Health(ctx *fiber.Ctx) error {
	cachectrl.OptOut(ctx)
	report, err := c.HealthService.Check(ctx.UserContext())
	if err != nil {
		log.Warn().Err(err).Str("evt.name", "health.degraded").Msg("health check failed")
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(report)
	}

	return ctx.JSON(report)
}

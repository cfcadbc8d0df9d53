package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/pkg/flog"
)

func Logger(app *fiber.App) {
	for _, h := range []fiber.Handler{
		injectLogger(),
		flog.RequestIDHandler("request_id", constant.RequestIDHeader),
		flog.FieldHandler("ip", func(ctx *fiber.Ctx) string { return ctx.IP() }),
		flog.FieldHandler("method", func(ctx *fiber.Ctx) string { return ctx.Method() }),
		flog.FieldHandler("url", func(ctx *fiber.Ctx) string { return ctx.OriginalURL() }),
		flog.FieldHandler("user_agent", func(ctx *fiber.Ctx) string { return ctx.Get(fiber.HeaderUserAgent) }),
		requestLogger(),
	} {
		app.Use(h)
	}
}

func injectLogger() func(ctx *fiber.Ctx) error {
	return flog.NewHandlerMiddleware(log.With().Logger())
}

func requestLogger() func(ctx *fiber.Ctx) error {
	return flog.AccessHandler(func(ctx *fiber.Ctx, duration time.Duration) {
		level := zerolog.InfoLevel
		if ctx.Response().StatusCode() >= fiber.StatusInternalServerError {
			level = zerolog.WarnLevel
		}
		evt := flog.FromFiberCtx(ctx).WithLevel(level)
		evt.
			Str("component", "httpreq").
			Int("status", ctx.Response().StatusCode()).
			Int("size", len(ctx.Response().Body())).
			Dur("duration", duration).
			Msg("received request")
	})
}

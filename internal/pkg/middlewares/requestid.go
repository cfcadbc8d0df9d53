package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/pkg/flog"
)

func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := flog.IDFromFiberCtx(c)
		if ok {
			c.Locals(constant.LocalsKeyRequestID, id.String())
		}
		return c.Next()
	}
}

package util

import (
	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/constant"
)

func IdempotencyKeyFromLocals(ctx *fiber.Ctx) string {
	l, ok := ctx.Locals(constant.LocalsKeyIdempotency).(string)
	if !ok {
		return ""
	}

	return l
}

package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/fiberstore"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/pkg/prerr"
)

// principal returns the caller. Routes using it sit behind Auth.Required().
func principal(ctx *fiber.Ctx) *authn.Principal {
	p, _ := authn.PrincipalFromCtx(ctx)
	return p
}

// optionalPrincipal returns nil for anonymous callers.
func optionalPrincipal(ctx *fiber.Ctx) *authn.Principal {
	if p, ok := authn.PrincipalFromCtx(ctx); ok {
		return p
	}
	return nil
}

func paramID(ctx *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, prerr.ErrInvalidReq.Msg("invalid %s", name)
	}
	return id, nil
}

func idempotent(client *redis.Client, locker middlewares.Locker, scope string) fiber.Handler {
	return middlewares.Idempotency(&middlewares.IdempotencyConfig{
		Lifetime:  constant.IdempotencyLifetime,
		KeyHeader: constant.IdempotencyKeyHdr,
		KeepResponseHeaders: []string{
			fiber.HeaderContentType,
			fiber.HeaderContentLength,
			fiber.HeaderLocation,
		},
		Storage: fiberstore.NewRedis(client, constant.IdempotencyRedisKeyPrefix+":"+scope),
		Locker:  locker,
	})
}

func rateLimit(client *redis.Client, max int, window time.Duration) fiber.Handler {
	return middlewares.RateLimit(max, window, fiberstore.NewRedis(client, constant.RateLimitRedisKeyPrefix))
}

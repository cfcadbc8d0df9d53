package meta

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"properly.homes/backend/internal/model/cache"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/util/rekuest"
)

func RegisterCache(admin *svr.Admin) {
	admin.Get("/cache", ListCaches)
	admin.Post("/cache/purge", PurgeCache)
}

func ListCaches(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"names": cache.Names()})
}

func PurgeCache(ctx *fiber.Ctx) error {
	var request types.PurgeCacheRequest
	if err := rekuest.ValidBody(ctx, &request); err != nil {
		return err
	}
	if err := cache.Delete(request.Name, request.Key); err != nil {
		if errors.Is(err, cache.ErrUnknownCache) {
			return prerr.ErrInvalidReq.Msg("%s", err)
		}
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

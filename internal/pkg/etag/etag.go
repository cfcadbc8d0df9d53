// Package etag derives weak validators for cacheable JSON responses.
package etag

import (
	"strconv"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/zeebo/xxh3"

	"properly.homes/backend/internal/constant"
)

func Of(body []byte) string {
	return `W/"` + strconv.FormatUint(xxh3.Hash(body), 36) + `"`
}

// JSON writes value with an ETag, answering 304 when the client already holds it.
func JSON(ctx *fiber.Ctx, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return err
	}
	tag := Of(body)
	ctx.Set(fiber.HeaderETag, tag)
	if match := ctx.Get(fiber.HeaderIfNoneMatch); match != "" && match == tag {
		ctx.Set(constant.CacheStatusHeader, "revalidated")
		return ctx.SendStatus(fiber.StatusNotModified)
	}
	ctx.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	return ctx.Send(body)
}

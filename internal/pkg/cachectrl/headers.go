package cachectrl

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DefaultMaxAge applies to public catalog responses such as subscription plans.
const DefaultMaxAge = time.Hour

// OptIn marks a public response as cacheable for DefaultMaxAge starting at lastModified.
func OptIn(ctx *fiber.Ctx, lastModified time.Time) {
	OptInCustom(ctx, lastModified, DefaultMaxAge)
}

// OptInCustom marks a public response as cacheable for maxAge. Localized payloads vary
// on Accept-Language so shared caches keep one copy per language.
func OptInCustom(ctx *fiber.Ctx, lastModified time.Time, maxAge time.Duration) {
	ctx.Set(fiber.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
	ctx.Set(fiber.HeaderExpires, lastModified.Add(maxAge).UTC().Format(time.RFC1123))
	ctx.Vary(fiber.HeaderAcceptLanguage)

	ctx.Response().Header.SetLastModified(lastModified)
}

// OptOut forbids caching. Use it for anything carrying a user's own data.
func OptOut(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "private, no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
}

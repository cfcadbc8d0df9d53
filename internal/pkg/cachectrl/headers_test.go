package cachectrl

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptInCustom(t *testing.T) {
	modified := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	app := fiber.New()
	app.Get("/", func(ctx *fiber.Ctx) error {
		OptInCustom(ctx, modified, 30*time.Minute)
		return ctx.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, "public, max-age=1800", resp.Header.Get(fiber.HeaderCacheControl))
	assert.Equal(t, modified.Add(30*time.Minute).Format(time.RFC1123), resp.Header.Get(fiber.HeaderExpires))
	assert.Equal(t, fiber.HeaderAcceptLanguage, resp.Header.Get(fiber.HeaderVary))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderLastModified))
}

func TestOptOut(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(ctx *fiber.Ctx) error {
		OptOut(ctx)
		return ctx.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Contains(t, resp.Header.Get(fiber.HeaderCacheControl), "no-store")
	assert.Equal(t, "no-cache", resp.Header.Get(fiber.HeaderPragma))
	assert.Equal(t, "0", resp.Header.Get(fiber.HeaderExpires))
}

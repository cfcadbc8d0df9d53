package util

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"properly.homes/backend/internal/constant"
)

func TestIdempotencyKeyFromLocals(t *testing.T) {
	var keys []string

	app := fiber.New()
	app.Post("/checkout", func(ctx *fiber.Ctx) error {
		if k := ctx.Get(constant.IdempotencyKeyHdr); k != "" {
			ctx.Locals(constant.LocalsKeyIdempotency, k)
		}
		keys = append(keys, IdempotencyKeyFromLocals(ctx))
		return nil
	})

	req := httptest.NewRequest(fiber.MethodPost, "/checkout", nil)
	req.Header.Set(constant.IdempotencyKeyHdr, "abc123")
	_, err := app.Test(req)
	require.NoError(t, err)

	_, err = app.Test(httptest.NewRequest(fiber.MethodPost, "/checkout", nil))
	require.NoError(t, err)

	assert.Equal(t, []string{"abc123", ""}, keys)
}

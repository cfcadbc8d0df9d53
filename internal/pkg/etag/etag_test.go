package etag

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfIsStable(t *testing.T) {
	assert.Equal(t, Of([]byte(`[1,2]`)), Of([]byte(`[1,2]`)))
	assert.NotEqual(t, Of([]byte(`[1,2]`)), Of([]byte(`[1,3]`)))
}

func TestJSONConditional(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return JSON(c, []string{"FR", "ES"})
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	tag := resp.Header.Get(fiber.HeaderETag)
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(fiber.HeaderIfNoneMatch, tag)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotModified, resp.StatusCode)
}

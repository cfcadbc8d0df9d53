package meta

import (
	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/constant"
)

func RegisterIndex(app *fiber.App) {
	app.Get("/api", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"@link":   "https://properly.homes",
			"message": "Welcome to the " + constant.SiteName + " API",
		})
	})
}

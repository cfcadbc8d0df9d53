package svr

import (
	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/pkg/middlewares"
)

// API serves the public and session-authenticated endpoints under /api.
type API struct {
	fiber.Router
}

// Meta serves health and build information under /api/_.
type Meta struct {
	fiber.Router
}

// Admin serves back-office endpoints. Every route requires admin credentials.
type Admin struct {
	fiber.Router
}

func CreateEndpointGroups(app *fiber.App, auth *middlewares.Auth) (*API, *Meta, *Admin) {
	admin := app.Group("/api/_/admin", auth.Admin())
	meta := app.Group("/api/_")
	api := app.Group("/api")

	return &API{Router: api}, &Meta{Router: meta}, &Admin{Router: admin}
}

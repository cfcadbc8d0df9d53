package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"properly.homes/backend/internal/pkg/cachectrl"
	"properly.homes/backend/internal/pkg/etag"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
)

type Location struct {
	fx.In

	LocationService *service.Location
}

func RegisterLocation(api *svr.API, c Location) {
	locations := api.Group("/locations")
	locations.Get("/countries", c.Countries)
	locations.Get("/countries/:id/regions", c.Regions)
	locations.Get("/regions/:id/cities", c.Cities)
}

func (c *Location) Countries(ctx *fiber.Ctx) error {
	countries, err := c.LocationService.Countries(ctx.UserContext())
	if err != nil {
		return err
	}
	cachectrl.OptInCustom(ctx, time.Now(), time.Hour)
	return etag.JSON(ctx, countries)
}

func (c *Location) Regions(ctx *fiber.Ctx) error {
	countryID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	regions, err := c.LocationService.Regions(ctx.UserContext(), countryID)
	if err != nil {
		return err
	}
	cachectrl.OptInCustom(ctx, time.Now(), time.Hour)
	return etag.JSON(ctx, regions)
}

func (c *Location) Cities(ctx *fiber.Ctx) error {
	regionID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	cities, err := c.LocationService.Cities(ctx.UserContext(), regionID)
	if err != nil {
		return err
	}
	cachectrl.OptInCustom(ctx, time.Now(), time.Hour)
	return etag.JSON(ctx, cities)
}

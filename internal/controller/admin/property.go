package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
	"properly.homes/backend/internal/util/rekuest"
)

type Property struct {
	fx.In

	PropertyService *service.Property
}

func RegisterProperty(admin *svr.Admin, c Property) {
	admin.Get("/properties", c.List)
	admin.Post("/properties/:ref/approve", c.Approve)
	admin.Post("/properties/:ref/reject", c.Reject)
}

func (c *Property) List(ctx *fiber.Ctx) error {
	var query types.AdminPropertyQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	page, err := c.PropertyService.ListForReview(ctx.UserContext(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(page)
}

func (c *Property) Approve(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}

	p, err := c.PropertyService.Approve(ctx.UserContext(), ref)
	if err != nil {
		return err
	}
	log.Info().Str("evt.name", "admin.property.approved").Str("reference", ref).Int64("actorId", actorID(ctx)).Msg("listing approved")
	return ctx.JSON(p)
}

func (c *Property) Reject(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}
	var req types.ModerationDecisionRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	p, err := c.PropertyService.Reject(ctx.UserContext(), ref, req.Note)
	if err != nil {
		return err
	}
	log.Info().Str("evt.name", "admin.property.rejected").Str("reference", ref).Int64("actorId", actorID(ctx)).Msg("listing rejected")
	return ctx.JSON(p)
}

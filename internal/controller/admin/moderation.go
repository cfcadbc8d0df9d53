package admin

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
	"properly.homes/backend/internal/util/rekuest"
)

type Moderation struct {
	fx.In

	RuleService *service.ModerationRule
}

func RegisterModeration(admin *svr.Admin, c Moderation) {
	rules := admin.Group("/moderation-rules")
	rules.Get("/", c.List)
	rules.Post("/", c.Create)
	rules.Put("/:id", c.Update)
	rules.Delete("/:id", c.Delete)
}

func (c *Moderation) List(ctx *fiber.Ctx) error {
	rules, err := c.RuleService.List(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(rules)
}

func (c *Moderation) Create(ctx *fiber.Ctx) error {
	var req types.ModerationRuleRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	rule, err := c.RuleService.Create(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(rule)
}

func (c *Moderation) Update(ctx *fiber.Ctx) error {
	ruleID, err := paramID(ctx)
	if err != nil {
		return err
	}
	var req types.ModerationRuleRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	rule, err := c.RuleService.Update(ctx.UserContext(), ruleID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(rule)
}

func (c *Moderation) Delete(ctx *fiber.Ctx) error {
	ruleID, err := paramID(ctx)
	if err != nil {
		return err
	}

	if err := c.RuleService.Delete(ctx.UserContext(), ruleID); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

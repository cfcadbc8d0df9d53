package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/cachectrl"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
	"properly.homes/backend/internal/util/rekuest"
)

type Message struct {
	fx.In

	Redis          *redis.Client
	AuthMW         *middlewares.Auth
	InquiryService *service.Inquiry
}

func RegisterMessage(api *svr.API, c Message) {
	messages := api.Group("/messages")
	messages.Post("/contact", rateLimit(c.Redis, constant.ContactRateLimitMax, constant.ContactRateLimitWindow), c.Contact)
	messages.Post("/", c.AuthMW.Required(), c.Send)
	messages.Get("/", c.AuthMW.Required(), c.Inbox)
	messages.Post("/:id/read", c.AuthMW.Required(), c.MarkRead)
}

func (c *Message) Contact(ctx *fiber.Ctx) error {
	var req types.ContactRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	msg, err := c.InquiryService.Contact(ctx.UserContext(), &req, rekuest.LanguageFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(msg)
}

func (c *Message) Send(ctx *fiber.Ctx) error {
	var req types.SendMessageRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	msg, err := c.InquiryService.Send(ctx.UserContext(), principal(ctx).UserID, &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(msg)
}

func (c *Message) Inbox(ctx *fiber.Ctx) error {
	var page types.Pagination
	if err := rekuest.ValidQuery(ctx, &page); err != nil {
		return err
	}

	inbox, err := c.InquiryService.Inbox(ctx.UserContext(), principal(ctx).UserID, &page)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(inbox)
}

func (c *Message) MarkRead(ctx *fiber.Ctx) error {
	messageID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.InquiryService.MarkRead(ctx.UserContext(), principal(ctx).UserID, messageID); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

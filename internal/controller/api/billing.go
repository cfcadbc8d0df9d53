package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/cachectrl"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
	"properly.homes/backend/internal/util"
	"properly.homes/backend/internal/util/rekuest"
)

type Billing struct {
	fx.In

	Redis               *redis.Client
	Locker              middlewares.Locker
	AuthMW              *middlewares.Auth
	PlanService         *service.Plan
	SubscriptionService *service.Subscription
	CheckoutService     *service.Checkout
	WebhookService      *service.Webhook
}

func RegisterBilling(api *svr.API, c Billing) {
	agentOnly := []fiber.Handler{c.AuthMW.Required(), middlewares.RequireRole(constant.RoleAgent)}

	api.Get("/subscription-plans", c.Plans)

	subs := api.Group("/subscriptions", agentOnly...)
	subs.Get("/current", c.Current)
	subs.Get("/usage", c.Usage)
	subs.Post("/cancel", c.Cancel)

	api.Post("/stripe/create-checkout", append(agentOnly, idempotent(c.Redis, c.Locker, "checkout"), c.CreateCheckout)...)
	api.Post("/stripe/webhook", c.StripeWebhook)
}

func (c *Billing) Plans(ctx *fiber.Ctx) error {
	var query types.PlansQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}
	if query.Billing == "" {
		query.Billing = constant.BillingCycleMonthly
	}

	plans, err := c.PlanService.List(ctx.UserContext(), query.Billing)
	if err != nil {
		return err
	}
	cachectrl.OptIn(ctx, time.Now())
	return ctx.JSON(plans)
}

func (c *Billing) Current(ctx *fiber.Ctx) error {
	sub, err := c.SubscriptionService.Current(ctx.UserContext(), principal(ctx).UserID)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(sub)
}

func (c *Billing) Usage(ctx *fiber.Ctx) error {
	usage, err := c.SubscriptionService.Usage(ctx.UserContext(), principal(ctx).UserID)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(usage)
}

func (c *Billing) Cancel(ctx *fiber.Ctx) error {
	sub, err := c.SubscriptionService.Cancel(ctx.UserContext(), principal(ctx).UserID)
	if err != nil {
		return err
	}
	return ctx.JSON(sub)
}

func (c *Billing) CreateCheckout(ctx *fiber.Ctx) error {
	var req types.CreateCheckoutRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}
	req.IdempotencyKey = util.IdempotencyKeyFromLocals(ctx)

	res, err := c.CheckoutService.Create(ctx.UserContext(), principal(ctx).UserID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

// StripeWebhook needs the raw body: the signature covers the exact bytes received.
func (c *Billing) StripeWebhook(ctx *fiber.Ctx) error {
	payload := append([]byte(nil), ctx.Body()...)
	if err := c.WebhookService.Handle(ctx.UserContext(), payload, ctx.Get(constant.StripeSignatureHdr)); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"received": true})
}

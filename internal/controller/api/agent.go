package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/cachectrl"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
	"properly.homes/backend/internal/util/rekuest"
)

type Agent struct {
	fx.In

	Redis       *redis.Client
	Locker      middlewares.Locker
	AgentWizard *service.AgentWizard
}

func RegisterAgent(api *svr.API, c Agent) {
	limited := rateLimit(c.Redis, constant.AuthRateLimitMax, constant.AuthRateLimitWindow)

	wizard := api.Group("/auth/register-agent")
	wizard.Post("/drafts", limited, c.CreateDraft)
	wizard.Get("/drafts/:id", c.GetDraft)
	wizard.Put("/drafts/:id/steps/:step", c.SaveStep)
	wizard.Post("/", limited, idempotent(c.Redis, c.Locker, "register-agent"), c.Register)
}

func (c *Agent) CreateDraft(ctx *fiber.Ctx) error {
	draft, err := c.AgentWizard.CreateDraft(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(draft)
}

func (c *Agent) GetDraft(ctx *fiber.Ctx) error {
	draftID := ctx.Params("id")
	if err := rekuest.ValidVar(ctx, draftID, "required,alphanum,max=32"); err != nil {
		return err
	}

	draft, err := c.AgentWizard.GetDraft(ctx.UserContext(), draftID)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(draft)
}

func stepPayload(step int) (any, error) {
	switch step {
	case service.StepPersonal:
		return &types.AgentPersonalStep{}, nil
	case service.StepAgency:
		return &types.AgentAgencyStep{}, nil
	case service.StepAccount:
		return &types.AgentAccountStep{}, nil
	case service.StepPlan:
		return &types.AgentPlanStep{}, nil
	}
	return nil, prerr.ErrInvalidReq.Msg("unknown step %d", step)
}

func (c *Agent) SaveStep(ctx *fiber.Ctx) error {
	draftID := ctx.Params("id")
	if err := rekuest.ValidVar(ctx, draftID, "required,alphanum,max=32"); err != nil {
		return err
	}
	step, err := ctx.ParamsInt("step")
	if err != nil {
		return prerr.ErrInvalidReq.Msg("invalid step")
	}

	payload, err := stepPayload(step)
	if err != nil {
		return err
	}
	if err := rekuest.ValidBody(ctx, payload); err != nil {
		return err
	}

	draft, err := c.AgentWizard.SaveStep(ctx.UserContext(), draftID, step, payload)
	if err != nil {
		return err
	}
	return ctx.JSON(draft)
}

func (c *Agent) Register(ctx *fiber.Ctx) error {
	var req types.AgentRegisterRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.AgentWizard.Register(ctx.UserContext(), &req, rekuest.LanguageFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(res)
}

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

type Property struct {
	fx.In

	Redis           *redis.Client
	Locker          middlewares.Locker
	AuthMW          *middlewares.Auth
	PropertyService *service.Property
	MediaService    *service.Media
	FavoriteService *service.Favorite
	InquiryService  *service.Inquiry
}

func RegisterProperty(api *svr.API, c Property) {
	agentOnly := []fiber.Handler{c.AuthMW.Required(), middlewares.RequireRole(constant.RoleAgent)}
	withAgent := func(h fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, agentOnly...), h)
	}

	props := api.Group("/properties")
	props.Get("/", c.Search)
	props.Post("/", withAgent(c.Create)...)
	props.Get("/:ref", c.AuthMW.Optional(), c.Get)
	props.Patch("/:ref", withAgent(c.Update)...)
	props.Delete("/:ref", c.AuthMW.Required(), c.Archive)
	props.Post("/:ref/status", withAgent(c.SetStatus)...)

	props.Post("/:ref/images/upload-url", withAgent(c.ImageUploadURL)...)
	props.Post("/:ref/images", withAgent(c.RegisterImage)...)
	props.Delete("/:ref/images/:imageId", withAgent(c.RemoveImage)...)

	props.Post("/:ref/favorite", c.AuthMW.Required(), c.AddFavorite)
	props.Delete("/:ref/favorite", c.AuthMW.Required(), c.RemoveFavorite)
	props.Post("/:ref/inquiries", c.AuthMW.Optional(), idempotent(c.Redis, c.Locker, "inquiry"), c.Inquire)

	api.Get("/me/favorites", c.AuthMW.Required(), c.Favorites)

	agent := api.Group("/agent", agentOnly...)
	agent.Get("/properties", c.AgentProperties)
	agent.Get("/inquiries", c.AgentInquiries)
	agent.Post("/inquiries/:id/status", c.SetInquiryStatus)
}

func refParam(ctx *fiber.Ctx) (string, error) {
	ref := ctx.Params("ref")
	if err := rekuest.ValidVar(ctx, ref, "required,alphanum,max=32"); err != nil {
		return "", err
	}
	return ref, nil
}

func (c *Property) Search(ctx *fiber.Ctx) error {
	var query types.PropertySearchQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	page, err := c.PropertyService.Search(ctx.UserContext(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(page)
}

func (c *Property) Get(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}

	p, err := c.PropertyService.Get(ctx.UserContext(), ref, optionalPrincipal(ctx))
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(p)
}

func (c *Property) Create(ctx *fiber.Ctx) error {
	var req types.PropertyCreateRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	p, err := c.PropertyService.Create(ctx.UserContext(), principal(ctx).UserID, &req)
	if err != nil {
		return err
	}
	ctx.Location("/api/properties/" + p.Reference)
	return ctx.Status(fiber.StatusCreated).JSON(p)
}

func (c *Property) Update(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}
	var req types.PropertyUpdateRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	p, err := c.PropertyService.Update(ctx.UserContext(), principal(ctx), ref, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(p)
}

func (c *Property) Archive(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}

	if err := c.PropertyService.Archive(ctx.UserContext(), principal(ctx), ref); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *Property) SetStatus(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}
	var req types.PropertyStatusRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	p, err := c.PropertyService.SetStatus(ctx.UserContext(), principal(ctx), ref, req.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(p)
}

func (c *Property) ImageUploadURL(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}
	var req types.ImageUploadURLRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.MediaService.UploadURL(ctx.UserContext(), principal(ctx), ref, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(res)
}

func (c *Property) RegisterImage(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}
	var req types.RegisterImageRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	img, err := c.MediaService.Register(ctx.UserContext(), principal(ctx), ref, req.Key)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(img)
}

func (c *Property) RemoveImage(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}
	imageID, err := paramID(ctx, "imageId")
	if err != nil {
		return err
	}

	if err := c.MediaService.Remove(ctx.UserContext(), principal(ctx), ref, imageID); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *Property) AddFavorite(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}

	if err := c.FavoriteService.Add(ctx.UserContext(), principal(ctx).UserID, ref); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *Property) RemoveFavorite(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}

	if err := c.FavoriteService.Remove(ctx.UserContext(), principal(ctx).UserID, ref); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *Property) Favorites(ctx *fiber.Ctx) error {
	props, err := c.FavoriteService.List(ctx.UserContext(), principal(ctx).UserID)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(props)
}

func (c *Property) Inquire(ctx *fiber.Ctx) error {
	ref, err := refParam(ctx)
	if err != nil {
		return err
	}
	var req types.InquiryRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	inq, err := c.InquiryService.Inquire(ctx.UserContext(), ref, optionalPrincipal(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(inq)
}

func (c *Property) AgentProperties(ctx *fiber.Ctx) error {
	res, err := c.PropertyService.ListForAgent(ctx.UserContext(), principal(ctx).UserID)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(res)
}

func (c *Property) AgentInquiries(ctx *fiber.Ctx) error {
	var query types.InquiryQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	page, err := c.InquiryService.ListForAgent(ctx.UserContext(), principal(ctx).UserID, &query)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(page)
}

func (c *Property) SetInquiryStatus(ctx *fiber.Ctx) error {
	inquiryID, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var req types.InquiryStatusRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	if err := c.InquiryService.SetStatus(ctx.UserContext(), principal(ctx).UserID, inquiryID, req.Status); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

package admin

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/fx"

	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
	"properly.homes/backend/internal/util/rekuest"
)

type Blog struct {
	fx.In

	BlogService *service.Blog
}

func RegisterBlog(admin *svr.Admin, c Blog) {
	posts := admin.Group("/blog/posts")
	posts.Get("/", c.List)
	posts.Post("/", c.Create)
	posts.Get("/:id", c.Get)
	posts.Patch("/:id", c.Update)
	posts.Post("/:id/publish", c.Publish)
	posts.Post("/:id/archive", c.Archive)
	posts.Delete("/:id", c.Delete)
}

func (c *Blog) List(ctx *fiber.Ctx) error {
	var query types.AdminBlogListQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	page, err := c.BlogService.ListAll(ctx.UserContext(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(page)
}

func (c *Blog) Get(ctx *fiber.Ctx) error {
	postID, err := paramID(ctx)
	if err != nil {
		return err
	}

	post, err := c.BlogService.Get(ctx.UserContext(), postID)
	if err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (c *Blog) Create(ctx *fiber.Ctx) error {
	var req types.BlogPostRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	post, err := c.BlogService.Create(ctx.UserContext(), actorID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(post)
}

func (c *Blog) Update(ctx *fiber.Ctx) error {
	postID, err := paramID(ctx)
	if err != nil {
		return err
	}
	var req types.BlogPostUpdateRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	post, err := c.BlogService.Update(ctx.UserContext(), postID, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (c *Blog) Publish(ctx *fiber.Ctx) error {
	postID, err := paramID(ctx)
	if err != nil {
		return err
	}

	post, err := c.BlogService.Publish(ctx.UserContext(), postID)
	if err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (c *Blog) Archive(ctx *fiber.Ctx) error {
	postID, err := paramID(ctx)
	if err != nil {
		return err
	}

	post, err := c.BlogService.Archive(ctx.UserContext(), postID)
	if err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (c *Blog) Delete(ctx *fiber.Ctx) error {
	postID, err := paramID(ctx)
	if err != nil {
		return err
	}

	if err := c.BlogService.Delete(ctx.UserContext(), postID); err != nil {
		return err
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

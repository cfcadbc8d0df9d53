package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cache"
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

func RegisterBlog(api *svr.API, c Blog) {
	blog := api.Group("/blog", cache.New(cache.Config{
		Expiration:   time.Minute,
		CacheControl: true,
		KeyGenerator: func(ctx *fiber.Ctx) string {
			return ctx.OriginalURL()
		},
	}))
	blog.Get("/posts", c.List)
	blog.Get("/posts/:slug", c.Get)
	blog.Get("/categories", c.Categories)
}

func (c *Blog) List(ctx *fiber.Ctx) error {
	var query types.BlogListQuery
	if err := rekuest.ValidQuery(ctx, &query); err != nil {
		return err
	}

	page, err := c.BlogService.ListPublished(ctx.UserContext(), &query)
	if err != nil {
		return err
	}
	return ctx.JSON(page)
}

func (c *Blog) Get(ctx *fiber.Ctx) error {
	postSlug := ctx.Params("slug")
	if err := rekuest.ValidVar(ctx, postSlug, "required,max=220"); err != nil {
		return err
	}

	post, err := c.BlogService.GetPublished(ctx.UserContext(), postSlug)
	if err != nil {
		return err
	}
	return ctx.JSON(post)
}

func (c *Blog) Categories(ctx *fiber.Ctx) error {
	lang := ctx.Query("lang")
	if err := rekuest.ValidVar(ctx, lang, "omitempty,sitelanguage"); err != nil {
		return err
	}

	categories, err := c.BlogService.Categories(ctx.UserContext(), lang)
	if err != nil {
		return err
	}
	return ctx.JSON(categories)
}

package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/cachectrl"
	"properly.homes/backend/internal/pkg/middlewares"
	"properly.homes/backend/internal/server/svr"
	"properly.homes/backend/internal/service"
	"properly.homes/backend/internal/util/rekuest"
)

type Auth struct {
	fx.In

	Config      *appconfig.Config
	Redis       *redis.Client
	AuthMW      *middlewares.Auth
	AuthService *service.Auth
}

func RegisterAuth(api *svr.API, c Auth) {
	limited := rateLimit(c.Redis, constant.AuthRateLimitMax, constant.AuthRateLimitWindow)

	auth := api.Group("/auth")
	auth.Post("/register", limited, c.Register)
	auth.Post("/verify-email", limited, c.VerifyEmail)
	auth.Post("/resend-verification", limited, c.ResendVerification)
	auth.Post("/login", limited, c.Login)
	auth.Post("/logout", c.Logout)
	auth.Get("/me", c.AuthMW.Required(), c.Me)
	auth.Post("/forgot-password", limited, c.ForgotPassword)
	auth.Post("/reset-password", limited, c.ResetPassword)
	auth.Post("/change-password", c.AuthMW.Required(), c.ChangePassword)
}

func (c *Auth) cookieOptions() authn.CookieOptions {
	return authn.CookieOptions{
		Domain: c.Config.AuthCookieDomain,
		Secure: !c.Config.DevMode,
	}
}

func (c *Auth) Register(ctx *fiber.Ctx) error {
	var req types.RegisterRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	user, err := c.AuthService.Register(ctx.UserContext(), &req, rekuest.LanguageFromCtx(ctx))
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(user)
}

func (c *Auth) VerifyEmail(ctx *fiber.Ctx) error {
	var req types.VerifyEmailRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	user, err := c.AuthService.VerifyEmail(ctx.UserContext(), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(user)
}

func (c *Auth) ResendVerification(ctx *fiber.Ctx) error {
	var req types.EmailRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	if err := c.AuthService.ResendVerification(ctx.UserContext(), req.Email); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

func (c *Auth) Login(ctx *fiber.Ctx) error {
	var req types.LoginRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	res, err := c.AuthService.Login(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	authn.SetCookie(ctx, c.cookieOptions(), res.Issued)
	cachectrl.OptOut(ctx)
	return ctx.JSON(res.LoginResponse)
}

func (c *Auth) Logout(ctx *fiber.Ctx) error {
	authn.ClearCookie(ctx, c.cookieOptions())
	return ctx.SendStatus(fiber.StatusNoContent)
}

func (c *Auth) Me(ctx *fiber.Ctx) error {
	me, err := c.AuthService.Me(ctx.UserContext(), principal(ctx).UserID)
	if err != nil {
		return err
	}
	cachectrl.OptOut(ctx)
	return ctx.JSON(me)
}

func (c *Auth) ForgotPassword(ctx *fiber.Ctx) error {
	var req types.EmailRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	if err := c.AuthService.ForgotPassword(ctx.UserContext(), req.Email); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

func (c *Auth) ResetPassword(ctx *fiber.Ctx) error {
	var req types.ResetPasswordRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	if err := c.AuthService.ResetPassword(ctx.UserContext(), &req); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

func (c *Auth) ChangePassword(ctx *fiber.Ctx) error {
	var req types.ChangePasswordRequest
	if err := rekuest.ValidBody(ctx, &req); err != nil {
		return err
	}

	if err := c.AuthService.ChangePassword(ctx.UserContext(), principal(ctx).UserID, &req); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

package authn

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/constant"
)

// CookieOptions shapes the session cookie for the deployment.
type CookieOptions struct {
	Domain string
	Secure bool
}

func SetCookie(ctx *fiber.Ctx, opts CookieOptions, issued *Issued) {
	ctx.Cookie(&fiber.Cookie{
		Name:     constant.AuthCookieName,
		Value:    issued.Token,
		Path:     "/",
		Domain:   opts.Domain,
		Expires:  issued.ExpiresAt,
		Secure:   opts.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearCookie(ctx *fiber.Ctx, opts CookieOptions) {
	ctx.Cookie(&fiber.Cookie{
		Name:     constant.AuthCookieName,
		Value:    "",
		Path:     "/",
		Domain:   opts.Domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		Secure:   opts.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

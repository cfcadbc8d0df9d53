package middlewares

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"properly.homes/backend/internal/app/appconfig"
	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/flog"
	"properly.homes/backend/internal/pkg/prerr"
)

type Auth struct {
	authenticator *authn.Authenticator
	adminKey      string
}

func NewAuth(authenticator *authn.Authenticator, conf *appconfig.Config) *Auth {
	return &Auth{
		authenticator: authenticator,
		adminKey:      conf.AdminKey,
	}
}

func (m *Auth) resolve(ctx *fiber.Ctx) (*authn.Principal, bool) {
	token := authn.TokenFromRequest(ctx)
	if token == "" {
		return nil, false
	}
	p, err := m.authenticator.Parse(token)
	if err != nil {
		flog.DebugFrom(ctx).Err(err).Str("evt.name", "auth.token.invalid").Msg("rejected session token")
		return nil, false
	}
	authn.SetPrincipal(ctx, p)
	flog.FromFiberCtx(ctx).UpdateContext(func(c zerolog.Context) zerolog.Context {
		return c.Int64("user_id", p.UserID)
	})
	return p, true
}

// Optional attaches the caller when a valid token is present and never rejects.
func (m *Auth) Optional() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		m.resolve(ctx)
		return ctx.Next()
	}
}

// Required rejects requests without a valid token.
func (m *Auth) Required() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if _, ok := m.resolve(ctx); !ok {
			return prerr.ErrUnauthorized
		}
		return ctx.Next()
	}
}

// RequireRole must run after Required.
func RequireRole(roles ...string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		p, ok := authn.PrincipalFromCtx(ctx)
		if !ok {
			return prerr.ErrUnauthorized
		}
		if !p.Is(roles...) {
			return prerr.ErrForbidden
		}
		return ctx.Next()
	}
}

// Admin accepts either the configured admin key or an admin session.
func (m *Auth) Admin() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if key := ctx.Get(constant.AdminKeyHeader); key != "" && m.adminKey != "" {
			if subtle.ConstantTimeCompare([]byte(key), []byte(m.adminKey)) == 1 {
				// resolve a session too so that writes can be attributed when one is present
				if _, ok := m.resolve(ctx); !ok {
					authn.SetPrincipal(ctx, &authn.Principal{Role: constant.RoleAdmin})
				}
				return ctx.Next()
			}
			return prerr.ErrForbidden.Msg("invalid admin key")
		}
		p, ok := m.resolve(ctx)
		if !ok {
			return prerr.ErrUnauthorized
		}
		if p.Role != constant.RoleAdmin {
			return prerr.ErrForbidden
		}
		return ctx.Next()
	}
}

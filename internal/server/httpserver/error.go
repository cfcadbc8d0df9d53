package httpserver

import (
	"strconv"

	"github.com/getsentry/sentry-go"
	"github.com/gofiber/contrib/fibersentry"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/flog"
	"properly.homes/backend/internal/pkg/prerr"
)

func handleCustomError(ctx *fiber.Ctx, e *prerr.Error) error {
	flog.WarnFrom(ctx).
		Err(e).
		Str("evt.name", "http.error").
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Msg(e.Message)

	body := fiber.Map{
		"code":    e.ErrorCode,
		"message": e.Message,
	}

	if e.Extras != nil && len(*e.Extras) > 0 {
		for k, v := range *e.Extras {
			body[k] = v
		}
	}

	return ctx.Status(e.StatusCode).JSON(body)
}

func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var pe *prerr.Error
	if errors.As(err, &pe) {
		return handleCustomError(ctx, pe)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		code := prerr.CodeInvalidRequest
		switch fe.Code {
		case fiber.StatusNotFound:
			code = prerr.CodeNotFound
		case fiber.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		case fiber.StatusRequestEntityTooLarge:
			code = "PAYLOAD_TOO_LARGE"
		}
		return handleCustomError(ctx, prerr.New(fe.Code, code, fe.Message))
	}

	re := *prerr.ErrInternalError

	log.Error().
		Stack().
		Err(err).
		Str("evt.name", "http.internal_error").
		Str("method", ctx.Method()).
		Str("path", ctx.Path()).
		Int("status", re.StatusCode).
		Msg("Internal Server Error")

	if hub := fibersentry.GetHubFromContext(ctx); hub != nil {
		hub.Scope().SetTag("status", strconv.Itoa(re.StatusCode))
		if p, ok := authn.PrincipalFromCtx(ctx); ok {
			hub.Scope().SetUser(sentry.User{
				ID: strconv.FormatInt(p.UserID, 10),
			})
			hub.Scope().SetTag("role", p.Role)
		}
		hub.CaptureException(err)
	}

	return handleCustomError(ctx, &re)
}

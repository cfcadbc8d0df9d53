package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/pkg/authn"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/util/rekuest"
)

func paramID(ctx *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, prerr.ErrInvalidReq.Msg("invalid id")
	}
	return id, nil
}

func refParam(ctx *fiber.Ctx) (string, error) {
	ref := ctx.Params("ref")
	if err := rekuest.ValidVar(ctx, ref, "required,alphanum,max=32"); err != nil {
		return "", err
	}
	return ref, nil
}

// actorID is zero for requests authenticated with the admin key only.
func actorID(ctx *fiber.Ctx) int64 {
	if p, ok := authn.PrincipalFromCtx(ctx); ok {
		return p.UserID
	}
	return 0
}

package rekuest

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/util/i18n"
)

func TranslatorFromCtx(ctx *fiber.Ctx) ut.Translator {
	if t, ok := ctx.Locals(constant.LocalsKeyTranslator).(ut.Translator); ok {
		return t
	}
	return i18n.UT.GetFallback()
}

// LanguageFromCtx is the site language negotiated for the request.
func LanguageFromCtx(ctx *fiber.Ctx) string {
	if l, ok := ctx.Locals(constant.LocalsKeyLanguage).(string); ok {
		return l
	}
	return constant.DefaultLanguage
}

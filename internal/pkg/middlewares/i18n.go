package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/util/i18n"
)

// InjectI18n negotiates the site language from Accept-Language and stores it with its validation translator.
func InjectI18n() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		lang := i18n.Match(c.Get(fiber.HeaderAcceptLanguage))
		c.Locals(constant.LocalsKeyLanguage, lang)
		c.Locals(constant.LocalsKeyTranslator, i18n.Translator(lang))
		return c.Next()
	}
}
